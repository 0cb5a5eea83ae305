// Package keystore persists the state of an IBE private key generator: the
// curve, the public parameters, the passphrase-protected master secret and
// the user keys issued so far.
//
// Secrets are sealed with XChaCha20-Poly1305 under a scrypt-derived key.
// Records live in a goleveldb database keyed by single-byte prefixes.
package keystore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/eth2030/pairing/crypto"
	"github.com/eth2030/pairing/crypto/ibe"
	"github.com/eth2030/pairing/log"
)

var (
	// ErrNotInitialized is returned when no master key has been stored.
	ErrNotInitialized = errors.New("keystore: not initialized")

	// ErrInitialized is returned by Init on a database that already holds
	// a master key.
	ErrInitialized = errors.New("keystore: already initialized")

	// ErrKeyNotFound is returned for identities without an issued key.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrWrongPassphrase is returned when a sealed record fails to open.
	ErrWrongPassphrase = errors.New("keystore: wrong passphrase (MAC mismatch)")

	// ErrCorrupt is returned for records that cannot be decoded.
	ErrCorrupt = errors.New("keystore: corrupt record")
)

// Config holds configuration for the keystore.
type Config struct {
	ScryptN int    // CPU/memory cost parameter (default: 262144)
	ScryptR int    // block size parameter (default: 8)
	ScryptP int    // parallelization parameter (default: 1)
	Path    string // database directory; empty selects an in-memory store
}

// DefaultConfig returns a Config with standard defaults.
func DefaultConfig() Config {
	return Config{
		ScryptN: 262144,
		ScryptR: 8,
		ScryptP: 1,
		Path:    "keystore",
	}
}

// Keystore manages the generator's records (thread-safe).
type Keystore struct {
	mu     sync.RWMutex
	config Config
	db     Database
	logger *log.Logger
}

// Open opens the database named by config.Path and wraps it.
func Open(config Config) (*Keystore, error) {
	if config.Path == "" {
		return New(NewMemoryDB(), config), nil
	}
	db, err := OpenLevelDB(config.Path)
	if err != nil {
		return nil, fmt.Errorf("keystore: open %s: %w", config.Path, err)
	}
	return New(db, config), nil
}

// New wraps an open database. Zero-valued scrypt parameters are replaced
// with defaults.
func New(db Database, config Config) *Keystore {
	def := DefaultConfig()
	if config.ScryptN == 0 {
		config.ScryptN = def.ScryptN
	}
	if config.ScryptR == 0 {
		config.ScryptR = def.ScryptR
	}
	if config.ScryptP == 0 {
		config.ScryptP = def.ScryptP
	}
	path := config.Path
	if path == "" {
		path = "memory"
	}
	return &Keystore{
		config: config,
		db:     db,
		logger: log.Default().Module("keystore").With("path", path),
	}
}

// Close closes the underlying database.
func (ks *Keystore) Close() error { return ks.db.Close() }

// Init stores a freshly generated master key under passphrase.
func (ks *Keystore) Init(mk *ibe.MasterKey, passphrase string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ok, err := ks.db.Has(secretKey)
	if err != nil {
		return err
	}
	if ok {
		return ErrInitialized
	}
	sealed, err := ks.seal(mk.Secret().Serialize(), passphrase, secretKey)
	if err != nil {
		return err
	}
	b := ks.db.NewBatch()
	b.Put(curveKey, []byte(mk.Params().Curve().String()))
	b.Put(paramsKey, mk.Params().Serialize())
	b.Put(secretKey, sealed)
	b.Put(countKey, encodeCount(0))
	if err := b.Write(); err != nil {
		return fmt.Errorf("keystore: write master key: %w", err)
	}
	ks.logger.Info("master key stored", "curve", mk.Params().Curve().String())
	return nil
}

// Engine returns the pairing engine of the stored curve.
func (ks *Keystore) Engine() (*crypto.Engine, error) {
	name, err := ks.db.Get(curveKey)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	id, err := crypto.ParseCurveID(string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	c, err := crypto.Init(id)
	if err != nil {
		return nil, err
	}
	return c.Engine()
}

// Params returns the public parameters. No passphrase is needed.
func (ks *Keystore) Params() (*ibe.Params, error) {
	eng, err := ks.Engine()
	if err != nil {
		return nil, err
	}
	enc, err := ks.db.Get(paramsKey)
	if err != nil {
		return nil, fmt.Errorf("%w: params: %w", ErrCorrupt, err)
	}
	return ibe.DeserializeParams(eng, enc)
}

// MasterKey opens the master secret.
func (ks *Keystore) MasterKey(passphrase string) (*ibe.MasterKey, error) {
	params, err := ks.Params()
	if err != nil {
		return nil, err
	}
	sealed, err := ks.db.Get(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %w", ErrCorrupt, err)
	}
	raw, err := open(sealed, passphrase, secretKey)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			ks.logger.Error("Master key record unreadable", "err", err)
		}
		return nil, err
	}
	ks.logger.Trace("master key unsealed")
	msk, err := params.Curve().DeserializeFr(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: master key: %w", ErrCorrupt, err)
	}
	mk, err := ibe.NewMasterKey(params.P, msk)
	if err != nil {
		return nil, err
	}
	if !mk.Params().Mpk.Equal(params.Mpk) {
		return nil, fmt.Errorf("%w: master key does not match params", ErrCorrupt)
	}
	return mk, nil
}

// StoreUserKey seals and records an issued key, replacing an earlier key
// of the same identity.
func (ks *Keystore) StoreUserKey(uk *ibe.UserKey, passphrase string) error {
	eng, err := ks.Engine()
	if err != nil {
		return err
	}
	if uk.K.Curve() != eng.Curve() {
		return fmt.Errorf("keystore: store %q: %w", uk.ID, crypto.ErrCurveMismatch)
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	key := userKey(uk.ID)
	existed, err := ks.db.Has(key)
	if err != nil {
		return err
	}
	sealed, err := ks.seal(uk.Serialize(), passphrase, key)
	if err != nil {
		return err
	}
	b := ks.db.NewBatch()
	b.Put(key, sealed)
	if !existed {
		n, err := ks.issued()
		if err != nil {
			return err
		}
		b.Put(countKey, encodeCount(n+1))
	}
	return b.Write()
}

// UserKey opens the stored key of id.
func (ks *Keystore) UserKey(id, passphrase string) (*ibe.UserKey, error) {
	eng, err := ks.Engine()
	if err != nil {
		return nil, err
	}
	key := userKey(id)
	sealed, err := ks.db.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	raw, err := open(sealed, passphrase, key)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			ks.logger.Error("User key record unreadable", "id", id, "err", err)
		}
		return nil, err
	}
	ks.logger.Trace("user key unsealed", "id", id)
	return ibe.DeserializeUserKey(eng, id, raw)
}

// HasUserKey reports whether a key for id is stored.
func (ks *Keystore) HasUserKey(id string) (bool, error) {
	return ks.db.Has(userKey(id))
}

// DeleteUserKey removes the key of id.
func (ks *Keystore) DeleteUserKey(id string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	key := userKey(id)
	ok, err := ks.db.Has(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, id)
	}
	n, err := ks.issued()
	if err != nil {
		return err
	}
	b := ks.db.NewBatch()
	b.Delete(key)
	if n > 0 {
		b.Put(countKey, encodeCount(n-1))
	}
	return b.Write()
}

// Identities lists the identities with stored keys in ascending order.
func (ks *Keystore) Identities() ([]string, error) {
	it := ks.db.NewIterator(userPrefix)
	defer it.Release()

	var ids []string
	for it.Next() {
		ids = append(ids, string(it.Key()[len(userPrefix):]))
	}
	return ids, it.Error()
}

// Issued returns the number of stored user keys.
func (ks *Keystore) Issued() (uint64, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.issued()
}

func (ks *Keystore) issued() (uint64, error) {
	enc, err := ks.db.Get(countKey)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeCount(enc), nil
}

// ChangePassphrase re-seals the master secret and every stored user key
// under a new passphrase in one atomic write.
func (ks *Keystore) ChangePassphrase(oldPass, newPass string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ok, err := ks.db.Has(secretKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	keys := [][]byte{secretKey}
	it := ks.db.NewIterator(userPrefix)
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	it.Release()
	if err := it.Error(); err != nil {
		return err
	}

	b := ks.db.NewBatch()
	for _, key := range keys {
		sealed, err := ks.db.Get(key)
		if err != nil {
			return err
		}
		raw, err := open(sealed, oldPass, key)
		if err != nil {
			return err
		}
		resealed, err := ks.seal(raw, newPass, key)
		if err != nil {
			return err
		}
		b.Put(key, resealed)
	}
	return b.Write()
}

// Sealed record layout:
//
//	version(1) || N(4) || r(4) || p(4) || salt(32) || nonce(24) || ciphertext || tag(16)
//
// The record's database key is the AEAD associated data, so a record moved
// to another slot fails to open.
const (
	recordVersion = 1
	saltLen       = 32
	recordHeader  = 1 + 12 + saltLen + chacha20poly1305.NonceSizeX
)

// MaxScryptN is the largest scrypt cost accepted when sealing or opening a
// record. Together with the r and memory caps it bounds what a stored
// record can make deriveAEAD allocate.
const (
	MaxScryptN      = 1 << 20
	maxScryptR      = 32
	maxScryptP      = 16
	maxScryptMemory = 1 << 30 // 128·N·r bytes
)

func checkScrypt(n, r, p int) error {
	switch {
	case n <= 1 || n&(n-1) != 0 || n > MaxScryptN:
		return fmt.Errorf("keystore: scrypt N=%d out of range", n)
	case r <= 0 || r > maxScryptR:
		return fmt.Errorf("keystore: scrypt r=%d out of range", r)
	case p <= 0 || p > maxScryptP:
		return fmt.Errorf("keystore: scrypt p=%d out of range", p)
	case 128*int64(n)*int64(r) > maxScryptMemory:
		return fmt.Errorf("keystore: scrypt N=%d r=%d needs more than %d bytes", n, r, maxScryptMemory)
	}
	return nil
}

func (ks *Keystore) seal(plaintext []byte, passphrase string, slot []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate nonce: %w", err)
	}
	n, r, p := ks.config.ScryptN, ks.config.ScryptR, ks.config.ScryptP
	aead, err := deriveAEAD(passphrase, salt, n, r, p)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, recordHeader+len(plaintext)+chacha20poly1305.Overhead)
	out = append(out, recordVersion)
	out = binary.BigEndian.AppendUint32(out, uint32(n))
	out = binary.BigEndian.AppendUint32(out, uint32(r))
	out = binary.BigEndian.AppendUint32(out, uint32(p))
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, slot), nil
}

func open(record []byte, passphrase string, slot []byte) ([]byte, error) {
	if len(record) < recordHeader+chacha20poly1305.Overhead || record[0] != recordVersion {
		return nil, ErrCorrupt
	}
	n := int(binary.BigEndian.Uint32(record[1:5]))
	r := int(binary.BigEndian.Uint32(record[5:9]))
	p := int(binary.BigEndian.Uint32(record[9:13]))
	salt := record[13 : 13+saltLen]
	nonce := record[13+saltLen : recordHeader]

	aead, err := deriveAEAD(passphrase, salt, n, r, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	plaintext, err := aead.Open(nil, nonce, record[recordHeader:], slot)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

func deriveAEAD(passphrase string, salt []byte, n, r, p int) (cipher.AEAD, error) {
	if err := checkScrypt(n, r, p); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, n, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("keystore: scrypt: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
