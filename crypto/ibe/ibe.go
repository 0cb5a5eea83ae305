// Package ibe implements Boneh-Franklin identity-based encryption over the
// pairing engine in package crypto.
//
// A private key generator holds a MasterKey and publishes its Params. Anyone
// holding the Params can encrypt to an identity string; the holder of the
// UserKey issued for that identity decrypts. Messages are scalar field
// elements (Encrypt/Decrypt) or arbitrary bytes (Seal/Open).
package ibe

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/eth2030/pairing/crypto"
	"github.com/eth2030/pairing/log"
	"github.com/eth2030/pairing/metrics"
)

var (
	// ErrInvalidParams is returned when the public parameters are unusable.
	ErrInvalidParams = errors.New("ibe: invalid parameters")

	// ErrInvalidCiphertext is returned when a ciphertext is malformed.
	ErrInvalidCiphertext = errors.New("ibe: invalid ciphertext")

	// ErrInvalidKey is returned when a user key does not fit the ciphertext.
	ErrInvalidKey = errors.New("ibe: invalid user key")

	// ErrDecryption is returned when authenticated decryption fails.
	ErrDecryption = errors.New("ibe: decryption failed")
)

func logger() *log.Logger { return log.Default().Module("ibe") }

// Params are the public system parameters: the generator P and the master
// public key mpk = msk*P.
type Params struct {
	eng *crypto.Engine
	P   *crypto.G1
	Mpk *crypto.G1
}

// NewParams validates and bundles published parameters.
func NewParams(p, mpk *crypto.G1) (*Params, error) {
	if p.Curve() != mpk.Curve() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, crypto.ErrCurveMismatch)
	}
	eng, err := p.Curve().Engine()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.IsZero() || mpk.IsZero() {
		return nil, fmt.Errorf("%w: identity element", ErrInvalidParams)
	}
	return &Params{eng: eng, P: p, Mpk: mpk}, nil
}

// Engine returns the pairing engine the parameters live on.
func (pp *Params) Engine() *crypto.Engine { return pp.eng }

// Curve returns the curve handle of the parameters.
func (pp *Params) Curve() *crypto.Curve { return pp.eng.Curve() }

// Serialize encodes the parameters as P || mpk.
func (pp *Params) Serialize() []byte {
	return append(pp.P.Serialize(), pp.Mpk.Serialize()...)
}

// DeserializeParams decodes parameters produced by Params.Serialize.
func DeserializeParams(eng *crypto.Engine, b []byte) (*Params, error) {
	c := eng.Curve()
	n := c.G1ByteSize()
	if len(b) != 2*n {
		return nil, fmt.Errorf("%w: params length %d, want %d", ErrInvalidParams, len(b), 2*n)
	}
	p, err := c.DeserializeG1(b[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: generator: %w", ErrInvalidParams, err)
	}
	mpk, err := c.DeserializeG1(b[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: master public key: %w", ErrInvalidParams, err)
	}
	return NewParams(p, mpk)
}

// MasterKey is the private key generator's secret together with its public
// parameters.
type MasterKey struct {
	params *Params
	msk    *crypto.Fr
}

// KeyGen samples a fresh master secret for generator p.
func KeyGen(eng *crypto.Engine, p *crypto.G1) (*MasterKey, error) {
	if p.Curve() != eng.Curve() {
		return nil, fmt.Errorf("ibe: keygen: %w", crypto.ErrCurveMismatch)
	}
	if p.IsZero() {
		return nil, fmt.Errorf("%w: generator is the identity", ErrInvalidParams)
	}
	var msk *crypto.Fr
	for msk == nil || msk.IsZero() {
		var err error
		if msk, err = eng.Curve().RandomFr(); err != nil {
			return nil, fmt.Errorf("ibe: keygen: %w", err)
		}
	}
	mk := &MasterKey{
		params: &Params{eng: eng, P: p, Mpk: p.Mul(msk)},
		msk:    msk,
	}
	logger().Info("master key generated", "curve", eng.Curve().String())
	return mk, nil
}

// NewMasterKey rebuilds a master key from a stored secret.
func NewMasterKey(p *crypto.G1, msk *crypto.Fr) (*MasterKey, error) {
	if p.Curve() != msk.Curve() {
		return nil, fmt.Errorf("ibe: master key: %w", crypto.ErrCurveMismatch)
	}
	if msk.IsZero() {
		return nil, fmt.Errorf("%w: zero master secret", ErrInvalidParams)
	}
	params, err := NewParams(p, p.Mul(msk))
	if err != nil {
		return nil, err
	}
	return &MasterKey{params: params, msk: msk}, nil
}

// Params returns the public parameters.
func (mk *MasterKey) Params() *Params { return mk.params }

// Secret returns the master secret msk.
func (mk *MasterKey) Secret() *crypto.Fr { return mk.msk }

// DeriveUserKey issues the private key of id: msk * H2(id).
func (mk *MasterKey) DeriveUserKey(id string) (*UserKey, error) {
	q := mk.params.eng.HashAndMapToG2([]byte(id))
	uk := &UserKey{ID: id, K: q.Mul(mk.msk)}
	metrics.IBEKeysIssued.Inc()
	logger().Debug("user key issued", "id", id)
	return uk, nil
}

// DeriveUserKeys issues keys for several identities concurrently. The
// result is ordered like ids.
func (mk *MasterKey) DeriveUserKeys(ctx context.Context, ids []string) ([]*UserKey, error) {
	keys := make([]*UserKey, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			uk, err := mk.DeriveUserKey(id)
			if err != nil {
				return fmt.Errorf("ibe: derive %q: %w", id, err)
			}
			keys[i] = uk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// UserKey is the private key issued for one identity.
type UserKey struct {
	ID string
	K  *crypto.G2
}

// Serialize returns the compressed encoding of the key point.
func (uk *UserKey) Serialize() []byte { return uk.K.Serialize() }

// DeserializeUserKey decodes the key of id.
func DeserializeUserKey(eng *crypto.Engine, id string, b []byte) (*UserKey, error) {
	k, err := eng.DeserializeG2(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return &UserKey{ID: id, K: k}, nil
}

// Verify checks e(P, K) == e(mpk, H2(ID)), i.e. that the key was issued
// under params.
func (uk *UserKey) Verify(params *Params) (bool, error) {
	if uk.K.Curve() != params.Curve() {
		return false, fmt.Errorf("%w: %w", ErrInvalidKey, crypto.ErrCurveMismatch)
	}
	q := params.eng.HashAndMapToG2([]byte(uk.ID))
	return params.eng.PairingCheck(
		[]*crypto.G1{params.P, params.Mpk.Neg()},
		[]*crypto.G2{uk.K, q},
	)
}

// Ciphertext is (U, v) with U = r*P and v = m + H(e(mpk*r, H2(id))).
type Ciphertext struct {
	U *crypto.G1
	V *crypto.Fr
}

// Encrypt encrypts m to id under params.
func Encrypt(params *Params, id string, m *crypto.Fr) (*Ciphertext, error) {
	if m.Curve() != params.Curve() {
		return nil, fmt.Errorf("ibe: encrypt: %w", crypto.ErrCurveMismatch)
	}
	r, err := randomNonZero(params.Curve())
	if err != nil {
		return nil, err
	}
	q := params.eng.HashAndMapToG2([]byte(id))
	e, err := params.eng.Pairing(params.Mpk.Mul(r), q)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	metrics.IBEEncrypt.Inc()
	return &Ciphertext{
		U: params.P.Mul(r),
		V: m.Add(maskOf(e)),
	}, nil
}

// Decrypt recovers the message of ct with the key of its identity.
func Decrypt(ct *Ciphertext, sk *UserKey) (*crypto.Fr, error) {
	if ct.U.Curve() != sk.K.Curve() || ct.V.Curve() != sk.K.Curve() {
		return nil, fmt.Errorf("ibe: decrypt: %w", crypto.ErrCurveMismatch)
	}
	if ct.U.IsZero() {
		return nil, fmt.Errorf("%w: U is the identity", ErrInvalidCiphertext)
	}
	eng, err := sk.K.Curve().Engine()
	if err != nil {
		return nil, err
	}
	e, err := eng.Pairing(ct.U, sk.K)
	if err != nil {
		return nil, fmt.Errorf("ibe: decrypt: %w", err)
	}
	metrics.IBEDecrypt.Inc()
	return ct.V.Sub(maskOf(e)), nil
}

// Serialize encodes the ciphertext as U || v.
func (ct *Ciphertext) Serialize() []byte {
	return append(ct.U.Serialize(), ct.V.Serialize()...)
}

// CiphertextSize is the encoded ciphertext width on c.
func CiphertextSize(c *crypto.Curve) int { return c.G1ByteSize() + c.FrByteSize() }

// DeserializeCiphertext decodes a ciphertext produced by Serialize.
func DeserializeCiphertext(c *crypto.Curve, b []byte) (*Ciphertext, error) {
	n := c.G1ByteSize()
	if len(b) != CiphertextSize(c) {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidCiphertext, len(b), CiphertextSize(c))
	}
	u, err := c.DeserializeG1(b[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: U: %w", ErrInvalidCiphertext, err)
	}
	v, err := c.DeserializeFr(b[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: v: %w", ErrInvalidCiphertext, err)
	}
	return &Ciphertext{U: u, V: v}, nil
}

// Encrypter encrypts repeatedly to one identity, reusing the Miller loop
// table of H2(id). Close releases the table.
type Encrypter struct {
	params *Params
	id     string
	table  *crypto.PrecomputedTable
}

// NewEncrypter precomputes the pairing table of id.
func NewEncrypter(params *Params, id string) (*Encrypter, error) {
	t, err := params.eng.Precompute(params.eng.HashAndMapToG2([]byte(id)))
	if err != nil {
		return nil, err
	}
	return &Encrypter{params: params, id: id, table: t}, nil
}

// ID returns the identity the encrypter targets.
func (en *Encrypter) ID() string { return en.id }

// Encrypt is Encrypt(params, id, m) with the precomputed table.
func (en *Encrypter) Encrypt(m *crypto.Fr) (*Ciphertext, error) {
	if m.Curve() != en.params.Curve() {
		return nil, fmt.Errorf("ibe: encrypt: %w", crypto.ErrCurveMismatch)
	}
	r, err := randomNonZero(en.params.Curve())
	if err != nil {
		return nil, err
	}
	e, err := en.params.eng.PrecomputedPairing(en.params.Mpk.Mul(r), en.table)
	if err != nil {
		return nil, fmt.Errorf("ibe: encrypt: %w", err)
	}
	metrics.IBEEncrypt.Inc()
	return &Ciphertext{U: en.params.P.Mul(r), V: m.Add(maskOf(e))}, nil
}

// Close releases the precomputed table. Encrypt fails afterwards.
func (en *Encrypter) Close() { en.table.Release() }

func maskOf(e *crypto.GT) *crypto.Fr {
	return e.Curve().HashToFr(e.Serialize())
}

func randomNonZero(c *crypto.Curve) (*crypto.Fr, error) {
	for {
		r, err := c.RandomFr()
		if err != nil {
			return nil, fmt.Errorf("ibe: sample ephemeral: %w", err)
		}
		if !r.IsZero() {
			return r, nil
		}
	}
}
