package ibe

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/pairing/crypto"
	"github.com/eth2030/pairing/metrics"
)

// Sealed message layout constants.
const (
	sealMagic   = "IBE"
	sealVersion = 0x01
	headerLen   = len(sealMagic) + 1
	sealTagLen  = chacha20poly1305.Overhead
	sealKeyInfo = "pairing-ibe-seal-v1"
)

// SealOverhead is the number of bytes Seal adds to a plaintext on c.
func SealOverhead(c *crypto.Curve) int {
	return headerLen + c.G1ByteSize() + chacha20poly1305.NonceSizeX + sealTagLen
}

// Seal encrypts an arbitrary byte message to id. The pairing value
// e(mpk*r, H2(id)) keys an XChaCha20-Poly1305 AEAD through HKDF-SHA3-256.
// The header, the identity, U and aad are all authenticated.
//
// The output format is: ["IBE" || version(1) || U || nonce(24) || ciphertext || tag(16)].
func Seal(params *Params, id string, plaintext, aad []byte) ([]byte, error) {
	c := params.Curve()

	// Step 1: ephemeral scalar and the shared pairing value.
	r, err := randomNonZero(c)
	if err != nil {
		return nil, err
	}
	q := params.eng.HashAndMapToG2([]byte(id))
	e, err := params.eng.Pairing(params.Mpk.Mul(r), q)
	if err != nil {
		return nil, fmt.Errorf("ibe: seal: %w", err)
	}
	u := params.P.Mul(r).Serialize()

	// Step 2: derive the AEAD key.
	aead, err := sealAEAD(e, u, id)
	if err != nil {
		return nil, err
	}

	// Step 3: encrypt under a random nonce.
	out := make([]byte, 0, SealOverhead(c)+len(plaintext))
	out = append(out, sealMagic...)
	out = append(out, sealVersion)
	out = append(out, u...)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ibe: seal nonce: %w", err)
	}
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, sealAAD(out[:headerLen], id, u, aad))

	metrics.IBEEncrypt.Inc()
	return out, nil
}

// Open decrypts a message produced by Seal with the key of its identity.
func Open(sk *UserKey, sealed, aad []byte) ([]byte, error) {
	c := sk.K.Curve()
	eng, err := c.Engine()
	if err != nil {
		return nil, err
	}
	n := c.G1ByteSize()
	if len(sealed) < SealOverhead(c) {
		return nil, fmt.Errorf("%w: sealed message too short", ErrInvalidCiphertext)
	}
	if string(sealed[:len(sealMagic)]) != sealMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidCiphertext)
	}
	if sealed[len(sealMagic)] != sealVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidCiphertext, sealed[len(sealMagic)])
	}
	u := sealed[headerLen : headerLen+n]
	U, err := c.DeserializeG1(u)
	if err != nil {
		return nil, fmt.Errorf("%w: U: %w", ErrInvalidCiphertext, err)
	}
	// e(U, sk) would be 1 for U = O, independent of the key.
	if U.IsZero() {
		return nil, fmt.Errorf("%w: U is the identity", ErrInvalidCiphertext)
	}
	nonce := sealed[headerLen+n : headerLen+n+chacha20poly1305.NonceSizeX]
	body := sealed[headerLen+n+chacha20poly1305.NonceSizeX:]

	e, err := eng.Pairing(U, sk.K)
	if err != nil {
		return nil, fmt.Errorf("ibe: open: %w", err)
	}
	aead, err := sealAEAD(e, u, sk.ID)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, body, sealAAD(sealed[:headerLen], sk.ID, u, aad))
	if err != nil {
		return nil, ErrDecryption
	}
	metrics.IBEDecrypt.Inc()
	return plaintext, nil
}

func sealAEAD(e *crypto.GT, u []byte, id string) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha3.New256, e.Serialize(), u, append([]byte(sealKeyInfo), id...))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("ibe: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("ibe: aead: %w", err)
	}
	return aead, nil
}

// sealAAD binds the header, id and U to the caller's associated data.
func sealAAD(header []byte, id string, u, aad []byte) []byte {
	out := make([]byte, 0, len(header)+4+len(id)+len(u)+len(aad))
	out = append(out, header...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(id)))
	out = append(out, id...)
	out = append(out, u...)
	return append(out, aad...)
}
