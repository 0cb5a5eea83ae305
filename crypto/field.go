package crypto

// Prime field arithmetic shared by Fr and Fp.
//
// Every helper returns a freshly allocated *big.Int reduced into [0, p) and
// never mutates its arguments, so values built on top of it can be shared
// freely once constructed.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/field/hash"
)

// securityBits is the extra bias margin of hash-to-field, RFC 9380 k = 128.
const securityBits = 128

type primeField struct {
	name string
	p    *big.Int
	bits int // bit length of p
	size int // serialized byte width
}

func newPrimeField(name string, p *big.Int) *primeField {
	bits := p.BitLen()
	return &primeField{
		name: name,
		p:    new(big.Int).Set(p),
		bits: bits,
		size: (bits + 7) / 8,
	}
}

// reduce returns a mod p.
func (f *primeField) reduce(a *big.Int) *big.Int {
	return new(big.Int).Mod(a, f.p)
}

// add returns (a + b) mod p.
func (f *primeField) add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.p)
}

// sub returns (a - b) mod p.
func (f *primeField) sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, f.p)
}

// mul returns (a * b) mod p.
func (f *primeField) mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.p)
}

// sqr returns a^2 mod p.
func (f *primeField) sqr(a *big.Int) *big.Int {
	r := new(big.Int).Mul(a, a)
	return r.Mod(r, f.p)
}

// neg returns (-a) mod p.
func (f *primeField) neg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, f.p)
}

// inv returns a^(-1) mod p, or nil when a is zero.
func (f *primeField) inv(a *big.Int) *big.Int {
	if new(big.Int).Mod(a, f.p).Sign() == 0 {
		return nil
	}
	return new(big.Int).ModInverse(a, f.p)
}

// exp returns a^e mod p for e >= 0.
func (f *primeField) exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(a, e, f.p)
}

// sqrt returns a square root of a, or nil when a is a non-residue.
func (f *primeField) sqrt(a *big.Int) *big.Int {
	return new(big.Int).ModSqrt(f.reduce(a), f.p)
}

// isSquare reports whether a is a quadratic residue (zero included).
func (f *primeField) isSquare(a *big.Int) bool {
	return big.Jacobi(f.reduce(a), f.p) >= 0
}

// parse reads s in the given radix. Radix 0 selects 16 for a "0x" prefix and
// 10 otherwise; radix 16 also tolerates the prefix. An optional leading sign
// is accepted and a negative value is taken mod p. Magnitudes >= p are
// rejected rather than reduced.
func (f *primeField) parse(s string, radix int) (*big.Int, error) {
	str := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(str, "-") {
		neg, str = true, str[1:]
	} else if strings.HasPrefix(str, "+") {
		str = str[1:]
	}
	hasPrefix := strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X")
	switch {
	case radix == 0 && hasPrefix, radix == 16 && hasPrefix:
		radix, str = 16, str[2:]
	case radix == 0:
		radix = 10
	case radix < 2 || radix > 36:
		return nil, fmt.Errorf("%w: unsupported radix %d", ErrMalformedInput, radix)
	}
	if str == "" || strings.ContainsAny(str, "+-_") {
		return nil, fmt.Errorf("%w: %s string %q", ErrMalformedInput, f.name, s)
	}
	v, ok := new(big.Int).SetString(str, radix)
	if !ok {
		return nil, fmt.Errorf("%w: %s string %q in radix %d", ErrMalformedInput, f.name, s, radix)
	}
	if v.Cmp(f.p) >= 0 {
		return nil, fmt.Errorf("%w: %s value exceeds modulus", ErrMalformedInput, f.name)
	}
	if neg {
		v = f.neg(v)
	}
	return v, nil
}

// text formats v in radix (2..36), without a prefix.
func (f *primeField) text(v *big.Int, radix int) string {
	if radix < 2 || radix > 36 {
		radix = 10
	}
	return v.Text(radix)
}

// encode writes v as a little-endian integer of exactly f.size bytes.
func (f *primeField) encode(v *big.Int) []byte {
	out := make([]byte, f.size)
	f.encodeTo(out, v)
	return out
}

// encodeTo is encode into a caller-provided buffer of f.size bytes.
func (f *primeField) encodeTo(dst []byte, v *big.Int) {
	be := v.FillBytes(make([]byte, f.size))
	for i := range be {
		dst[i] = be[len(be)-1-i]
	}
}

// decode is the inverse of encode. The input must have exactly f.size bytes
// and hold a canonical value.
func (f *primeField) decode(b []byte) (*big.Int, error) {
	if len(b) != f.size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrMalformedInput, f.name, f.size, len(b))
	}
	v := leToInt(b)
	if v.Cmp(f.p) >= 0 {
		return nil, fmt.Errorf("%w: %s value exceeds modulus", ErrMalformedInput, f.name)
	}
	return v, nil
}

// decodeHex decodes a hex string holding an encode output.
func (f *primeField) decodeHex(s string) (*big.Int, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return f.decode(b)
}

// fromLittleEndianMask keeps the low f.size bytes of buf and clears every bit
// at position bits-1 and above, so the result is below 2^(bits-1) < p. Input
// whose top byte carries such bits does not survive a round trip.
func (f *primeField) fromLittleEndianMask(buf []byte) *big.Int {
	if len(buf) > f.size {
		buf = buf[:f.size]
	}
	v := leToInt(buf)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(f.bits-1))
	mask.Sub(mask, big.NewInt(1))
	return v.And(v, mask)
}

// fromLittleEndianMod reduces the whole of buf, read little-endian, mod p.
func (f *primeField) fromLittleEndianMod(buf []byte) *big.Int {
	v := leToInt(buf)
	return v.Mod(v, f.p)
}

// random samples uniformly from [0, p) using crypto/rand.
func (f *primeField) random() (*big.Int, error) {
	v, err := rand.Int(rand.Reader, f.p)
	if err != nil {
		return nil, fmt.Errorf("crypto: sampling %s: %w", f.name, err)
	}
	return v, nil
}

// hashToField implements RFC 9380 hash_to_field with count = 1 over
// expand_message_xmd(SHA-256).
func (f *primeField) hashToField(msg, dst []byte) *big.Int {
	l := (f.bits + securityBits + 7) / 8
	uniform, err := hash.ExpandMsgXmd(msg, dst, l)
	if err != nil {
		// The output length and tags are fixed per curve and always valid.
		panic(fmt.Sprintf("crypto: expand_message_xmd: %v", err))
	}
	v := new(big.Int).SetBytes(uniform)
	return v.Mod(v, f.p)
}

func leToInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}
