package crypto

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Fp is an element of the base field of the curve. G1 coordinates live in
// Fp and G2 coordinates in Fp2 over it.
type Fp struct {
	c *Curve
	v *big.Int
}

func (c *Curve) newFp(v *big.Int) *Fp { return &Fp{c: c, v: v} }

// NewFp returns v mod p. Negative inputs wrap, so NewFp(-1) is p - 1.
func (c *Curve) NewFp(v int64) *Fp { return c.newFp(c.fp.reduce(big.NewInt(v))) }

// FpFromBig returns v mod p.
func (c *Curve) FpFromBig(v *big.Int) *Fp { return c.newFp(c.fp.reduce(v)) }

// FpZero returns the additive identity.
func (c *Curve) FpZero() *Fp { return c.newFp(new(big.Int)) }

// FpOne returns the multiplicative identity.
func (c *Curve) FpOne() *Fp { return c.newFp(big.NewInt(1)) }

// FpFromString parses s. Radix 0 auto-detects a "0x" prefix and otherwise
// reads decimal.
func (c *Curve) FpFromString(s string, radix int) (*Fp, error) {
	v, err := c.fp.parse(s, radix)
	if err != nil {
		return nil, err
	}
	return c.newFp(v), nil
}

// RandomFp samples a uniform element from the system CSPRNG.
func (c *Curve) RandomFp() (*Fp, error) {
	v, err := c.fp.random()
	if err != nil {
		return nil, err
	}
	return c.newFp(v), nil
}

// FpFromLittleEndian reads buf as a little-endian integer, truncated to the
// field width with the bits from position bitlen(p)-1 upwards cleared.
// This is a lossy convenience constructor; it is not the inverse of
// Serialize when the top byte of buf needs masking.
func (c *Curve) FpFromLittleEndian(buf []byte) *Fp {
	return c.newFp(c.fp.fromLittleEndianMask(buf))
}

// FpFromLittleEndianMod reads all of buf as a little-endian integer and
// reduces it mod p.
func (c *Curve) FpFromLittleEndianMod(buf []byte) *Fp {
	return c.newFp(c.fp.fromLittleEndianMod(buf))
}

// DeserializeFp decodes the output of Fp.Serialize.
func (c *Curve) DeserializeFp(b []byte) (*Fp, error) {
	v, err := c.fp.decode(b)
	if err != nil {
		return nil, err
	}
	return c.newFp(v), nil
}

// DeserializeFpHexStr decodes the output of Fp.SerializeToHexStr.
func (c *Curve) DeserializeFpHexStr(s string) (*Fp, error) {
	v, err := c.fp.decodeHex(s)
	if err != nil {
		return nil, err
	}
	return c.newFp(v), nil
}

// Curve returns the handle x belongs to.
func (x *Fp) Curve() *Curve { return x.c }

// Add returns x + y.
func (x *Fp) Add(y *Fp) *Fp {
	x.c.mustMatch(y.c)
	return x.c.newFp(x.c.fp.add(x.v, y.v))
}

// Sub returns x - y.
func (x *Fp) Sub(y *Fp) *Fp {
	x.c.mustMatch(y.c)
	return x.c.newFp(x.c.fp.sub(x.v, y.v))
}

// Mul returns x * y.
func (x *Fp) Mul(y *Fp) *Fp {
	x.c.mustMatch(y.c)
	return x.c.newFp(x.c.fp.mul(x.v, y.v))
}

// Sqr returns x^2.
func (x *Fp) Sqr() *Fp { return x.c.newFp(x.c.fp.sqr(x.v)) }

// Neg returns -x.
func (x *Fp) Neg() *Fp { return x.c.newFp(x.c.fp.neg(x.v)) }

// Inv returns 1/x, or ErrNotInvertible when x is zero.
func (x *Fp) Inv() (*Fp, error) {
	inv := x.c.fp.inv(x.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fp zero", ErrNotInvertible)
	}
	return x.c.newFp(inv), nil
}

// Div returns x / y, or ErrDivisionByZero when y is zero.
func (x *Fp) Div(y *Fp) (*Fp, error) {
	x.c.mustMatch(y.c)
	inv := x.c.fp.inv(y.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fp division", ErrDivisionByZero)
	}
	return x.c.newFp(x.c.fp.mul(x.v, inv)), nil
}

// Exp returns x^e for e >= 0.
func (x *Fp) Exp(e *big.Int) *Fp { return x.c.newFp(x.c.fp.exp(x.v, e)) }

// Equal reports whether x and y hold the same value on the same curve.
func (x *Fp) Equal(y *Fp) bool { return x.c == y.c && x.v.Cmp(y.v) == 0 }

// IsZero reports whether x is 0.
func (x *Fp) IsZero() bool { return x.v.Sign() == 0 }

// IsOne reports whether x is 1.
func (x *Fp) IsOne() bool { return x.v.Cmp(bigOne) == 0 }

// BigInt returns the canonical integer value of x.
func (x *Fp) BigInt() *big.Int { return new(big.Int).Set(x.v) }

// Text returns x in the given radix without prefix.
func (x *Fp) Text(radix int) string { return x.c.fp.text(x.v, radix) }

// String returns x in decimal.
func (x *Fp) String() string { return x.Text(10) }

// Serialize returns the fixed-width little-endian encoding of x.
func (x *Fp) Serialize() []byte { return x.c.fp.encode(x.v) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (x *Fp) SerializeToHexStr() string { return hex.EncodeToString(x.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (x *Fp) MarshalBinary() ([]byte, error) { return x.Serialize(), nil }

// UnmarshalBinary decodes into x. x must already be bound to a curve, for
// instance through FpZero.
func (x *Fp) UnmarshalBinary(b []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.fp.decode(b)
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (x *Fp) MarshalText() ([]byte, error) { return []byte(x.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (x *Fp) UnmarshalText(text []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.fp.decodeHex(string(text))
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

// Sqrt returns a square root of x and true, or nil and false when x is not
// a quadratic residue.
func (x *Fp) Sqrt() (*Fp, bool) {
	r := x.c.fp.sqrt(x.v)
	if r == nil {
		return nil, false
	}
	return x.c.newFp(r), true
}
