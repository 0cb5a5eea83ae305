package crypto

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Fr is an element of the scalar field, the integers modulo the order of
// the G1 subgroup. Values are immutable; every operation returns a new Fr.
type Fr struct {
	c *Curve
	v *big.Int
}

func (c *Curve) newFr(v *big.Int) *Fr { return &Fr{c: c, v: v} }

// NewFr returns v mod r. Negative inputs wrap, so NewFr(-15) is r - 15.
func (c *Curve) NewFr(v int64) *Fr { return c.newFr(c.fr.reduce(big.NewInt(v))) }

// FrFromBig returns v mod r.
func (c *Curve) FrFromBig(v *big.Int) *Fr { return c.newFr(c.fr.reduce(v)) }

// FrZero returns the additive identity.
func (c *Curve) FrZero() *Fr { return c.newFr(new(big.Int)) }

// FrOne returns the multiplicative identity.
func (c *Curve) FrOne() *Fr { return c.newFr(big.NewInt(1)) }

// FrFromString parses s. Radix 0 auto-detects a "0x" prefix and otherwise
// reads decimal.
func (c *Curve) FrFromString(s string, radix int) (*Fr, error) {
	v, err := c.fr.parse(s, radix)
	if err != nil {
		return nil, err
	}
	return c.newFr(v), nil
}

// RandomFr samples a uniform scalar from the system CSPRNG.
func (c *Curve) RandomFr() (*Fr, error) {
	v, err := c.fr.random()
	if err != nil {
		return nil, err
	}
	return c.newFr(v), nil
}

// HashToFr deterministically maps msg to a scalar.
func (c *Curve) HashToFr(msg []byte) *Fr {
	return c.newFr(c.fr.hashToField(msg, c.dstFr))
}

// FrFromLittleEndian reads buf as a little-endian integer, truncated to the
// scalar width with the bits from position bitlen(r)-1 upwards cleared.
// This is a lossy convenience constructor; it is not the inverse of
// Serialize when the top byte of buf needs masking.
func (c *Curve) FrFromLittleEndian(buf []byte) *Fr {
	return c.newFr(c.fr.fromLittleEndianMask(buf))
}

// FrFromLittleEndianMod reads all of buf as a little-endian integer and
// reduces it mod r.
func (c *Curve) FrFromLittleEndianMod(buf []byte) *Fr {
	return c.newFr(c.fr.fromLittleEndianMod(buf))
}

// DeserializeFr decodes the output of Fr.Serialize.
func (c *Curve) DeserializeFr(b []byte) (*Fr, error) {
	v, err := c.fr.decode(b)
	if err != nil {
		return nil, err
	}
	return c.newFr(v), nil
}

// DeserializeFrHexStr decodes the output of Fr.SerializeToHexStr.
func (c *Curve) DeserializeFrHexStr(s string) (*Fr, error) {
	v, err := c.fr.decodeHex(s)
	if err != nil {
		return nil, err
	}
	return c.newFr(v), nil
}

// Curve returns the handle x belongs to.
func (x *Fr) Curve() *Curve { return x.c }

// Add returns x + y.
func (x *Fr) Add(y *Fr) *Fr {
	x.c.mustMatch(y.c)
	return x.c.newFr(x.c.fr.add(x.v, y.v))
}

// Sub returns x - y.
func (x *Fr) Sub(y *Fr) *Fr {
	x.c.mustMatch(y.c)
	return x.c.newFr(x.c.fr.sub(x.v, y.v))
}

// Mul returns x * y.
func (x *Fr) Mul(y *Fr) *Fr {
	x.c.mustMatch(y.c)
	return x.c.newFr(x.c.fr.mul(x.v, y.v))
}

// Sqr returns x^2.
func (x *Fr) Sqr() *Fr { return x.c.newFr(x.c.fr.sqr(x.v)) }

// Neg returns -x.
func (x *Fr) Neg() *Fr { return x.c.newFr(x.c.fr.neg(x.v)) }

// Inv returns 1/x, or ErrNotInvertible when x is zero.
func (x *Fr) Inv() (*Fr, error) {
	inv := x.c.fr.inv(x.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fr zero", ErrNotInvertible)
	}
	return x.c.newFr(inv), nil
}

// Div returns x / y, or ErrDivisionByZero when y is zero.
func (x *Fr) Div(y *Fr) (*Fr, error) {
	x.c.mustMatch(y.c)
	inv := x.c.fr.inv(y.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fr division", ErrDivisionByZero)
	}
	return x.c.newFr(x.c.fr.mul(x.v, inv)), nil
}

// Exp returns x^e for e >= 0.
func (x *Fr) Exp(e *big.Int) *Fr { return x.c.newFr(x.c.fr.exp(x.v, e)) }

// Equal reports whether x and y hold the same value on the same curve.
func (x *Fr) Equal(y *Fr) bool { return x.c == y.c && x.v.Cmp(y.v) == 0 }

// IsZero reports whether x is 0.
func (x *Fr) IsZero() bool { return x.v.Sign() == 0 }

// IsOne reports whether x is 1.
func (x *Fr) IsOne() bool { return x.v.Cmp(bigOne) == 0 }

// BigInt returns the canonical integer value of x.
func (x *Fr) BigInt() *big.Int { return new(big.Int).Set(x.v) }

// Text returns x in the given radix without prefix.
func (x *Fr) Text(radix int) string { return x.c.fr.text(x.v, radix) }

// String returns x in decimal.
func (x *Fr) String() string { return x.Text(10) }

// Serialize returns the fixed-width little-endian encoding of x.
func (x *Fr) Serialize() []byte { return x.c.fr.encode(x.v) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (x *Fr) SerializeToHexStr() string { return hex.EncodeToString(x.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (x *Fr) MarshalBinary() ([]byte, error) { return x.Serialize(), nil }

// UnmarshalBinary decodes into x. x must already be bound to a curve, for
// instance through FrZero.
func (x *Fr) UnmarshalBinary(b []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.fr.decode(b)
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (x *Fr) MarshalText() ([]byte, error) { return []byte(x.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (x *Fr) UnmarshalText(text []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.fr.decodeHex(string(text))
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

var bigOne = big.NewInt(1)
