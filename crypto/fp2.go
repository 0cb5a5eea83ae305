package crypto

// Quadratic extension Fp2 = Fp[i] / (i^2 + 1).
//
// Elements are (a0 + a1*i) with a0, a1 in Fp. Both pairing curves have
// p = 3 mod 4, so -1 is a non-residue and i^2 = -1 defines the extension.
// G2 coordinates live here.

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// fp2 is the internal representation of an Fp2 element.
type fp2 struct {
	a0, a1 *big.Int
}

func newFp2(a0, a1 *big.Int) *fp2 {
	return &fp2{a0: new(big.Int).Set(a0), a1: new(big.Int).Set(a1)}
}

func fp2Zero() *fp2 { return &fp2{a0: new(big.Int), a1: new(big.Int)} }

func fp2One() *fp2 { return &fp2{a0: big.NewInt(1), a1: new(big.Int)} }

func (e *fp2) isZero() bool { return e.a0.Sign() == 0 && e.a1.Sign() == 0 }

func (e *fp2) isOne() bool { return e.a0.Cmp(bigOne) == 0 && e.a1.Sign() == 0 }

// equal compares canonical representatives.
func (e *fp2) equal(f *fp2) bool { return e.a0.Cmp(f.a0) == 0 && e.a1.Cmp(f.a1) == 0 }

// fp2Add returns e + f.
func (c *Curve) fp2Add(e, f *fp2) *fp2 {
	return &fp2{a0: c.fp.add(e.a0, f.a0), a1: c.fp.add(e.a1, f.a1)}
}

// fp2Sub returns e - f.
func (c *Curve) fp2Sub(e, f *fp2) *fp2 {
	return &fp2{a0: c.fp.sub(e.a0, f.a0), a1: c.fp.sub(e.a1, f.a1)}
}

// fp2Mul returns e * f with Karatsuba:
// v0 = a0*b0, v1 = a1*b1, real = v0 - v1, imag = (a0+a1)(b0+b1) - v0 - v1.
func (c *Curve) fp2Mul(e, f *fp2) *fp2 {
	v0 := c.fp.mul(e.a0, f.a0)
	v1 := c.fp.mul(e.a1, f.a1)
	return &fp2{
		a0: c.fp.sub(v0, v1),
		a1: c.fp.sub(c.fp.mul(c.fp.add(e.a0, e.a1), c.fp.add(f.a0, f.a1)), c.fp.add(v0, v1)),
	}
}

// fp2Sqr returns e^2 = (a0+a1)(a0-a1) + 2*a0*a1*i.
func (c *Curve) fp2Sqr(e *fp2) *fp2 {
	ab := c.fp.mul(e.a0, e.a1)
	return &fp2{
		a0: c.fp.mul(c.fp.add(e.a0, e.a1), c.fp.sub(e.a0, e.a1)),
		a1: c.fp.add(ab, ab),
	}
}

// fp2Neg returns -e.
func (c *Curve) fp2Neg(e *fp2) *fp2 {
	return &fp2{a0: c.fp.neg(e.a0), a1: c.fp.neg(e.a1)}
}

// fp2Conj returns a0 - a1*i.
func (c *Curve) fp2Conj(e *fp2) *fp2 {
	return &fp2{a0: new(big.Int).Set(e.a0), a1: c.fp.neg(e.a1)}
}

// fp2MulScalar returns e * s for s in Fp.
func (c *Curve) fp2MulScalar(e *fp2, s *big.Int) *fp2 {
	return &fp2{a0: c.fp.mul(e.a0, s), a1: c.fp.mul(e.a1, s)}
}

// fp2Inv returns e^-1 = (a0 - a1*i) / (a0^2 + a1^2), or nil for zero.
func (c *Curve) fp2Inv(e *fp2) *fp2 {
	inv := c.fp.inv(c.fp.add(c.fp.sqr(e.a0), c.fp.sqr(e.a1)))
	if inv == nil {
		return nil
	}
	return &fp2{a0: c.fp.mul(e.a0, inv), a1: c.fp.mul(c.fp.neg(e.a1), inv)}
}

// fp2Sqrt returns a square root of e, or nil when e is a non-residue.
//
// With n = a0^2 + a1^2 and s = sqrt(n), a root is x0 + x1*i where
// x0^2 = (a0 +- s)/2 and x1 = a1 / (2*x0). The candidate is squared back
// before it is returned.
func (c *Curve) fp2Sqrt(e *fp2) *fp2 {
	if e.a1.Sign() == 0 {
		if r := c.fp.sqrt(e.a0); r != nil {
			return &fp2{a0: r, a1: new(big.Int)}
		}
		r := c.fp.sqrt(c.fp.neg(e.a0))
		if r == nil {
			return nil
		}
		return &fp2{a0: new(big.Int), a1: r}
	}
	s := c.fp.sqrt(c.fp.add(c.fp.sqr(e.a0), c.fp.sqr(e.a1)))
	if s == nil {
		return nil
	}
	halfInv := c.fp.inv(big.NewInt(2))
	t := c.fp.mul(c.fp.add(e.a0, s), halfInv)
	if !c.fp.isSquare(t) {
		t = c.fp.mul(c.fp.sub(e.a0, s), halfInv)
	}
	x0 := c.fp.sqrt(t)
	if x0 == nil || x0.Sign() == 0 {
		return nil
	}
	x1 := c.fp.mul(e.a1, c.fp.inv(c.fp.add(x0, x0)))
	r := &fp2{a0: x0, a1: x1}
	if !c.fp2Sqr(r).equal(e) {
		return nil
	}
	return r
}

// fp2Sgn0 is sgn0 of RFC 9380 section 4.1 for m = 2.
func fp2Sgn0(e *fp2) bool {
	if e.a0.Sign() != 0 {
		return e.a0.Bit(0) == 1
	}
	return e.a1.Bit(0) == 1
}

// Fp2 is an element of the quadratic extension used for G2 coordinates.
// Values are immutable.
type Fp2 struct {
	c *Curve
	v *fp2
}

func (c *Curve) wrapFp2(v *fp2) *Fp2 { return &Fp2{c: c, v: v} }

// NewFp2 returns a + b*i.
func (e *Engine) NewFp2(a, b *Fp) *Fp2 {
	e.c.mustMatch(a.c)
	e.c.mustMatch(b.c)
	return e.c.wrapFp2(newFp2(a.v, b.v))
}

// Fp2Zero returns 0.
func (e *Engine) Fp2Zero() *Fp2 { return e.c.wrapFp2(fp2Zero()) }

// Fp2One returns 1.
func (e *Engine) Fp2One() *Fp2 { return e.c.wrapFp2(fp2One()) }

// Fp2FromString parses "a b", two Fp values separated by whitespace.
func (e *Engine) Fp2FromString(s string, radix int) (*Fp2, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: Fp2 string needs 2 components, got %d", ErrMalformedInput, len(parts))
	}
	v, err := e.c.parseFp2(parts, radix)
	if err != nil {
		return nil, err
	}
	return e.c.wrapFp2(v), nil
}

// DeserializeFp2 decodes the output of Fp2.Serialize.
func (e *Engine) DeserializeFp2(b []byte) (*Fp2, error) {
	v, err := e.c.decodeFp2(b)
	if err != nil {
		return nil, err
	}
	return e.c.wrapFp2(v), nil
}

// DeserializeFp2HexStr decodes the output of Fp2.SerializeToHexStr.
func (e *Engine) DeserializeFp2HexStr(s string) (*Fp2, error) {
	b, err := decodeHexString(s)
	if err != nil {
		return nil, err
	}
	return e.DeserializeFp2(b)
}

func (c *Curve) parseFp2(parts []string, radix int) (*fp2, error) {
	a0, err := c.fp.parse(parts[0], radix)
	if err != nil {
		return nil, err
	}
	a1, err := c.fp.parse(parts[1], radix)
	if err != nil {
		return nil, err
	}
	return &fp2{a0: a0, a1: a1}, nil
}

// encodeFp2 writes a0 then a1, each at the Fp width.
func (c *Curve) encodeFp2(v *fp2) []byte {
	out := make([]byte, 2*c.fp.size)
	c.fp.encodeTo(out[:c.fp.size], v.a0)
	c.fp.encodeTo(out[c.fp.size:], v.a1)
	return out
}

func (c *Curve) decodeFp2(b []byte) (*fp2, error) {
	if len(b) != 2*c.fp.size {
		return nil, fmt.Errorf("%w: Fp2 needs %d bytes, got %d", ErrMalformedInput, 2*c.fp.size, len(b))
	}
	a0, err := c.fp.decode(b[:c.fp.size])
	if err != nil {
		return nil, err
	}
	a1, err := c.fp.decode(b[c.fp.size:])
	if err != nil {
		return nil, err
	}
	return &fp2{a0: a0, a1: a1}, nil
}

// Curve returns the handle x belongs to.
func (x *Fp2) Curve() *Curve { return x.c }

// A returns the real part.
func (x *Fp2) A() *Fp { return x.c.newFp(new(big.Int).Set(x.v.a0)) }

// B returns the coefficient of i.
func (x *Fp2) B() *Fp { return x.c.newFp(new(big.Int).Set(x.v.a1)) }

// Add returns x + y.
func (x *Fp2) Add(y *Fp2) *Fp2 {
	x.c.mustMatch(y.c)
	return x.c.wrapFp2(x.c.fp2Add(x.v, y.v))
}

// Sub returns x - y.
func (x *Fp2) Sub(y *Fp2) *Fp2 {
	x.c.mustMatch(y.c)
	return x.c.wrapFp2(x.c.fp2Sub(x.v, y.v))
}

// Mul returns x * y.
func (x *Fp2) Mul(y *Fp2) *Fp2 {
	x.c.mustMatch(y.c)
	return x.c.wrapFp2(x.c.fp2Mul(x.v, y.v))
}

// Sqr returns x^2.
func (x *Fp2) Sqr() *Fp2 { return x.c.wrapFp2(x.c.fp2Sqr(x.v)) }

// Neg returns -x.
func (x *Fp2) Neg() *Fp2 { return x.c.wrapFp2(x.c.fp2Neg(x.v)) }

// Conjugate returns a - b*i.
func (x *Fp2) Conjugate() *Fp2 { return x.c.wrapFp2(x.c.fp2Conj(x.v)) }

// Inv returns 1/x, or ErrNotInvertible when x is zero.
func (x *Fp2) Inv() (*Fp2, error) {
	inv := x.c.fp2Inv(x.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fp2 zero", ErrNotInvertible)
	}
	return x.c.wrapFp2(inv), nil
}

// Div returns x / y, or ErrDivisionByZero when y is zero.
func (x *Fp2) Div(y *Fp2) (*Fp2, error) {
	x.c.mustMatch(y.c)
	inv := x.c.fp2Inv(y.v)
	if inv == nil {
		return nil, fmt.Errorf("%w: Fp2 division", ErrDivisionByZero)
	}
	return x.c.wrapFp2(x.c.fp2Mul(x.v, inv)), nil
}

// Sqrt returns a square root of x and true, or nil and false for a
// non-residue.
func (x *Fp2) Sqrt() (*Fp2, bool) {
	r := x.c.fp2Sqrt(x.v)
	if r == nil {
		return nil, false
	}
	return x.c.wrapFp2(r), true
}

// Equal reports whether x and y are the same element of the same curve.
func (x *Fp2) Equal(y *Fp2) bool { return x.c == y.c && x.v.equal(y.v) }

// IsZero reports whether x is 0.
func (x *Fp2) IsZero() bool { return x.v.isZero() }

// IsOne reports whether x is 1.
func (x *Fp2) IsOne() bool { return x.v.isOne() }

// Text returns "a b" in the given radix.
func (x *Fp2) Text(radix int) string {
	return x.c.fp.text(x.v.a0, radix) + " " + x.c.fp.text(x.v.a1, radix)
}

// String returns x in decimal.
func (x *Fp2) String() string { return x.Text(10) }

// Serialize returns a's bytes followed by b's, each at the Fp width.
func (x *Fp2) Serialize() []byte { return x.c.encodeFp2(x.v) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (x *Fp2) SerializeToHexStr() string { return hex.EncodeToString(x.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (x *Fp2) MarshalBinary() ([]byte, error) { return x.Serialize(), nil }

// UnmarshalBinary decodes into a bound x.
func (x *Fp2) UnmarshalBinary(b []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.decodeFp2(b)
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (x *Fp2) MarshalText() ([]byte, error) { return []byte(x.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (x *Fp2) UnmarshalText(text []byte) error {
	b, err := decodeHexString(string(text))
	if err != nil {
		return err
	}
	return x.UnmarshalBinary(b)
}
