package crypto

// G1 point operations over y^2 = x^3 + a*x + b in Fp.
//
// Points are kept in Jacobian coordinates (X, Y, Z) where the affine point
// is (X/Z^2, Y/Z^3). The point at infinity has Z = 0. Unlike the pairing
// curves, the NIST curves have a != 0, so doubling carries the a*Z^4 term.

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

type g1Jac struct {
	x, y, z *big.Int
}

func g1Infinity() *g1Jac {
	return &g1Jac{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
}

func g1FromAffine(x, y *big.Int) *g1Jac {
	return &g1Jac{x: new(big.Int).Set(x), y: new(big.Int).Set(y), z: big.NewInt(1)}
}

func (p *g1Jac) isInfinity() bool { return p.z.Sign() == 0 }

// g1ToAffine converts to affine coordinates. Callers handle infinity.
func (c *Curve) g1ToAffine(p *g1Jac) (x, y *big.Int) {
	zInv := c.fp.inv(p.z)
	zInv2 := c.fp.sqr(zInv)
	zInv3 := c.fp.mul(zInv2, zInv)
	return c.fp.mul(p.x, zInv2), c.fp.mul(p.y, zInv3)
}

// onCurveG1 checks y^2 = x^3 + a*x + b for canonical coordinates.
func (c *Curve) onCurveG1(x, y *big.Int) bool {
	if x.Sign() < 0 || x.Cmp(c.fp.p) >= 0 || y.Sign() < 0 || y.Cmp(c.fp.p) >= 0 {
		return false
	}
	return c.fp.sqr(y).Cmp(c.g1Rhs(x)) == 0
}

// g1Rhs returns x^3 + a*x + b.
func (c *Curve) g1Rhs(x *big.Int) *big.Int {
	rhs := c.fp.mul(c.fp.sqr(x), x)
	if c.a.Sign() != 0 {
		rhs = c.fp.add(rhs, c.fp.mul(c.a, x))
	}
	return c.fp.add(rhs, c.b)
}

// inG1 reports whether an on-curve affine point lies in the order-r
// subgroup. Every plain curve here, and BN254, has cofactor 1.
func (c *Curve) inG1(x, y *big.Int) bool {
	if c.backend == nil {
		return true
	}
	return c.backend.inG1(x, y)
}

// g1Add adds two points with add-2007-bl.
func (c *Curve) g1Add(a, b *g1Jac) *g1Jac {
	if a.isInfinity() {
		return b
	}
	if b.isInfinity() {
		return a
	}
	fp := c.fp
	z1sq := fp.sqr(a.z)
	z2sq := fp.sqr(b.z)
	u1 := fp.mul(a.x, z2sq)
	u2 := fp.mul(b.x, z1sq)
	s1 := fp.mul(a.y, fp.mul(b.z, z2sq))
	s2 := fp.mul(b.y, fp.mul(a.z, z1sq))

	if u1.Cmp(u2) == 0 {
		if s1.Cmp(s2) == 0 {
			return c.g1Double(a)
		}
		return g1Infinity()
	}

	h := fp.sub(u2, u1)
	i := fp.sqr(fp.add(h, h))
	j := fp.mul(h, i)
	r := fp.sub(s2, s1)
	r = fp.add(r, r)
	v := fp.mul(u1, i)

	// X3 = r^2 - J - 2*V
	x3 := fp.sub(fp.sub(fp.sqr(r), j), fp.add(v, v))
	// Y3 = r*(V - X3) - 2*S1*J
	s1j := fp.mul(s1, j)
	y3 := fp.sub(fp.mul(r, fp.sub(v, x3)), fp.add(s1j, s1j))
	// Z3 = ((Z1+Z2)^2 - Z1^2 - Z2^2) * H
	z3 := fp.mul(fp.sub(fp.sub(fp.sqr(fp.add(a.z, b.z)), z1sq), z2sq), h)

	return &g1Jac{x: x3, y: y3, z: z3}
}

// g1Double doubles with dbl-2007-bl, valid for any a.
func (c *Curve) g1Double(p *g1Jac) *g1Jac {
	if p.isInfinity() || p.y.Sign() == 0 {
		return g1Infinity()
	}
	fp := c.fp
	xx := fp.sqr(p.x)
	yy := fp.sqr(p.y)
	yyyy := fp.sqr(yy)
	zz := fp.sqr(p.z)

	// S = 2*((X+YY)^2 - XX - YYYY)
	s := fp.sub(fp.sub(fp.sqr(fp.add(p.x, yy)), xx), yyyy)
	s = fp.add(s, s)
	// M = 3*XX + a*ZZ^2
	m := fp.add(fp.add(xx, xx), xx)
	if c.a.Sign() != 0 {
		m = fp.add(m, fp.mul(c.a, fp.sqr(zz)))
	}
	x3 := fp.sub(fp.sqr(m), fp.add(s, s))
	// Y3 = M*(S - X3) - 8*YYYY
	y8 := fp.mul(yyyy, big.NewInt(8))
	y3 := fp.sub(fp.mul(m, fp.sub(s, x3)), y8)
	// Z3 = (Y+Z)^2 - YY - ZZ
	z3 := fp.sub(fp.sub(fp.sqr(fp.add(p.y, p.z)), yy), zz)

	return &g1Jac{x: x3, y: y3, z: z3}
}

func (c *Curve) g1Neg(p *g1Jac) *g1Jac {
	if p.isInfinity() {
		return g1Infinity()
	}
	return &g1Jac{x: p.x, y: c.fp.neg(p.y), z: p.z}
}

// g1ScalarMul computes k*P by double-and-add with k reduced mod r.
func (c *Curve) g1ScalarMul(p *g1Jac, k *big.Int) *g1Jac {
	kMod := c.fr.reduce(k)
	if kMod.Sign() == 0 || p.isInfinity() {
		return g1Infinity()
	}
	r := g1Infinity()
	for i := kMod.BitLen() - 1; i >= 0; i-- {
		r = c.g1Double(r)
		if kMod.Bit(i) == 1 {
			r = c.g1Add(r, p)
		}
	}
	return r
}

// g1Equal compares projectively: X1*Z2^2 == X2*Z1^2, Y1*Z2^3 == Y2*Z1^3.
func (c *Curve) g1Equal(a, b *g1Jac) bool {
	if a.isInfinity() || b.isInfinity() {
		return a.isInfinity() && b.isInfinity()
	}
	z1sq := c.fp.sqr(a.z)
	z2sq := c.fp.sqr(b.z)
	if c.fp.mul(a.x, z2sq).Cmp(c.fp.mul(b.x, z1sq)) != 0 {
		return false
	}
	return c.fp.mul(a.y, c.fp.mul(z2sq, b.z)).Cmp(c.fp.mul(b.y, c.fp.mul(z1sq, a.z))) == 0
}

// G1 is a point of the prime-order subgroup of the curve over Fp. Values
// are immutable.
type G1 struct {
	c *Curve
	p *g1Jac
}

func (c *Curve) wrapG1(p *g1Jac) *G1 { return &G1{c: c, p: p} }

// G1Zero returns the point at infinity.
func (c *Curve) G1Zero() *G1 { return c.wrapG1(g1Infinity()) }

// G1Generator returns the standard base point.
func (c *Curve) G1Generator() *G1 { return c.wrapG1(g1FromAffine(c.gx, c.gy)) }

// NewG1 builds a point from affine coordinates, checking the curve equation
// and subgroup membership.
func (c *Curve) NewG1(x, y *Fp) (*G1, error) {
	if err := c.match(x.c); err != nil {
		return nil, err
	}
	if err := c.match(y.c); err != nil {
		return nil, err
	}
	return c.g1FromCoords(x.v, y.v)
}

func (c *Curve) g1FromCoords(x, y *big.Int) (*G1, error) {
	if !c.onCurveG1(x, y) {
		return nil, fmt.Errorf("%w: G1 point not on curve", ErrMalformedInput)
	}
	if !c.inG1(x, y) {
		return nil, fmt.Errorf("%w: G1 point not in subgroup", ErrMalformedInput)
	}
	return c.wrapG1(g1FromAffine(x, y)), nil
}

// G1FromString parses "0" for infinity or "1 x y" with affine coordinates.
func (c *Curve) G1FromString(s string, radix int) (*G1, error) {
	parts := strings.Fields(s)
	switch {
	case len(parts) == 1 && parts[0] == "0":
		return c.G1Zero(), nil
	case len(parts) == 3 && parts[0] == "1":
		x, err := c.fp.parse(parts[1], radix)
		if err != nil {
			return nil, err
		}
		y, err := c.fp.parse(parts[2], radix)
		if err != nil {
			return nil, err
		}
		return c.g1FromCoords(x, y)
	}
	return nil, fmt.Errorf("%w: G1 string %q", ErrMalformedInput, s)
}

// DeserializeG1 decodes the compressed output of G1.Serialize.
func (c *Curve) DeserializeG1(b []byte) (*G1, error) {
	p, err := c.decodeG1(b)
	if err != nil {
		return nil, err
	}
	return c.wrapG1(p), nil
}

// DeserializeG1HexStr decodes the output of G1.SerializeToHexStr.
func (c *Curve) DeserializeG1HexStr(s string) (*G1, error) {
	b, err := decodeHexString(s)
	if err != nil {
		return nil, err
	}
	return c.DeserializeG1(b)
}

// Curve returns the handle p belongs to.
func (p *G1) Curve() *Curve { return p.c }

// Add returns p + q.
func (p *G1) Add(q *G1) *G1 {
	p.c.mustMatch(q.c)
	return p.c.wrapG1(p.c.g1Add(p.p, q.p))
}

// Sub returns p - q.
func (p *G1) Sub(q *G1) *G1 {
	p.c.mustMatch(q.c)
	return p.c.wrapG1(p.c.g1Add(p.p, p.c.g1Neg(q.p)))
}

// Neg returns -p.
func (p *G1) Neg() *G1 { return p.c.wrapG1(p.c.g1Neg(p.p)) }

// Dbl returns 2p.
func (p *G1) Dbl() *G1 { return p.c.wrapG1(p.c.g1Double(p.p)) }

// Mul returns k*p.
func (p *G1) Mul(k *Fr) *G1 {
	p.c.mustMatch(k.c)
	return p.c.wrapG1(p.c.g1ScalarMul(p.p, k.v))
}

// MulBig returns k*p for an arbitrary integer k.
func (p *G1) MulBig(k *big.Int) *G1 { return p.c.wrapG1(p.c.g1ScalarMul(p.p, k)) }

// Equal reports whether p and q are the same point, whatever their Z.
func (p *G1) Equal(q *G1) bool { return p.c == q.c && p.c.g1Equal(p.p, q.p) }

// IsZero reports whether p is the point at infinity.
func (p *G1) IsZero() bool { return p.p.isInfinity() }

// Normalize returns the same point with Z = 1, or infinity unchanged.
func (p *G1) Normalize() *G1 {
	if p.p.isInfinity() {
		return p.c.G1Zero()
	}
	x, y := p.c.g1ToAffine(p.p)
	return p.c.wrapG1(&g1Jac{x: x, y: y, z: big.NewInt(1)})
}

// Affine returns the affine coordinates of p. ok is false at infinity.
func (p *G1) Affine() (x, y *Fp, ok bool) {
	if p.p.isInfinity() {
		return nil, nil, false
	}
	ax, ay := p.c.g1ToAffine(p.p)
	return p.c.newFp(ax), p.c.newFp(ay), true
}

// IsOnCurve reports whether p satisfies the curve equation.
func (p *G1) IsOnCurve() bool {
	if p.p.isInfinity() {
		return true
	}
	return p.c.onCurveG1(p.c.g1ToAffine(p.p))
}

// IsInSubgroup reports whether p lies in the order-r subgroup.
func (p *G1) IsInSubgroup() bool {
	if p.p.isInfinity() {
		return true
	}
	return p.c.inG1(p.c.g1ToAffine(p.p))
}

// Text returns "0" at infinity and "1 x y" otherwise.
func (p *G1) Text(radix int) string {
	if p.p.isInfinity() {
		return "0"
	}
	x, y := p.c.g1ToAffine(p.p)
	return "1 " + p.c.fp.text(x, radix) + " " + p.c.fp.text(y, radix)
}

// String returns p in decimal.
func (p *G1) String() string { return p.Text(10) }

// Serialize returns the compressed encoding of p.
func (p *G1) Serialize() []byte { return p.c.encodeG1(p.p) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (p *G1) SerializeToHexStr() string { return hex.EncodeToString(p.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *G1) MarshalBinary() ([]byte, error) { return p.Serialize(), nil }

// UnmarshalBinary decodes into a bound p.
func (p *G1) UnmarshalBinary(b []byte) error {
	if p.c == nil {
		return ErrUnbound
	}
	q, err := p.c.decodeG1(b)
	if err != nil {
		return err
	}
	p.p = q
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (p *G1) MarshalText() ([]byte, error) { return []byte(p.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (p *G1) UnmarshalText(text []byte) error {
	b, err := decodeHexString(string(text))
	if err != nil {
		return err
	}
	return p.UnmarshalBinary(b)
}
