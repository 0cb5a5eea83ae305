package crypto

// G2 point operations on the sextic twist y^2 = x^3 + b' over Fp2.
//
// Same Jacobian layout as G1, with Fp2 coordinates. Twists of both pairing
// curves have a = 0, so doubling uses the short dbl-2009-l formulas.

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

type g2Jac struct {
	x, y, z *fp2
}

func g2Infinity() *g2Jac {
	return &g2Jac{x: fp2One(), y: fp2One(), z: fp2Zero()}
}

func g2FromAffine(x, y *fp2) *g2Jac {
	return &g2Jac{x: newFp2(x.a0, x.a1), y: newFp2(y.a0, y.a1), z: fp2One()}
}

func (p *g2Jac) isInfinity() bool { return p.z.isZero() }

func (c *Curve) g2ToAffine(p *g2Jac) (x, y *fp2) {
	zInv := c.fp2Inv(p.z)
	zInv2 := c.fp2Sqr(zInv)
	zInv3 := c.fp2Mul(zInv2, zInv)
	return c.fp2Mul(p.x, zInv2), c.fp2Mul(p.y, zInv3)
}

// onCurveG2 checks y^2 = x^3 + b'.
func (c *Curve) onCurveG2(x, y *fp2) bool {
	return c.fp2Sqr(y).equal(c.g2Rhs(x))
}

func (c *Curve) g2Rhs(x *fp2) *fp2 {
	return c.fp2Add(c.fp2Mul(c.fp2Sqr(x), x), c.twistB)
}

func (c *Curve) g2Add(a, b *g2Jac) *g2Jac {
	if a.isInfinity() {
		return b
	}
	if b.isInfinity() {
		return a
	}
	z1sq := c.fp2Sqr(a.z)
	z2sq := c.fp2Sqr(b.z)
	u1 := c.fp2Mul(a.x, z2sq)
	u2 := c.fp2Mul(b.x, z1sq)
	s1 := c.fp2Mul(a.y, c.fp2Mul(b.z, z2sq))
	s2 := c.fp2Mul(b.y, c.fp2Mul(a.z, z1sq))

	if u1.equal(u2) {
		if s1.equal(s2) {
			return c.g2Double(a)
		}
		return g2Infinity()
	}

	h := c.fp2Sub(u2, u1)
	i := c.fp2Sqr(c.fp2Add(h, h))
	j := c.fp2Mul(h, i)
	r := c.fp2Sub(s2, s1)
	r = c.fp2Add(r, r)
	v := c.fp2Mul(u1, i)

	x3 := c.fp2Sub(c.fp2Sub(c.fp2Sqr(r), j), c.fp2Add(v, v))
	s1j := c.fp2Mul(s1, j)
	y3 := c.fp2Sub(c.fp2Mul(r, c.fp2Sub(v, x3)), c.fp2Add(s1j, s1j))
	z3 := c.fp2Mul(c.fp2Sub(c.fp2Sub(c.fp2Sqr(c.fp2Add(a.z, b.z)), z1sq), z2sq), h)

	return &g2Jac{x: x3, y: y3, z: z3}
}

func (c *Curve) g2Double(p *g2Jac) *g2Jac {
	if p.isInfinity() || p.y.isZero() {
		return g2Infinity()
	}
	a := c.fp2Sqr(p.x)
	b := c.fp2Sqr(p.y)
	cc := c.fp2Sqr(b)

	// D = 2*((X+B)^2 - A - C)
	d := c.fp2Sub(c.fp2Sub(c.fp2Sqr(c.fp2Add(p.x, b)), a), cc)
	d = c.fp2Add(d, d)
	// E = 3*A
	e := c.fp2Add(c.fp2Add(a, a), a)

	x3 := c.fp2Sub(c.fp2Sqr(e), c.fp2Add(d, d))
	y3 := c.fp2Sub(c.fp2Mul(e, c.fp2Sub(d, x3)), c.fp2MulScalar(cc, big.NewInt(8)))
	z3 := c.fp2Mul(c.fp2Add(p.y, p.y), p.z)

	return &g2Jac{x: x3, y: y3, z: z3}
}

func (c *Curve) g2Neg(p *g2Jac) *g2Jac {
	if p.isInfinity() {
		return g2Infinity()
	}
	return &g2Jac{x: p.x, y: c.fp2Neg(p.y), z: p.z}
}

func (c *Curve) g2ScalarMul(p *g2Jac, k *big.Int) *g2Jac {
	kMod := c.fr.reduce(k)
	if kMod.Sign() == 0 || p.isInfinity() {
		return g2Infinity()
	}
	r := g2Infinity()
	for i := kMod.BitLen() - 1; i >= 0; i-- {
		r = c.g2Double(r)
		if kMod.Bit(i) == 1 {
			r = c.g2Add(r, p)
		}
	}
	return r
}

func (c *Curve) g2Equal(a, b *g2Jac) bool {
	if a.isInfinity() || b.isInfinity() {
		return a.isInfinity() && b.isInfinity()
	}
	z1sq := c.fp2Sqr(a.z)
	z2sq := c.fp2Sqr(b.z)
	if !c.fp2Mul(a.x, z2sq).equal(c.fp2Mul(b.x, z1sq)) {
		return false
	}
	return c.fp2Mul(a.y, c.fp2Mul(z2sq, b.z)).equal(c.fp2Mul(b.y, c.fp2Mul(z1sq, a.z)))
}

// G2 is a point of the order-r subgroup of the twist. Values are immutable.
type G2 struct {
	c *Curve
	p *g2Jac
}

func (c *Curve) wrapG2(p *g2Jac) *G2 { return &G2{c: c, p: p} }

// G2Zero returns the point at infinity.
func (e *Engine) G2Zero() *G2 { return e.c.wrapG2(g2Infinity()) }

// G2Generator returns the standard G2 base point.
func (e *Engine) G2Generator() *G2 { return e.c.wrapG2(g2FromAffine(e.c.g2x, e.c.g2y)) }

// NewG2 builds a point from affine coordinates, checking the twist
// equation and subgroup membership.
func (e *Engine) NewG2(x, y *Fp2) (*G2, error) {
	if err := e.c.match(x.c); err != nil {
		return nil, err
	}
	if err := e.c.match(y.c); err != nil {
		return nil, err
	}
	return e.c.g2FromCoords(x.v, y.v)
}

func (c *Curve) g2FromCoords(x, y *fp2) (*G2, error) {
	if !c.onCurveG2(x, y) {
		return nil, fmt.Errorf("%w: G2 point not on curve", ErrMalformedInput)
	}
	if !c.backend.inG2(x, y) {
		return nil, fmt.Errorf("%w: G2 point not in subgroup", ErrMalformedInput)
	}
	return c.wrapG2(g2FromAffine(x, y)), nil
}

// G2FromString parses "0" for infinity or "1 xa xb ya yb".
func (e *Engine) G2FromString(s string, radix int) (*G2, error) {
	parts := strings.Fields(s)
	switch {
	case len(parts) == 1 && parts[0] == "0":
		return e.G2Zero(), nil
	case len(parts) == 5 && parts[0] == "1":
		x, err := e.c.parseFp2(parts[1:3], radix)
		if err != nil {
			return nil, err
		}
		y, err := e.c.parseFp2(parts[3:5], radix)
		if err != nil {
			return nil, err
		}
		return e.c.g2FromCoords(x, y)
	}
	return nil, fmt.Errorf("%w: G2 string %q", ErrMalformedInput, s)
}

// DeserializeG2 decodes the compressed output of G2.Serialize.
func (e *Engine) DeserializeG2(b []byte) (*G2, error) {
	p, err := e.c.decodeG2(b)
	if err != nil {
		return nil, err
	}
	return e.c.wrapG2(p), nil
}

// DeserializeG2HexStr decodes the output of G2.SerializeToHexStr.
func (e *Engine) DeserializeG2HexStr(s string) (*G2, error) {
	b, err := decodeHexString(s)
	if err != nil {
		return nil, err
	}
	return e.DeserializeG2(b)
}

// Curve returns the handle q belongs to.
func (q *G2) Curve() *Curve { return q.c }

// Add returns q + r.
func (q *G2) Add(r *G2) *G2 {
	q.c.mustMatch(r.c)
	return q.c.wrapG2(q.c.g2Add(q.p, r.p))
}

// Sub returns q - r.
func (q *G2) Sub(r *G2) *G2 {
	q.c.mustMatch(r.c)
	return q.c.wrapG2(q.c.g2Add(q.p, q.c.g2Neg(r.p)))
}

// Neg returns -q.
func (q *G2) Neg() *G2 { return q.c.wrapG2(q.c.g2Neg(q.p)) }

// Dbl returns 2q.
func (q *G2) Dbl() *G2 { return q.c.wrapG2(q.c.g2Double(q.p)) }

// Mul returns k*q.
func (q *G2) Mul(k *Fr) *G2 {
	q.c.mustMatch(k.c)
	return q.c.wrapG2(q.c.g2ScalarMul(q.p, k.v))
}

// MulBig returns k*q for an arbitrary integer k.
func (q *G2) MulBig(k *big.Int) *G2 { return q.c.wrapG2(q.c.g2ScalarMul(q.p, k)) }

// Equal reports whether q and r are the same point.
func (q *G2) Equal(r *G2) bool { return q.c == r.c && q.c.g2Equal(q.p, r.p) }

// IsZero reports whether q is the point at infinity.
func (q *G2) IsZero() bool { return q.p.isInfinity() }

// Normalize returns the same point with Z = 1.
func (q *G2) Normalize() *G2 {
	if q.p.isInfinity() {
		return q.c.wrapG2(g2Infinity())
	}
	x, y := q.c.g2ToAffine(q.p)
	return q.c.wrapG2(&g2Jac{x: x, y: y, z: fp2One()})
}

// Affine returns the affine coordinates of q. ok is false at infinity.
func (q *G2) Affine() (x, y *Fp2, ok bool) {
	if q.p.isInfinity() {
		return nil, nil, false
	}
	ax, ay := q.c.g2ToAffine(q.p)
	return q.c.wrapFp2(ax), q.c.wrapFp2(ay), true
}

// IsOnCurve reports whether q satisfies the twist equation.
func (q *G2) IsOnCurve() bool {
	if q.p.isInfinity() {
		return true
	}
	return q.c.onCurveG2(q.c.g2ToAffine(q.p))
}

// IsInSubgroup reports whether q lies in the order-r subgroup.
func (q *G2) IsInSubgroup() bool {
	if q.p.isInfinity() {
		return true
	}
	return q.c.backend.inG2(q.c.g2ToAffine(q.p))
}

// Text returns "0" at infinity and "1 xa xb ya yb" otherwise.
func (q *G2) Text(radix int) string {
	if q.p.isInfinity() {
		return "0"
	}
	x, y := q.c.g2ToAffine(q.p)
	fp := q.c.fp
	return strings.Join([]string{"1",
		fp.text(x.a0, radix), fp.text(x.a1, radix),
		fp.text(y.a0, radix), fp.text(y.a1, radix)}, " ")
}

// String returns q in decimal.
func (q *G2) String() string { return q.Text(10) }

// Serialize returns the compressed encoding of q.
func (q *G2) Serialize() []byte { return q.c.encodeG2(q.p) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (q *G2) SerializeToHexStr() string { return hex.EncodeToString(q.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (q *G2) MarshalBinary() ([]byte, error) { return q.Serialize(), nil }

// UnmarshalBinary decodes into a bound q.
func (q *G2) UnmarshalBinary(b []byte) error {
	if q.c == nil {
		return ErrUnbound
	}
	p, err := q.c.decodeG2(b)
	if err != nil {
		return err
	}
	q.p = p
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (q *G2) MarshalText() ([]byte, error) { return []byte(q.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (q *G2) UnmarshalText(text []byte) error {
	b, err := decodeHexString(string(text))
	if err != nil {
		return err
	}
	return q.UnmarshalBinary(b)
}
