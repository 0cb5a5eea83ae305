package crypto

import (
	"errors"
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// TestFp2Arithmetic verifies i^2 = -1 and the field laws on random values.
func TestFp2Arithmetic(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		c := e.Curve()
		i := e.NewFp2(c.FpZero(), c.FpOne())
		if !i.Sqr().Equal(e.NewFp2(c.NewFp(-1), c.FpZero())) {
			t.Fatalf("%s: i^2 != -1", id)
		}

		a := randomFp2(t, e)
		b := randomFp2(t, e)
		if !a.Mul(b).Equal(b.Mul(a)) {
			t.Fatalf("%s: multiplication not commutative", id)
		}
		if !a.Sqr().Equal(a.Mul(a)) {
			t.Fatalf("%s: sqr(a) != a*a", id)
		}
		if !a.Add(b).Sub(b).Equal(a) || !a.Add(a.Neg()).IsZero() {
			t.Fatalf("%s: additive laws broken", id)
		}
		inv, err := a.Inv()
		if err != nil || !a.Mul(inv).IsOne() {
			t.Fatalf("%s: a * a^-1 != 1 (%v)", id, err)
		}
		q, err := a.Mul(b).Div(b)
		if err != nil || !q.Equal(a) {
			t.Fatalf("%s: (a*b)/b != a (%v)", id, err)
		}
		// a * conj(a) = |a|^2 lies in Fp.
		norm := a.Mul(a.Conjugate())
		if !norm.B().IsZero() {
			t.Fatalf("%s: norm has imaginary part %s", id, norm.B())
		}
		if !a.A().Equal(a.Conjugate().A()) || !a.B().Equal(a.Conjugate().B().Neg()) {
			t.Fatalf("%s: conjugate wrong", id)
		}
		if _, err := e.Fp2Zero().Inv(); !errors.Is(err, ErrNotInvertible) {
			t.Fatalf("%s: Inv(0) error = %v", id, err)
		}
		if _, err := a.Div(e.Fp2Zero()); !errors.Is(err, ErrDivisionByZero) {
			t.Fatalf("%s: Div by 0 error = %v", id, err)
		}
	}
}

func randomFp2(t testing.TB, e *Engine) *Fp2 {
	t.Helper()
	a, err := e.Curve().RandomFp()
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Curve().RandomFp()
	if err != nil {
		t.Fatal(err)
	}
	return e.NewFp2(a, b)
}

// TestFp2Sqrt verifies square roots of squares, including purely real and
// purely imaginary inputs.
func TestFp2Sqrt(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		c := e.Curve()
		inputs := []*Fp2{
			randomFp2(t, e),
			e.NewFp2(c.NewFp(5), c.FpZero()),
			e.NewFp2(c.FpZero(), c.NewFp(3)),
		}
		for _, a := range inputs {
			sq := a.Sqr()
			r, ok := sq.Sqrt()
			if !ok || !r.Sqr().Equal(sq) {
				t.Fatalf("%s: sqrt(%s) failed", id, sq)
			}
		}
		// -1 is a square in Fp2 (it is i^2).
		if r, ok := e.NewFp2(c.NewFp(-1), c.FpZero()).Sqrt(); !ok || !r.Sqr().Equal(e.NewFp2(c.NewFp(-1), c.FpZero())) {
			t.Fatalf("%s: sqrt(-1) failed", id)
		}
	}
}

// TestFp2Codec covers the string and binary forms.
func TestFp2Codec(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		a := randomFp2(t, e)
		s, err := e.Fp2FromString(a.Text(16), 16)
		if err != nil || !s.Equal(a) {
			t.Fatalf("%s: string round trip = %v, %v", id, s, err)
		}
		b := a.Serialize()
		if len(b) != 2*e.Curve().FpByteSize() {
			t.Fatalf("%s: Fp2 width %d", id, len(b))
		}
		d, err := e.DeserializeFp2(b)
		if err != nil || !d.Equal(a) {
			t.Fatalf("%s: binary round trip = %v, %v", id, d, err)
		}
		h, err := e.DeserializeFp2HexStr(a.SerializeToHexStr())
		if err != nil || !h.Equal(a) {
			t.Fatalf("%s: hex round trip = %v, %v", id, h, err)
		}
		if _, err := e.Fp2FromString("1", 10); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%s: one-part string error = %v", id, err)
		}
		if _, err := e.DeserializeFp2(b[1:]); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%s: short input error = %v", id, err)
		}
	}
}

// TestG2GroupLaws checks the group laws on the twist.
func TestG2GroupLaws(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		c := e.Curve()
		g := e.G2Generator()
		if !g.IsOnCurve() || !g.IsInSubgroup() {
			t.Fatalf("%s: generator fails validation", id)
		}
		if !g.Add(e.G2Zero()).Equal(g) || !g.Sub(g).IsZero() {
			t.Fatalf("%s: identity or inverse broken", id)
		}
		if !g.Dbl().Equal(g.Add(g)) {
			t.Fatalf("%s: dbl(Q) != Q + Q", id)
		}
		k1, _ := c.RandomFr()
		k2, _ := c.RandomFr()
		if !g.Mul(k1.Add(k2)).Equal(g.Mul(k1).Add(g.Mul(k2))) {
			t.Fatalf("%s: (k1+k2)Q != k1Q + k2Q", id)
		}
		nine := g.Mul(c.NewFr(9))
		if !nine.Equal(g.Dbl().Dbl().Dbl().Add(g)) {
			t.Fatalf("%s: 9Q != ((2Q)*2)*2 + Q", id)
		}
		rMinus1 := c.FrModulus()
		rMinus1.Sub(rMinus1, bigOne)
		if !g.MulBig(rMinus1).Equal(g.Neg()) {
			t.Fatalf("%s: (r-1)Q != -Q", id)
		}
		n := nine.Normalize()
		if !n.Equal(nine) || !n.p.z.isOne() {
			t.Fatalf("%s: normalize broken", id)
		}
	}
}

// TestG2AddSubDistinct verifies (P + Q) - Q == P for unrelated hashed points.
func TestG2AddSubDistinct(t *testing.T) {
	tests := []struct {
		m1, m2 string
	}{
		{"abc", "xyz"},
		{"@example", "bob"},
	}
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		for _, tt := range tests {
			p, q := e.HashAndMapToG2([]byte(tt.m1)), e.HashAndMapToG2([]byte(tt.m2))
			if p.IsZero() || q.IsZero() || p.Equal(q) {
				t.Fatalf("%s: H(%q), H(%q) not distinct non-identity points", id, tt.m1, tt.m2)
			}
			if got := p.Add(q).Sub(q); !got.Equal(p) {
				t.Fatalf("%s: (P + Q) - Q = %s, want %s", id, got, p)
			}
			if !p.Add(q).IsInSubgroup() {
				t.Fatalf("%s: P + Q left the subgroup", id)
			}
		}
	}
}

// TestG2MatchesGnark cross-checks G2 scalar multiplication.
func TestG2MatchesGnark(t *testing.T) {
	k := new(big.Int).SetUint64(0xdeadbeefcafe)

	e := mustEngine(t, BN254)
	_, _, _, bnGen := bn254.Generators()
	var bnWant bn254.G2Affine
	bnWant.ScalarMultiplication(&bnGen, k)
	x, y, _ := e.G2Generator().MulBig(k).Affine()
	if !x.v.equal(bn254FromE2(&bnWant.X)) || !y.v.equal(bn254FromE2(&bnWant.Y)) {
		t.Fatal("BN254 kQ differs from gnark")
	}

	e = mustEngine(t, BLS12_381)
	_, _, _, blsGen := bls12381.Generators()
	var blsWant bls12381.G2Affine
	blsWant.ScalarMultiplication(&blsGen, k)
	x, y, _ = e.G2Generator().MulBig(k).Affine()
	if !x.v.equal(bls12381FromE2(&blsWant.X)) || !y.v.equal(bls12381FromE2(&blsWant.Y)) {
		t.Fatal("BLS12-381 kQ differs from gnark")
	}
}

// TestNewG2Validation verifies off-curve and off-subgroup points are
// refused.
func TestNewG2Validation(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		c := e.Curve()
		x, y, _ := e.G2Generator().Dbl().Affine()
		q, err := e.NewG2(x, y)
		if err != nil || !q.Equal(e.G2Generator().Dbl()) {
			t.Fatalf("%s: NewG2(2Q) = %v, %v", id, q, err)
		}
		if _, err := e.NewG2(x, y.Add(e.Fp2One())); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%s: off-curve error = %v", id, err)
		}

		// Find a twist point outside G2; the twist cofactor is large.
		for i := int64(1); i < 200; i++ {
			px := e.NewFp2(c.NewFp(i), c.FpOne())
			py, ok := e.Curve().wrapFp2(c.g2Rhs(px.v)).Sqrt()
			if !ok || c.backend.inG2(px.v, py.v) {
				continue
			}
			if _, err := e.NewG2(px, py); !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("%s: off-subgroup error = %v", id, err)
			}
			if p := c.wrapG2(g2FromAffine(px.v, py.v)); !p.IsOnCurve() || p.IsInSubgroup() {
				t.Fatalf("%s: flags wrong for off-subgroup point", id)
			}
			break
		}
	}
}

// TestG2String covers the "0" and "1 xa xb ya yb" forms.
func TestG2String(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		q := e.G2Generator().Mul(e.Curve().NewFr(31))
		r, err := e.G2FromString(q.String(), 10)
		if err != nil || !r.Equal(q) {
			t.Fatalf("%s: round trip = %v, %v", id, r, err)
		}
		if z, err := e.G2FromString("0", 0); err != nil || !z.IsZero() {
			t.Fatalf("%s: G2FromString(0) = %v, %v", id, z, err)
		}
		if _, err := e.G2FromString("1 1 2 3", 10); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%s: short string error = %v", id, err)
		}
	}
}
