package crypto

// BLS12-381 pairing primitives backed by gnark-crypto.

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var errBLS12381Lines = errors.New("crypto: bls12381 table holds foreign lines")

type bls12381Lines = [2][len(bls12381.LoopCounter) - 1]bls12381.LineEvaluationAff

type bls12381Backend struct{}

func newBLS12381Backend() *bls12381Backend { return &bls12381Backend{} }

func (*bls12381Backend) name() string { return "gnark-bls12-381" }

func (*bls12381Backend) params() *curveParams {
	_, _, g1, _ := bls12381.Generators()
	a, b := bls12381.CurveCoefficients()
	return &curveParams{
		p:  fp.Modulus(),
		r:  fr.Modulus(),
		a:  a.BigInt(new(big.Int)),
		b:  b.BigInt(new(big.Int)),
		gx: g1.X.BigInt(new(big.Int)),
		gy: g1.Y.BigInt(new(big.Int)),
	}
}

func (*bls12381Backend) g2Generator() (x, y *fp2) {
	_, _, _, g2 := bls12381.Generators()
	return bls12381FromE2(&g2.X), bls12381FromE2(&g2.Y)
}

func (*bls12381Backend) inG1(x, y *big.Int) bool {
	p := bls12381G1(g1Affine{x, y})
	return p.IsOnCurve() && p.IsInSubGroup()
}

func (*bls12381Backend) inG2(x, y *fp2) bool {
	q := bls12381G2(g2Affine{x, y})
	return q.IsOnCurve() && q.IsInSubGroup()
}

func (*bls12381Backend) mapToG1(u *big.Int) (x, y *big.Int, inf bool) {
	var e fp.Element
	e.SetBigInt(u)
	p := bls12381.MapToG1(e)
	if p.IsInfinity() {
		return nil, nil, true
	}
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int)), false
}

func (*bls12381Backend) mapToG2(u *fp2) (x, y *fp2, inf bool) {
	q := bls12381.MapToG2(bls12381E2(u))
	if q.IsInfinity() {
		return nil, nil, true
	}
	return bls12381FromE2(&q.X), bls12381FromE2(&q.Y), false
}

func (*bls12381Backend) millerLoop(ps []g1Affine, qs []g2Affine) (gtElem, error) {
	p := make([]bls12381.G1Affine, len(ps))
	q := make([]bls12381.G2Affine, len(qs))
	for i := range ps {
		p[i] = bls12381G1(ps[i])
	}
	for i := range qs {
		q[i] = bls12381G2(qs[i])
	}
	f, err := bls12381.MillerLoop(p, q)
	if err != nil {
		return gtElem{}, err
	}
	return bls12381FromGT(&f), nil
}

func (*bls12381Backend) finalExp(f gtElem) gtElem {
	z := bls12381GT(f)
	r := bls12381.FinalExponentiation(&z)
	return bls12381FromGT(&r)
}

func (*bls12381Backend) precompute(q g2Affine) any {
	lines := bls12381.PrecomputeLines(bls12381G2(q))
	return &lines
}

func (*bls12381Backend) millerLoopFixed(p g1Affine, lines any) (gtElem, error) {
	l, ok := lines.(*bls12381Lines)
	if !ok {
		return gtElem{}, errBLS12381Lines
	}
	f, err := bls12381.MillerLoopFixedQ([]bls12381.G1Affine{bls12381G1(p)}, []bls12381Lines{*l})
	if err != nil {
		return gtElem{}, err
	}
	return bls12381FromGT(&f), nil
}

func (*bls12381Backend) gtMul(a, b gtElem) gtElem {
	x, y := bls12381GT(a), bls12381GT(b)
	var z bls12381.GT
	z.Mul(&x, &y)
	return bls12381FromGT(&z)
}

func (*bls12381Backend) gtSqr(a gtElem) gtElem {
	x := bls12381GT(a)
	var z bls12381.GT
	z.Square(&x)
	return bls12381FromGT(&z)
}

func (*bls12381Backend) gtInv(a gtElem) gtElem {
	x := bls12381GT(a)
	var z bls12381.GT
	z.Inverse(&x)
	return bls12381FromGT(&z)
}

func (*bls12381Backend) gtExp(a gtElem, k *big.Int) gtElem {
	var z bls12381.GT
	z.Exp(bls12381GT(a), k)
	return bls12381FromGT(&z)
}

func bls12381G1(p g1Affine) bls12381.G1Affine {
	var r bls12381.G1Affine
	r.X.SetBigInt(p.x)
	r.Y.SetBigInt(p.y)
	return r
}

func bls12381G2(q g2Affine) bls12381.G2Affine {
	return bls12381.G2Affine{X: bls12381E2(q.x), Y: bls12381E2(q.y)}
}

func bls12381E2(v *fp2) bls12381.E2 {
	var e bls12381.E2
	e.A0.SetBigInt(v.a0)
	e.A1.SetBigInt(v.a1)
	return e
}

func bls12381FromE2(e *bls12381.E2) *fp2 {
	return &fp2{a0: e.A0.BigInt(new(big.Int)), a1: e.A1.BigInt(new(big.Int))}
}

func bls12381GT(v gtElem) bls12381.GT {
	var z bls12381.GT
	parts := [6]*bls12381.E2{&z.C0.B0, &z.C0.B1, &z.C0.B2, &z.C1.B0, &z.C1.B1, &z.C1.B2}
	for i, e := range parts {
		e.A0.SetBigInt(v[2*i])
		e.A1.SetBigInt(v[2*i+1])
	}
	return z
}

func bls12381FromGT(z *bls12381.GT) gtElem {
	var v gtElem
	parts := [6]*bls12381.E2{&z.C0.B0, &z.C0.B1, &z.C0.B2, &z.C1.B0, &z.C1.B1, &z.C1.B2}
	for i, e := range parts {
		v[2*i] = e.A0.BigInt(new(big.Int))
		v[2*i+1] = e.A1.BigInt(new(big.Int))
	}
	return v
}
