package crypto

// BN254 pairing primitives backed by gnark-crypto.

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var errBN254Lines = errors.New("crypto: bn254 table holds foreign lines")

type bn254Lines = [2][len(bn254.LoopCounter)]bn254.LineEvaluationAff

type bn254Backend struct{}

func newBN254Backend() *bn254Backend { return &bn254Backend{} }

func (*bn254Backend) name() string { return "gnark-bn254" }

func (*bn254Backend) params() *curveParams {
	_, _, g1, _ := bn254.Generators()
	a, b := bn254.CurveCoefficients()
	return &curveParams{
		p:  fp.Modulus(),
		r:  fr.Modulus(),
		a:  a.BigInt(new(big.Int)),
		b:  b.BigInt(new(big.Int)),
		gx: g1.X.BigInt(new(big.Int)),
		gy: g1.Y.BigInt(new(big.Int)),
	}
}

func (*bn254Backend) g2Generator() (x, y *fp2) {
	_, _, _, g2 := bn254.Generators()
	return bn254FromE2(&g2.X), bn254FromE2(&g2.Y)
}

func (*bn254Backend) inG1(x, y *big.Int) bool {
	p := bn254G1(g1Affine{x, y})
	return p.IsOnCurve() && p.IsInSubGroup()
}

func (*bn254Backend) inG2(x, y *fp2) bool {
	q := bn254G2(g2Affine{x, y})
	return q.IsOnCurve() && q.IsInSubGroup()
}

func (*bn254Backend) mapToG1(u *big.Int) (x, y *big.Int, inf bool) {
	var e fp.Element
	e.SetBigInt(u)
	p := bn254.MapToG1(e)
	if p.IsInfinity() {
		return nil, nil, true
	}
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int)), false
}

func (*bn254Backend) mapToG2(u *fp2) (x, y *fp2, inf bool) {
	q := bn254.MapToG2(bn254E2(u))
	if q.IsInfinity() {
		return nil, nil, true
	}
	return bn254FromE2(&q.X), bn254FromE2(&q.Y), false
}

func (*bn254Backend) millerLoop(ps []g1Affine, qs []g2Affine) (gtElem, error) {
	p := make([]bn254.G1Affine, len(ps))
	q := make([]bn254.G2Affine, len(qs))
	for i := range ps {
		p[i] = bn254G1(ps[i])
	}
	for i := range qs {
		q[i] = bn254G2(qs[i])
	}
	f, err := bn254.MillerLoop(p, q)
	if err != nil {
		return gtElem{}, err
	}
	return bn254FromGT(&f), nil
}

func (*bn254Backend) finalExp(f gtElem) gtElem {
	z := bn254GT(f)
	r := bn254.FinalExponentiation(&z)
	return bn254FromGT(&r)
}

func (*bn254Backend) precompute(q g2Affine) any {
	lines := bn254.PrecomputeLines(bn254G2(q))
	return &lines
}

func (*bn254Backend) millerLoopFixed(p g1Affine, lines any) (gtElem, error) {
	l, ok := lines.(*bn254Lines)
	if !ok {
		return gtElem{}, errBN254Lines
	}
	f, err := bn254.MillerLoopFixedQ([]bn254.G1Affine{bn254G1(p)}, []bn254Lines{*l})
	if err != nil {
		return gtElem{}, err
	}
	return bn254FromGT(&f), nil
}

func (*bn254Backend) gtMul(a, b gtElem) gtElem {
	x, y := bn254GT(a), bn254GT(b)
	var z bn254.GT
	z.Mul(&x, &y)
	return bn254FromGT(&z)
}

func (*bn254Backend) gtSqr(a gtElem) gtElem {
	x := bn254GT(a)
	var z bn254.GT
	z.Square(&x)
	return bn254FromGT(&z)
}

func (*bn254Backend) gtInv(a gtElem) gtElem {
	x := bn254GT(a)
	var z bn254.GT
	z.Inverse(&x)
	return bn254FromGT(&z)
}

func (*bn254Backend) gtExp(a gtElem, k *big.Int) gtElem {
	var z bn254.GT
	z.Exp(bn254GT(a), k)
	return bn254FromGT(&z)
}

func bn254G1(p g1Affine) bn254.G1Affine {
	var r bn254.G1Affine
	r.X.SetBigInt(p.x)
	r.Y.SetBigInt(p.y)
	return r
}

func bn254G2(q g2Affine) bn254.G2Affine {
	return bn254.G2Affine{X: bn254E2(q.x), Y: bn254E2(q.y)}
}

func bn254E2(v *fp2) bn254.E2 {
	var e bn254.E2
	e.A0.SetBigInt(v.a0)
	e.A1.SetBigInt(v.a1)
	return e
}

func bn254FromE2(e *bn254.E2) *fp2 {
	return &fp2{a0: e.A0.BigInt(new(big.Int)), a1: e.A1.BigInt(new(big.Int))}
}

func bn254GT(v gtElem) bn254.GT {
	var z bn254.GT
	parts := [6]*bn254.E2{&z.C0.B0, &z.C0.B1, &z.C0.B2, &z.C1.B0, &z.C1.B1, &z.C1.B2}
	for i, e := range parts {
		e.A0.SetBigInt(v[2*i])
		e.A1.SetBigInt(v[2*i+1])
	}
	return z
}

func bn254FromGT(z *bn254.GT) gtElem {
	var v gtElem
	parts := [6]*bn254.E2{&z.C0.B0, &z.C0.B1, &z.C0.B2, &z.C1.B0, &z.C1.B1, &z.C1.B2}
	for i, e := range parts {
		v[2*i] = e.A0.BigInt(new(big.Int))
		v[2*i+1] = e.A1.BigInt(new(big.Int))
	}
	return v
}
