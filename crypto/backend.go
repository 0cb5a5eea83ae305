package crypto

import "math/big"

// gtElem holds the 12 Fp coefficients of an Fp12 element in tower order:
// c0.b0.a0, c0.b0.a1, c0.b1.a0, ..., c1.b2.a1, for
// Fp12 = Fp6[w]/(w^2 - v) and Fp6 = Fp2[v]/(v^3 - xi).
type gtElem [12]*big.Int

func gtOne() gtElem {
	var e gtElem
	for i := range e {
		e[i] = new(big.Int)
	}
	e[0].SetInt64(1)
	return e
}

type g1Affine struct {
	x, y *big.Int
}

type g2Affine struct {
	x, y *fp2
}

// pairingBackend supplies the pairing-specific primitives of one curve:
// the optimal ate Miller loop and final exponentiation, line precomputation
// for a fixed G2 argument, the field-to-curve maps, subgroup checks and the
// Fp12 arithmetic behind GT. Inputs are affine, canonical and finite.
type pairingBackend interface {
	name() string
	params() *curveParams
	g2Generator() (x, y *fp2)

	inG1(x, y *big.Int) bool
	inG2(x, y *fp2) bool
	mapToG1(u *big.Int) (x, y *big.Int, inf bool)
	mapToG2(u *fp2) (x, y *fp2, inf bool)

	millerLoop(ps []g1Affine, qs []g2Affine) (gtElem, error)
	finalExp(f gtElem) gtElem
	precompute(q g2Affine) any
	millerLoopFixed(p g1Affine, lines any) (gtElem, error)

	gtMul(a, b gtElem) gtElem
	gtSqr(a gtElem) gtElem
	gtInv(a gtElem) gtElem
	gtExp(a gtElem, k *big.Int) gtElem
}
