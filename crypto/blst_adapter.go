//go:build blst

// Cross-check of BLS12-381 pairings against the supranational/blst library.
//
// blst computes the Miller loop and final exponentiation independently of
// gnark-crypto. The two libraries may return different (but equivalent)
// powers of the reduced pairing, so only pairing-product checks are
// compared, never raw GT values.
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./crypto/ -run BLST
package crypto

import (
	"errors"
	"math/big"

	blst "github.com/supranational/blst/bindings/go"
)

// Errors returned by the blst adapter.
var (
	ErrBLSTCurve = errors.New("blst: only BLS12_381 is supported")
	ErrBLSTPoint = errors.New("blst: point rejected by blst")
)

// VerifyWithBLST reports whether the product of e(ps[i], qs[i]) is 1 as
// computed by blst. Pairs containing the point at infinity are skipped.
func (e *Engine) VerifyWithBLST(ps []*G1, qs []*G2) (bool, error) {
	if e.c.id != BLS12_381 {
		return false, ErrBLSTCurve
	}
	if len(ps) != len(qs) {
		return false, errPairingInputs
	}
	acc := blst.Fp12One()
	for i := range ps {
		if err := e.c.match(ps[i].c); err != nil {
			return false, err
		}
		if err := e.c.match(qs[i].c); err != nil {
			return false, err
		}
		if ps[i].IsZero() || qs[i].IsZero() {
			continue
		}
		p, err := e.blstG1(ps[i])
		if err != nil {
			return false, err
		}
		q, err := e.blstG2(qs[i])
		if err != nil {
			return false, err
		}
		acc.MulAssign(blst.Fp12MillerLoop(q, p))
	}
	acc.FinalExp()
	one := blst.Fp12One()
	return acc.Equals(&one), nil
}

// blstG1 converts through the 96-byte big-endian x || y encoding.
func (e *Engine) blstG1(p *G1) (*blst.P1Affine, error) {
	x, y := e.c.g1ToAffine(p.p)
	buf := make([]byte, 0, 2*e.c.fp.size)
	buf = append(buf, beBytes(x, e.c.fp.size)...)
	buf = append(buf, beBytes(y, e.c.fp.size)...)
	out := new(blst.P1Affine).Deserialize(buf)
	if out == nil || !out.InG1() {
		return nil, ErrBLSTPoint
	}
	return out, nil
}

// blstG2 converts through the 192-byte encoding, which puts the imaginary
// part of each coordinate first.
func (e *Engine) blstG2(q *G2) (*blst.P2Affine, error) {
	x, y := e.c.g2ToAffine(q.p)
	n := e.c.fp.size
	buf := make([]byte, 0, 4*n)
	buf = append(buf, beBytes(x.a1, n)...)
	buf = append(buf, beBytes(x.a0, n)...)
	buf = append(buf, beBytes(y.a1, n)...)
	buf = append(buf, beBytes(y.a0, n)...)
	out := new(blst.P2Affine).Deserialize(buf)
	if out == nil || !out.InG2() {
		return nil, ErrBLSTPoint
	}
	return out, nil
}

func beBytes(v *big.Int, n int) []byte { return v.FillBytes(make([]byte, n)) }
