package crypto

// Pairing engine.
//
// The optimal ate pairing e: G1 x G2 -> GT is computed as a Miller loop
// followed by the final exponentiation f^((p^12-1)/r). Both steps are
// exposed so that several Miller loops can share one final exponentiation.

import (
	"errors"
	"fmt"
	"time"

	"github.com/eth2030/pairing/metrics"
)

// Engine exposes G2, GT and the pairing of a pairing-friendly curve. It is
// obtained from Curve.Engine and is safe for concurrent use.
type Engine struct {
	c *Curve
}

var errPairingInputs = errors.New("crypto: pairing input lengths differ")

// Curve returns the underlying curve handle.
func (e *Engine) Curve() *Curve { return e.c }

// Pairing returns e(P, Q).
func (e *Engine) Pairing(p *G1, q *G2) (*GT, error) {
	f, err := e.MillerLoop(p, q)
	if err != nil {
		return nil, err
	}
	metrics.Pairings.Inc()
	return e.FinalExp(f), nil
}

// MillerLoop returns the Miller loop value of (P, Q). It equals the
// pairing only after FinalExp.
func (e *Engine) MillerLoop(p *G1, q *G2) (*GT, error) {
	return e.MillerLoopVec([]*G1{p}, []*G2{q})
}

// MillerLoopVec returns the product of the Miller loops of (ps[i], qs[i]).
// Pairs with a point at infinity contribute 1.
func (e *Engine) MillerLoopVec(ps []*G1, qs []*G2) (*GT, error) {
	if len(ps) != len(qs) {
		return nil, fmt.Errorf("%w: %d G1, %d G2", errPairingInputs, len(ps), len(qs))
	}
	g1s := make([]g1Affine, 0, len(ps))
	g2s := make([]g2Affine, 0, len(qs))
	for i := range ps {
		if err := e.c.match(ps[i].c); err != nil {
			return nil, err
		}
		if err := e.c.match(qs[i].c); err != nil {
			return nil, err
		}
		if ps[i].IsZero() || qs[i].IsZero() {
			continue
		}
		px, py := e.c.g1ToAffine(ps[i].p)
		qx, qy := e.c.g2ToAffine(qs[i].p)
		g1s = append(g1s, g1Affine{px, py})
		g2s = append(g2s, g2Affine{qx, qy})
	}
	if len(g1s) == 0 {
		return e.GTOne(), nil
	}
	start := time.Now()
	f, err := e.c.backend.millerLoop(g1s, g2s)
	metrics.MillerLoopTime.Since(start)
	if err != nil {
		return nil, fmt.Errorf("crypto: miller loop: %w", err)
	}
	return e.c.wrapGT(f), nil
}

// FinalExp raises a Miller loop value to (p^12-1)/r.
func (e *Engine) FinalExp(f *GT) *GT {
	e.c.mustMatch(f.c)
	defer metrics.FinalExpTime.Since(time.Now())
	return e.c.wrapGT(e.c.backend.finalExp(f.v))
}

// PairingCheck reports whether the product of e(ps[i], qs[i]) is 1.
func (e *Engine) PairingCheck(ps []*G1, qs []*G2) (bool, error) {
	f, err := e.MillerLoopVec(ps, qs)
	if err != nil {
		return false, err
	}
	return e.FinalExp(f).IsOne(), nil
}
