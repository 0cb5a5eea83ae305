package crypto

// Precomputed pairing tables.
//
// A PrecomputedTable caches the line coefficients of the Miller loop for a
// fixed G2 point. The table is an owned resource: Release drops the lines,
// and every later use fails with ErrUseAfterRelease. A read lock is held for
// the duration of each Miller loop, so Release waits for in-flight loops
// instead of pulling the lines from under them.

import (
	"fmt"
	"sync"
	"time"

	"github.com/eth2030/pairing/log"
	"github.com/eth2030/pairing/metrics"
)

// PrecomputedTable holds the Q-dependent Miller loop coefficients.
type PrecomputedTable struct {
	c *Curve
	q *G2

	mu       sync.RWMutex
	lines    any // nil when q is the point at infinity
	released bool
}

// Precompute builds the line table of q.
func (e *Engine) Precompute(q *G2) (*PrecomputedTable, error) {
	if err := e.c.match(q.c); err != nil {
		return nil, err
	}
	t := &PrecomputedTable{c: e.c, q: q}
	if !q.IsZero() {
		x, y := e.c.g2ToAffine(q.p)
		t.lines = e.c.backend.precompute(g2Affine{x, y})
	}
	metrics.TablesLive.Inc()
	log.Default().Module("crypto").Debug("pairing table built", "curve", e.c.id.String())
	return t, nil
}

// G2 returns the point the table was built from.
func (t *PrecomputedTable) G2() *G2 { return t.q }

// Release frees the table. Calling it again is a no-op.
func (t *PrecomputedTable) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.lines = nil
	metrics.TablesLive.Dec()
	metrics.TablesReleased.Inc()
	log.Default().Module("crypto").Debug("pairing table released", "curve", t.c.id.String())
}

// Released reports whether Release has been called.
func (t *PrecomputedTable) Released() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.released
}

// PrecomputedMillerLoop runs the Miller loop of (P, Q) for the Q behind t.
// FinalExp of the result equals Pairing(P, Q).
func (e *Engine) PrecomputedMillerLoop(p *G1, t *PrecomputedTable) (*GT, error) {
	if err := e.c.match(p.c); err != nil {
		return nil, err
	}
	if err := e.c.match(t.c); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.released {
		return nil, ErrUseAfterRelease
	}
	if p.IsZero() || t.lines == nil {
		return e.GTOne(), nil
	}
	px, py := e.c.g1ToAffine(p.p)
	start := time.Now()
	f, err := e.c.backend.millerLoopFixed(g1Affine{px, py}, t.lines)
	metrics.MillerLoopTime.Since(start)
	if err != nil {
		return nil, fmt.Errorf("crypto: precomputed miller loop: %w", err)
	}
	return e.c.wrapGT(f), nil
}

// PrecomputedPairing returns e(P, Q) using the table of Q.
func (e *Engine) PrecomputedPairing(p *G1, t *PrecomputedTable) (*GT, error) {
	f, err := e.PrecomputedMillerLoop(p, t)
	if err != nil {
		return nil, err
	}
	metrics.Pairings.Inc()
	return e.FinalExp(f), nil
}

// WithPrecomputed builds the table of q, passes it to fn and releases it
// when fn returns or panics. fn must not retain the table.
func (e *Engine) WithPrecomputed(q *G2, fn func(*PrecomputedTable) error) error {
	t, err := e.Precompute(q)
	if err != nil {
		return err
	}
	defer t.Release()
	return fn(t)
}
