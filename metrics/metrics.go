// Package metrics holds the instruments the pairing engine and the IBE
// tooling update while they run: operation counts, the number of live
// precomputed tables and the latency of the pairing stages. Every
// instrument is lock-free, so hot paths such as concurrent precomputed
// Miller loops never contend on a mutex.
package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// Counter counts completed operations.
type Counter struct {
	n atomic.Uint64
}

func (c *Counter) Inc()          { c.n.Add(1) }
func (c *Counter) Add(n uint64)  { c.n.Add(n) }
func (c *Counter) Value() uint64 { return c.n.Load() }

// Gauge tracks a quantity of live resources, such as precomputed tables
// that have not been released, and remembers the highest value reached.
type Gauge struct {
	cur  atomic.Int64
	peak atomic.Int64
}

// Inc adds one resource and raises the peak if needed.
func (g *Gauge) Inc() {
	v := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if v <= p || g.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// Dec removes one resource.
func (g *Gauge) Dec() { g.cur.Add(-1) }

// Value returns the current number of resources.
func (g *Gauge) Value() int64 { return g.cur.Load() }

// Peak returns the highest value Value has reached.
func (g *Gauge) Peak() int64 { return g.peak.Load() }

// Latency aggregates the durations of one operation: count, total, fastest
// and slowest. Exposition reports it in microseconds.
type Latency struct {
	count atomic.Int64
	total atomic.Int64 // nanoseconds
	min   atomic.Int64
	max   atomic.Int64
}

func newLatency() *Latency {
	l := new(Latency)
	l.min.Store(math.MaxInt64)
	return l
}

// Observe records one duration.
func (l *Latency) Observe(d time.Duration) {
	ns := int64(d)
	l.count.Add(1)
	l.total.Add(ns)
	for {
		m := l.min.Load()
		if ns >= m || l.min.CompareAndSwap(m, ns) {
			break
		}
	}
	for {
		m := l.max.Load()
		if ns <= m || l.max.CompareAndSwap(m, ns) {
			break
		}
	}
}

// Since records the time elapsed since start and returns it.
func (l *Latency) Since(start time.Time) time.Duration {
	d := time.Since(start)
	l.Observe(d)
	return d
}

// Reset discards every observation. Observations racing with Reset may be
// partially kept.
func (l *Latency) Reset() {
	l.count.Store(0)
	l.total.Store(0)
	l.min.Store(math.MaxInt64)
	l.max.Store(0)
}

// Count returns the number of observations.
func (l *Latency) Count() int64 { return l.count.Load() }

// Total returns the sum of all observed durations.
func (l *Latency) Total() time.Duration { return time.Duration(l.total.Load()) }

// Min returns the fastest observation, or 0 when empty.
func (l *Latency) Min() time.Duration {
	if l.Count() == 0 {
		return 0
	}
	return time.Duration(l.min.Load())
}

// Max returns the slowest observation, or 0 when empty.
func (l *Latency) Max() time.Duration { return time.Duration(l.max.Load()) }

// Mean returns the average observation, or 0 when empty.
func (l *Latency) Mean() time.Duration {
	n := l.Count()
	if n == 0 {
		return 0
	}
	return l.Total() / time.Duration(n)
}
