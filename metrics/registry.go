package metrics

import "sync"

// Registry holds instruments keyed by dotted name. Lookups create the
// instrument on first use, so callers never see nil.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*Counter
	gauges    map[string]*Gauge
	latencies map[string]*Latency
}

// DefaultRegistry backs the package-level instruments in standard.go.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Counter),
		gauges:    make(map[string]*Gauge),
		latencies: make(map[string]*Latency),
	}
}

func getOrCreate[T any](mu *sync.RWMutex, m map[string]*T, name string, mk func() *T) *T {
	mu.RLock()
	v, ok := m[name]
	mu.RUnlock()
	if ok {
		return v
	}
	mu.Lock()
	defer mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	v = mk()
	m[name] = v
	return v
}

// Counter returns the Counter registered under name.
func (r *Registry) Counter(name string) *Counter {
	return getOrCreate(&r.mu, r.counters, name, func() *Counter { return new(Counter) })
}

// Gauge returns the Gauge registered under name.
func (r *Registry) Gauge(name string) *Gauge {
	return getOrCreate(&r.mu, r.gauges, name, func() *Gauge { return new(Gauge) })
}

// Latency returns the Latency registered under name.
func (r *Registry) Latency(name string) *Latency {
	return getOrCreate(&r.mu, r.latencies, name, newLatency)
}

// ResetLatencies clears every latency. Counters and gauges keep their
// values; the bench command calls this before timing.
func (r *Registry) ResetLatencies() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.latencies {
		l.Reset()
	}
}
