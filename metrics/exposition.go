package metrics

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"
)

// WriteText writes every instrument in r using the Prometheus text
// exposition format. Dotted names become underscores and namespace, if
// non-empty, is prepended. Gauges add a _peak series and latencies are
// summaries in microseconds. Output is sorted by name.
func (r *Registry) WriteText(w io.Writer, namespace string) error {
	bw := bufio.NewWriter(w)

	r.mu.RLock()
	for _, name := range sortedKeys(r.counters) {
		n := expoName(namespace, name)
		writeHeader(bw, n, "counter", name)
		fmt.Fprintf(bw, "%s %d\n", n, r.counters[name].Value())
	}
	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		n := expoName(namespace, name)
		writeHeader(bw, n, "gauge", name)
		fmt.Fprintf(bw, "%s %d\n", n, g.Value())
		writeHeader(bw, n+"_peak", "gauge", name+" high-water mark")
		fmt.Fprintf(bw, "%s_peak %d\n", n, g.Peak())
	}
	for _, name := range sortedKeys(r.latencies) {
		l := r.latencies[name]
		n := expoName(namespace, name)
		writeHeader(bw, n, "summary", name)
		fmt.Fprintf(bw, "%s_count %d\n", n, l.Count())
		fmt.Fprintf(bw, "%s_sum %s\n", n, formatFloat(micros(l.Total())))
		if l.Count() > 0 {
			fmt.Fprintf(bw, "%s_min %s\n", n, formatFloat(micros(l.Min())))
			fmt.Fprintf(bw, "%s_max %s\n", n, formatFloat(micros(l.Max())))
			fmt.Fprintf(bw, "%s_mean %s\n", n, formatFloat(micros(l.Mean())))
		}
	}
	r.mu.RUnlock()

	return bw.Flush()
}

func micros(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }

func expoName(namespace, name string) string {
	s := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	if namespace != "" {
		return namespace + "_" + s
	}
	return s
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func writeHeader(w io.Writer, name, kind, help string) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
