// Package stats aggregates the latency and outcome of the exchanges made
// during a collection run.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// LatencyStats summarizes a latency distribution.
type LatencyStats struct {
	Count int64         `json:"count" yaml:"count"`
	Min   time.Duration `json:"min" yaml:"min"`
	Max   time.Duration `json:"max" yaml:"max"`
	Mean  time.Duration `json:"mean" yaml:"mean"`
	P50   time.Duration `json:"p50" yaml:"p50"`
	P90   time.Duration `json:"p90" yaml:"p90"`
	P99   time.Duration `json:"p99" yaml:"p99"`
}

// Summary is the outcome of a run.
type Summary struct {
	Total     int64                   `json:"total" yaml:"total"`
	Succeeded int64                   `json:"succeeded" yaml:"succeeded"`
	Failed    int64                   `json:"failed" yaml:"failed"`
	Latency   LatencyStats            `json:"latency" yaml:"latency"`
	Requests  map[string]LatencyStats `json:"requests,omitempty" yaml:"requests,omitempty"`
}

// Recorder collects exchange latencies. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	overall   *hdrhistogram.Histogram
	perName   map[string]*hdrhistogram.Histogram
	names     []string
	succeeded int64
	failed    int64
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		overall: newHistogram(),
		perName: make(map[string]*hdrhistogram.Histogram),
	}
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
}

// Record adds one exchange. name may be empty to skip the per-request
// breakdown.
func (r *Recorder) Record(name string, d time.Duration, success bool) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// RecordValue only fails outside the trackable range, which is clamped above.
	_ = r.overall.RecordValue(micros)
	if name != "" {
		hist, ok := r.perName[name]
		if !ok {
			hist = newHistogram()
			r.perName[name] = hist
			r.names = append(r.names, name)
		}
		_ = hist.RecordValue(micros)
	}

	if success {
		r.succeeded++
	} else {
		r.failed++
	}
}

// Summary returns the current totals.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Total:     r.succeeded + r.failed,
		Succeeded: r.succeeded,
		Failed:    r.failed,
		Latency:   latencyOf(r.overall),
	}
	if len(r.names) > 0 {
		s.Requests = make(map[string]LatencyStats, len(r.names))
		for _, name := range r.names {
			s.Requests[name] = latencyOf(r.perName[name])
		}
	}
	return s
}

// Names returns the recorded request names in first-seen order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// SortedNames returns the names of s.Requests alphabetically.
func (s Summary) SortedNames() []string {
	names := make([]string, 0, len(s.Requests))
	for name := range s.Requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func latencyOf(h *hdrhistogram.Histogram) LatencyStats {
	if h.TotalCount() == 0 {
		return LatencyStats{}
	}
	micro := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return LatencyStats{
		Count: h.TotalCount(),
		Min:   micro(h.Min()),
		Max:   micro(h.Max()),
		Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:   micro(h.ValueAtQuantile(50)),
		P90:   micro(h.ValueAtQuantile(90)),
		P99:   micro(h.ValueAtQuantile(99)),
	}
}
