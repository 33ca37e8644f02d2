package engine

import (
	"math"
	"sort"
	"sync"
	"time"
)

// StatusClass buckets HTTP status codes for the histogram.
type StatusClass string

const (
	Status2xx        StatusClass = "2xx"
	Status3xx        StatusClass = "3xx"
	Status4xx        StatusClass = "4xx"
	Status5xx        StatusClass = "5xx"
	StatusClassOther StatusClass = "other"
)

// ClassifyStatus maps a status code to its class bucket.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusClassOther
	}
}

// Stats aggregates measurements as they complete. Observe is safe to call
// from concurrent completions; every update is append-and-update under one
// lock so no measurement is lost or double counted. Percentile queries sort
// a copy and are exact at any point, including finalize.
type Stats struct {
	mu sync.Mutex

	planned   int
	completed int
	successes int

	failures      map[Outcome]int
	statusClasses map[StatusClass]int

	latencies    []time.Duration
	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration

	totalBytes int64
}

// NewStats creates an aggregator for a run of planned requests.
func NewStats(planned int) *Stats {
	return &Stats{
		planned:       planned,
		failures:      make(map[Outcome]int),
		statusClasses: make(map[StatusClass]int),
		latencies:     make([]time.Duration, 0, 1000),
		minLatency:    -1,
		maxLatency:    -1,
	}
}

// ComputeBatch reduces a completed measurement collection offline. Running it
// twice over the same collection yields identical results.
func ComputeBatch(planned int, measurements []*Measurement) *Stats {
	s := NewStats(planned)
	for _, m := range measurements {
		s.Observe(m)
	}
	return s
}

// Observe folds one measurement into the running statistics.
func (s *Stats) Observe(m *Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed++

	if m.Succeeded() {
		s.successes++
		s.statusClasses[ClassifyStatus(m.StatusCode)]++
		s.totalBytes += m.ResponseSize
	} else {
		s.failures[m.Outcome]++
	}

	if !m.HasLatency() {
		return
	}
	s.latencies = append(s.latencies, m.Latency)
	s.totalLatency += m.Latency
	if s.minLatency == -1 || m.Latency < s.minLatency {
		s.minLatency = m.Latency
	}
	if s.maxLatency == -1 || m.Latency > s.maxLatency {
		s.maxLatency = m.Latency
	}
}

// Planned returns the fixed request plan size.
func (s *Stats) Planned() int {
	return s.planned
}

// Completed returns how many measurements have been observed.
func (s *Stats) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Successes returns how many requests received a response.
func (s *Stats) Successes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successes
}

// Failures returns a copy of the error-kind histogram.
func (s *Stats) Failures() map[Outcome]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Outcome]int, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// StatusClasses returns a copy of the status-class histogram.
func (s *Stats) StatusClasses() map[StatusClass]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[StatusClass]int, len(s.statusClasses))
	for k, v := range s.statusClasses {
		out[k] = v
	}
	return out
}

// TotalBytes returns the sum of successful response sizes.
func (s *Stats) TotalBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalBytes
}

// SuccessRate scores successes against the original plan, not the completed
// count: a cancelled or partially failed run surfaces its incompleteness.
// Always in [0, 1].
func (s *Stats) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.planned == 0 {
		return 0
	}
	return float64(s.successes) / float64(s.planned)
}

// Percentile returns the p-th percentile latency using the nearest-rank
// method: the value at ordinal position ceil(p/100 * count) of the ascending
// sort, 1-indexed. The second return is false when no latency data exists.
func (s *Stats) Percentile(p float64) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percentileLocked(p)
}

func (s *Stats) percentileLocked(p float64) (time.Duration, bool) {
	n := len(s.latencies)
	if n == 0 {
		return 0, false
	}

	sorted := make([]time.Duration, n)
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(math.Ceil(p / 100.0 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1], true
}

// Mean returns the average latency; false when no latency data exists.
func (s *Stats) Mean() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0, false
	}
	return s.totalLatency / time.Duration(len(s.latencies)), true
}

// Min returns the smallest latency; false when no latency data exists.
func (s *Stats) Min() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.minLatency == -1 {
		return 0, false
	}
	return s.minLatency, true
}

// Max returns the largest latency; false when no latency data exists.
func (s *Stats) Max() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxLatency == -1 {
		return 0, false
	}
	return s.maxLatency, true
}

// LatencySamples returns how many measurements contributed latency data.
func (s *Stats) LatencySamples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latencies)
}
