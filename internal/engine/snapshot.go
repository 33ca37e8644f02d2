package engine

import "time"

// Snapshot is a point-in-time view of a run, produced on demand for the
// presentation layer to poll at its own cadence. Percentiles here are running
// values over the completions seen so far; the final report recomputes them
// over the full record set.
type Snapshot struct {
	RunID      string        `json:"runId"`
	Status     RunStatus     `json:"status"`
	Planned    int           `json:"planned"`
	Dispatched int           `json:"dispatched"`
	Completed  int           `json:"completed"`
	InFlight   int           `json:"inFlight"`
	Successes  int           `json:"successes"`
	Failures   int           `json:"failures"`
	Elapsed    time.Duration `json:"elapsed"`

	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// Progress returns completion as a fraction in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Planned == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Planned)
}

// Snapshot captures the run's current state. At every observation point
// completed + in-flight + not-yet-dispatched equals the planned total.
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	snap := Snapshot{
		RunID:      r.ID,
		Status:     r.status,
		Planned:    r.cfg.PlannedRequests(),
		Dispatched: r.dispatched,
		Completed:  len(r.measurements),
		InFlight:   r.inFlight,
		Successes:  r.successes,
		Elapsed:    time.Since(r.startedAt),
	}
	if !r.completedAt.IsZero() {
		snap.Elapsed = r.completedAt.Sub(r.startedAt)
	}
	r.mu.Unlock()

	snap.Failures = snap.Completed - snap.Successes
	snap.P50, _ = r.stats.Percentile(50)
	snap.P95, _ = r.stats.Percentile(95)
	snap.P99, _ = r.stats.Percentile(99)
	return snap
}
