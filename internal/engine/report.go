package engine

import (
	"fmt"
	"time"
)

// Thresholds configures the rule-based performance recommendations. The zero
// value is not usable; start from DefaultThresholds.
type Thresholds struct {
	// LowSuccessRate flags a high failure rate when the success rate falls
	// below it.
	LowSuccessRate float64
	// ModerateSuccessRate flags a moderate failure rate below it.
	ModerateSuccessRate float64
	// VerySlowMean, SlowMean and ModerateMean tier the mean-latency warnings.
	VerySlowMean time.Duration
	SlowMean     time.Duration
	ModerateMean time.Duration
	// TailRatio flags high tail variance when p99 exceeds TailRatio times p50.
	TailRatio float64
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowSuccessRate:      0.95,
		ModerateSuccessRate: 0.99,
		VerySlowMean:        3 * time.Second,
		SlowMean:            1 * time.Second,
		ModerateMean:        500 * time.Millisecond,
		TailRatio:           3.0,
	}
}

// LatencySummary holds the latency distribution of a run. Absent entirely
// when no request produced latency data.
type LatencySummary struct {
	Min  time.Duration `json:"min"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P90  time.Duration `json:"p90"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
	Max  time.Duration `json:"max"`
}

// Report is the immutable summary of a run, consumed by presentation and
// export layers.
type Report struct {
	RunID     string    `json:"runId"`
	TargetURL string    `json:"targetUrl"`
	Method    string    `json:"method"`
	Status    RunStatus `json:"status"`

	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt time.Time     `json:"completedAt"`
	Duration    time.Duration `json:"duration"`

	Planned   int `json:"planned"`
	Completed int `json:"completed"`
	Successes int `json:"successes"`

	FailuresByKind map[Outcome]int     `json:"failuresByKind,omitempty"`
	StatusClasses  map[StatusClass]int `json:"statusClasses,omitempty"`

	// SuccessRate is successes over the planned total, in [0, 1].
	SuccessRate float64 `json:"successRate"`

	// Throughput is completed requests per second of wall-clock duration.
	// HasThroughput is false when the duration rounds to zero.
	Throughput    float64 `json:"throughput,omitempty"`
	HasThroughput bool    `json:"hasThroughput"`

	// Latency is nil when no request produced latency data.
	Latency *LatencySummary `json:"latency,omitempty"`

	TotalBytes int64 `json:"totalBytes"`

	// Recommendations are deterministic, threshold-based flags. Empty when
	// the run stayed within healthy bounds.
	Recommendations []string `json:"recommendations,omitempty"`
}

// ThroughputString formats throughput for display, or "undefined" when the
// wall-clock duration was zero.
func (r *Report) ThroughputString() string {
	if !r.HasThroughput {
		return "undefined"
	}
	return fmt.Sprintf("%.1f req/s", r.Throughput)
}

// BuildReport reduces a finished aggregator state into a Report. The same
// state always yields an identical report.
func BuildReport(runID string, cfg *Config, stats *Stats, status RunStatus, startedAt, completedAt time.Time, th Thresholds) *Report {
	report := &Report{
		RunID:       runID,
		TargetURL:   cfg.TargetURL,
		Method:      cfg.EffectiveMethod(),
		Status:      status,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Planned:     stats.Planned(),
		Completed:   stats.Completed(),
		Successes:   stats.Successes(),
		SuccessRate: stats.SuccessRate(),
		TotalBytes:  stats.TotalBytes(),
	}

	if failures := stats.Failures(); len(failures) > 0 {
		report.FailuresByKind = failures
	}
	if classes := stats.StatusClasses(); len(classes) > 0 {
		report.StatusClasses = classes
	}

	if report.Duration > 0 {
		report.Throughput = float64(report.Completed) / report.Duration.Seconds()
		report.HasThroughput = true
	}

	if mean, ok := stats.Mean(); ok {
		min, _ := stats.Min()
		max, _ := stats.Max()
		p50, _ := stats.Percentile(50)
		p90, _ := stats.Percentile(90)
		p95, _ := stats.Percentile(95)
		p99, _ := stats.Percentile(99)
		report.Latency = &LatencySummary{
			Min:  min,
			Mean: mean,
			P50:  p50,
			P90:  p90,
			P95:  p95,
			P99:  p99,
			Max:  max,
		}
	}

	report.Recommendations = recommend(report, th)
	return report
}

// recommend applies the threshold rules in a fixed order so the output is
// deterministic for a given state.
func recommend(r *Report, th Thresholds) []string {
	var recs []string

	switch {
	case r.SuccessRate < th.LowSuccessRate:
		recs = append(recs, fmt.Sprintf(
			"high failure rate: success rate %.1f%% is below %.1f%%; the server may be overloaded or unreachable",
			r.SuccessRate*100, th.LowSuccessRate*100))
	case r.SuccessRate < th.ModerateSuccessRate:
		recs = append(recs, fmt.Sprintf(
			"moderate failure rate: success rate %.1f%% is below %.1f%%; investigate the failed requests",
			r.SuccessRate*100, th.ModerateSuccessRate*100))
	}

	if r.Latency != nil {
		switch {
		case r.Latency.Mean > th.VerySlowMean:
			recs = append(recs, fmt.Sprintf(
				"very slow responses: mean latency %s exceeds %s; server performance needs attention",
				r.Latency.Mean.Round(time.Millisecond), th.VerySlowMean))
		case r.Latency.Mean > th.SlowMean:
			recs = append(recs, fmt.Sprintf(
				"slow responses: mean latency %s exceeds %s; consider optimization",
				r.Latency.Mean.Round(time.Millisecond), th.SlowMean))
		case r.Latency.Mean > th.ModerateMean:
			recs = append(recs, fmt.Sprintf(
				"moderate response times: mean latency %s exceeds %s; room for improvement",
				r.Latency.Mean.Round(time.Millisecond), th.ModerateMean))
		}

		if r.Latency.P50 > 0 && float64(r.Latency.P99) > th.TailRatio*float64(r.Latency.P50) {
			recs = append(recs, fmt.Sprintf(
				"high tail latency variance: p99 %s is more than %.1fx p50 %s",
				r.Latency.P99.Round(time.Millisecond), th.TailRatio, r.Latency.P50.Round(time.Millisecond)))
		}
	}

	return recs
}
