/*
Package engine implements the stress-test execution core: it dispatches
concurrent HTTP requests according to a Config, collects one Measurement per
request, and reduces them into a statistical Report.

# Overview

The engine simulates N virtual users issuing M requests each:
  - Each virtual user's requests run strictly in sequence, with an optional
    delay between successive requests
  - Different users run in parallel, bounded by the connection pool size
  - Every request attempt yields exactly one Measurement, success or failure
  - Measurements stream into the aggregator as they complete

# Components

1. Config (config.go): run configuration and pre-dispatch validation
2. requestExecutor (executor.go): one HTTP request per call, shared pooled client
3. Run (run.go): dispatch, bounded concurrency, cancellation, lifecycle
4. Stats (stats.go): streaming aggregation and percentile queries
5. Report (report.go): final summary with threshold-based recommendations

# Concurrency model

Start launches one goroutine per virtual user plus a collector. A weighted
semaphore sized to MaxPoolSize bounds in-flight requests, so real parallelism
is min(ConcurrentUsers, MaxPoolSize) regardless of the configured user count.
Completions flow over a channel into the collector, which feeds the aggregator
and the completion-ordered record list. No component other than the aggregator
touches the shared counters.

# Error policy

Config validation failures return a *ConfigError before anything is
dispatched. After dispatch there is no fatal path: timeouts, connection
failures and unclassified errors are all recovered into Measurements and the
run always produces a Report, even when every request failed.

# Cancellation

Cancel stops dispatch cooperatively: the cancellation signal is observed
before each request is issued, so not-yet-started requests are dropped while
in-flight requests finish or time out naturally. Completed measurements are
retained, and the report scores the success rate against the original plan.

# Example

	cfg := engine.NewConfig("https://example.com")
	cfg.ConcurrentUsers = 10
	cfg.RequestsPerUser = 5

	run, err := engine.Start(cfg)
	if err != nil {
		return err // *ConfigError, nothing was dispatched
	}

	run.Wait()
	report := run.Report(engine.DefaultThresholds())
	fmt.Printf("%d/%d ok, p95 %s, %s\n",
		report.Successes, report.Planned,
		report.Latency.P95, report.ThroughputString())

Progress can be polled from any goroutine while the run is live:

	snap := run.Snapshot()
	fmt.Printf("%d/%d (%.0f%%)\n", snap.Completed, snap.Planned, snap.Progress()*100)
*/
package engine
