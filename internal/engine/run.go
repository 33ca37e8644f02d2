package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Run is the handle for one stress test execution. Start returns it once
// dispatch has begun; callers poll Snapshot for progress, Cancel to stop
// early, and Wait/Done to observe completion. Several runs may exist
// independently; nothing here is global.
type Run struct {
	// ID uniquely identifies this run.
	ID string

	cfg   *Config
	stats *Stats
	exec  *requestExecutor

	ctx        context.Context
	cancelFunc context.CancelFunc
	sem        *semaphore.Weighted
	users      sync.WaitGroup
	resultChan chan *Measurement
	done       chan struct{}

	mu           sync.Mutex
	status       RunStatus
	startedAt    time.Time
	completedAt  time.Time
	dispatched   int
	inFlight     int
	successes    int
	cancelled    bool
	measurements []*Measurement
}

// Start validates the configuration and begins the run. A validation failure
// returns a *ConfigError with zero side effects: no request is dispatched.
// Once a run has started there is no fatal failure path; it always reaches a
// terminal state with a buildable report.
func Start(cfg *Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Run{
		ID:         uuid.NewString(),
		cfg:        cfg,
		stats:      NewStats(cfg.PlannedRequests()),
		exec:       newRequestExecutor(cfg),
		ctx:        ctx,
		cancelFunc: cancel,
		sem:        semaphore.NewWeighted(int64(cfg.MaxPoolSize)),
		resultChan: make(chan *Measurement, cfg.Parallelism()*2),
		done:       make(chan struct{}),
		status:     StatusRunning,
		startedAt:  time.Now(),
	}

	go r.collect()

	for u := 0; u < cfg.ConcurrentUsers; u++ {
		r.users.Add(1)
		go r.virtualUser(u)
	}

	// Close the result channel once every user goroutine has finished, so the
	// collector can drain and finalize.
	go func() {
		r.users.Wait()
		close(r.resultChan)
	}()

	return r, nil
}

// virtualUser issues one user's request sequence. Requests run strictly in
// order with the configured delay between successive requests; the weighted
// semaphore bounds in-flight requests across all users to the pool size.
func (r *Run) virtualUser(user int) {
	defer r.users.Done()

	for seq := 0; seq < r.cfg.RequestsPerUser; seq++ {
		if seq > 0 && r.cfg.RequestDelay > 0 {
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(r.cfg.RequestDelay):
			}
		}

		// Cancellation is checked here, before dispatch: Acquire fails once
		// the run context is cancelled, leaving this request undispatched.
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return
		}

		r.mu.Lock()
		r.dispatched++
		r.inFlight++
		r.mu.Unlock()

		m := r.exec.executeOnce(user, seq)

		// Record completion before releasing the pool slot: a request must
		// leave the in-flight count before another can take its place, so no
		// observer ever sees more than MaxPoolSize in flight at once.
		r.mu.Lock()
		r.inFlight--
		r.measurements = append(r.measurements, m)
		if m.Succeeded() {
			r.successes++
		}
		r.mu.Unlock()

		r.sem.Release(1)
		r.resultChan <- m
	}
}

// collect feeds completions to the aggregator, then finalizes the run.
func (r *Run) collect() {
	for m := range r.resultChan {
		r.stats.Observe(m)
	}
	r.finalize()
}

func (r *Run) finalize() {
	r.exec.closeIdle()

	r.mu.Lock()
	r.completedAt = time.Now()
	if r.cancelled {
		r.status = StatusCancelled
	} else {
		r.status = StatusCompleted
	}
	r.mu.Unlock()

	close(r.done)
}

// Cancel requests a cooperative stop. Not-yet-started requests are dropped;
// in-flight requests finish or time out naturally and their measurements are
// retained. Safe to call more than once.
func (r *Run) Cancel() {
	r.mu.Lock()
	if !r.status.Terminal() {
		r.cancelled = true
	}
	r.mu.Unlock()
	r.cancelFunc()
}

// Wait blocks until the run reaches a terminal state.
func (r *Run) Wait() {
	<-r.done
}

// Done returns a channel closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Status returns the current lifecycle state.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Config returns the run's configuration.
func (r *Run) Config() *Config {
	return r.cfg
}

// Stats returns the run's aggregator. It stays valid after completion.
func (r *Run) Stats() *Stats {
	return r.stats
}

// Measurements returns a copy of the collected records in completion order.
// After a terminal state this is the full, immutable record set; during a run
// it is the records completed so far.
func (r *Run) Measurements() []*Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Measurement, len(r.measurements))
	copy(out, r.measurements)
	return out
}

// Report reduces the final run state into a Report. Callable at any time,
// but conventionally used once the run is terminal.
func (r *Run) Report(th Thresholds) *Report {
	r.mu.Lock()
	startedAt := r.startedAt
	completedAt := r.completedAt
	status := r.status
	r.mu.Unlock()
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	return BuildReport(r.ID, r.cfg, r.stats, status, startedAt, completedAt, th)
}
