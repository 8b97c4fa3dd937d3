package screening

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

// RunState is the runner's run-guard state.
type RunState string

var (
	// StateIdle means no screening run is active
	StateIdle = RunState("idle")
	// StateRunning means a screening run is in progress in this process
	StateRunning = RunState("running")
)

// ErrRunInProgress is returned when a run is requested while another run is
// still active in this process.
var ErrRunInProgress = errors.New("a screening run is already in progress")

// RunReport is the combined outcome of one full pipeline run.
type RunReport struct {
	Batch BatchSummary `json:"batch"`
	Sweep SweepSummary `json:"sweep"`
}

// Runner drives the whole pipeline: aggregate the recruiter's candidates,
// score the unscored ones, then sweep the auto-rejection policy. A single
// explicit idle/running state machine guards against overlapping runs
// within this process; it provides no cross-process mutual exclusion, which
// is why the gate decides from persisted state only.
type Runner struct {
	store  Store
	worker *Worker
	policy *Policy

	mu    sync.Mutex
	state RunState
}

// NewRunner constructs a Runner in the idle state.
func NewRunner(store Store, worker *Worker, policy *Policy) *Runner {
	return &Runner{
		store:  store,
		worker: worker,
		policy: policy,
		state:  StateIdle,
	}
}

// State returns the current run-guard state. Exposed for the status
// endpoint and for tests.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// setState is the single mutator of the run-guard state.
func (r *Runner) setState(s RunState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// tryBegin transitions idle -> running, or reports a run in progress.
func (r *Runner) tryBegin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning {
		return false
	}
	r.state = StateRunning
	return true
}

// Run executes one full pipeline pass for the recruiter: fresh fetch,
// screening batch, then policy sweep. Returns ErrRunInProgress when a run
// is already active.
func (r *Runner) Run(ctx context.Context, recruiterID uuid.UUID) (RunReport, error) {
	var report RunReport

	if !r.tryBegin() {
		return report, ErrRunInProgress
	}
	defer r.setState(StateIdle)

	jobs, err := r.store.JobsByRecruiter(ctx, recruiterID)
	if err != nil {
		return report, err
	}

	report.Batch = r.worker.Run(ctx, Aggregate(jobs))

	report.Sweep, err = r.policy.Sweep(ctx, recruiterID)
	if err != nil {
		return report, err
	}

	return report, nil
}

// Consume triggers a pipeline run for every event on the channel until ctx
// is done. Events arriving while a run is active are dropped: the active
// run's sweep re-reads the store, so nothing is missed, and the next event
// starts a fresh run. The channel decouples the pipeline from the store's
// notification mechanism.
func (r *Runner) Consume(ctx context.Context, recruiterID uuid.UUID, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			report, err := r.Run(ctx, recruiterID)
			if err != nil {
				if !errors.Is(err, ErrRunInProgress) {
					log.Printf("screening: triggered run for recruiter %s failed: %v", recruiterID, err)
				}
				continue
			}
			if report.Batch.Scored > 0 || report.Sweep.Rejected > 0 {
				log.Printf("screening: recruiter %s: scored %d, auto-rejected %d",
					recruiterID, report.Batch.Scored, report.Sweep.Rejected)
			}
		}
	}
}
