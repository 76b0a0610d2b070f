package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CourseProcessor is what the Runner drives for each course id.
type CourseProcessor interface {
	Process(ctx context.Context, courseID string, clock Clock) (*CourseReport, error)
}

type CourseResult struct {
	Summary CourseSummary `json:"summary"`
	Report  *CourseReport `json:"report,omitempty"`
	Err     error         `json:"-"`
}

type BatchResult struct {
	ID        uuid.UUID      `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
	Results   []CourseResult `json:"results"`
}

// Summaries returns the summary rows in input order.
func (b BatchResult) Summaries() []CourseSummary {
	out := make([]CourseSummary, len(b.Results))
	for i, r := range b.Results {
		out[i] = r.Summary
	}
	return out
}

type Runner struct {
	proc      CourseProcessor
	workers   int
	nowPolicy NowPolicy
	now       func() time.Time
	log       *slog.Logger
}

type RunnerOption func(*Runner)

// WithWorkers bounds how many courses are processed at once.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithNowPolicy(p NowPolicy) RunnerOption {
	return func(r *Runner) { r.nowPolicy = p }
}

func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

func NewRunner(proc CourseProcessor, opts ...RunnerOption) *Runner {
	r := &Runner{
		proc:      proc,
		workers:   1,
		nowPolicy: NowFrozen,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run audits every course id in order. A failing course becomes an error
// row; it never stops the batch.
func (r *Runner) Run(ctx context.Context, courseIDs []string) BatchResult {
	started := time.Now()
	batch := BatchResult{
		ID:        uuid.New(),
		StartedAt: r.now().UTC(),
		Results:   make([]CourseResult, len(courseIDs)),
	}
	log := r.log.With("batch_id", batch.ID.String())
	log.Info("batch started", "courses", len(courseIDs), "workers", r.workers)

	clock := r.clock(batch.StartedAt)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, id := range courseIDs {
		i, id := i, id
		g.Go(func() error {
			batch.Results[i] = r.RunOne(gctx, id, clock)
			return nil
		})
	}
	_ = g.Wait()

	batch.Elapsed = time.Since(started)
	log.Info("batch finished", "elapsed", batch.Elapsed.String())
	return batch
}

// RunOne processes a single course and converts any failure into a summary.
func (r *Runner) RunOne(ctx context.Context, courseID string, clock Clock) CourseResult {
	report, err := r.proc.Process(ctx, courseID, clock)
	if err == nil {
		return CourseResult{Summary: Summarize(report), Report: report}
	}

	summary := CourseSummary{
		CourseID: courseID,
		Error:    err.Error(),
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		summary.Rollup = RollupNotFound
		r.log.Warn("course not found", "course_id", courseID, "err", err)
	} else {
		summary.Rollup = RollupError
		r.log.Error("course processing failed", "course_id", courseID, "err", err)
	}
	summary.Color = summary.Rollup.Color()
	return CourseResult{Summary: summary, Err: err}
}

func (r *Runner) clock(start time.Time) Clock {
	if r.nowPolicy == NowPerAssignment {
		return func() time.Time { return r.now().UTC() }
	}
	return FrozenClock(start)
}

// Audit processes one course outside of a batch with a freshly sampled clock.
func (r *Runner) Audit(ctx context.Context, courseID string) CourseResult {
	return r.RunOne(ctx, courseID, r.clock(r.now().UTC()))
}
