// Package scheduler orchestrates the whole search: validate the typed
// request, enumerate stage orderings, build and solve each ordering's
// model in parallel under a shared deadline, then aggregate into the
// ranked top-K answer.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"interview-scheduler/aggregator"
	"interview-scheduler/cpmodel"
	"interview-scheduler/errors"
	"interview-scheduler/metrics"
	"interview-scheduler/models"
	"interview-scheduler/sequence"
	"interview-scheduler/solver"
	"interview-scheduler/timegrid"
)

const (
	// DefaultMaxOrderings bounds the free-stage permutation explosion
	// (7! fits, 8! does not).
	DefaultMaxOrderings = 5040
	// DefaultConcurrency bounds parallel per-ordering solves.
	DefaultConcurrency = 4
)

// Engine runs schedule searches. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	solver       solver.Solver
	log          zerolog.Logger
	maxOrderings int
	concurrency  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMaxOrderings overrides the permutation cap.
func WithMaxOrderings(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxOrderings = n
		}
	}
}

// WithConcurrency overrides the parallel-solve limit.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New builds an engine around a solver adapter.
func New(s solver.Solver, opts ...Option) *Engine {
	e := &Engine{
		solver:       s,
		log:          zerolog.Nop(),
		maxOrderings: DefaultMaxOrderings,
		concurrency:  DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schedule computes the ranked top-K feasible schedules for one
// request. Input and capacity errors fail the whole request; per-
// ordering infeasibility, timeouts, and unexpected solver failures only
// lower the aggregate status.
func (e *Engine) Schedule(ctx context.Context, req *models.Request) (*models.Result, error) {
	started := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(started).Seconds())
	}()

	windows, err := e.clipWindows(req)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	// Request-local epoch: earliest availability after daily clipping.
	epoch := windows[0].Start
	for _, w := range windows[1:] {
		if w.Start.Before(epoch) {
			epoch = w.Start
		}
	}
	grid, err := timegrid.New(epoch, req.TimeStepMinutes)
	if err != nil {
		return nil, err
	}

	clipped := *req
	clipped.Windows = windows
	mctx, err := cpmodel.NewContext(grid, &clipped)
	if err != nil {
		return nil, err
	}

	orderings, err := sequence.Enumerate(req.Stages, e.maxOrderings)
	if err != nil {
		return nil, err
	}
	metrics.OrderingsPerRequest.Observe(float64(len(orderings)))

	wantK := req.TopK / len(orderings)
	if wantK < 1 {
		wantK = 1
	}

	solveCtx := ctx
	var cancel context.CancelFunc
	if req.MaxTime > 0 {
		solveCtx, cancel = context.WithTimeout(ctx, req.MaxTime)
		defer cancel()
	}

	outcomes := make([]aggregator.OrderingOutcome, len(orderings))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, ord := range orderings {
		g.Go(func() error {
			outcomes[i] = e.solveOrdering(solveCtx, mctx, ord, wantK)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; outcomes carry them

	res := aggregator.Aggregate(grid, outcomes, req.TopK)
	metrics.SchedulesReturned.Observe(float64(len(res.Schedules)))
	metrics.RequestsTotal.WithLabelValues(string(res.Status)).Inc()
	e.log.Info().
		Str("status", string(res.Status)).
		Int("orderings", len(orderings)).
		Int("schedules", len(res.Schedules)).
		Dur("elapsed", time.Since(started)).
		Msg("schedule search complete")
	return res, nil
}

// solveOrdering builds and solves one ordering. A panic or unexpected
// failure is confined to this ordering: logged, counted, and excluded
// from aggregation.
func (e *Engine) solveOrdering(ctx context.Context, mctx *cpmodel.Context, ord models.Ordering, wantK int) (out aggregator.OrderingOutcome) {
	out.Ordering = ord
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("solver panic: %v", r)
			metrics.OrderingFailures.Inc()
			e.log.Error().Interface("panic", r).Ints("ordering", ord).Msg("ordering solve panicked")
		}
	}()

	model, err := mctx.Build(ord)
	if err != nil {
		if stderrors.Is(err, errors.ErrInfeasible) {
			out.Status = models.StatusInfeasible
			metrics.InfeasibleOrderings.Inc()
			return out
		}
		out.Err = err
		metrics.OrderingFailures.Inc()
		e.log.Error().Err(err).Ints("ordering", ord).Msg("model build failed")
		return out
	}

	solveStart := time.Now()
	result := e.solver.Solve(ctx, model, wantK)
	metrics.SolveDuration.Observe(time.Since(solveStart).Seconds())

	out.Model = model
	out.Status = result.Status
	out.Assignments = result.Assignments
	metrics.SolutionsFound.Add(float64(len(result.Assignments)))
	if result.Status == models.StatusInfeasible {
		metrics.InfeasibleOrderings.Inc()
	}
	return out
}

// clipWindows intersects every availability window with the daily
// availability bounds, splitting multi-day windows into per-day
// segments. Windows that vanish entirely are dropped; a request whose
// windows all vanish has no availability left.
func (e *Engine) clipWindows(req *models.Request) ([]models.AvailabilityWindow, error) {
	if len(req.Windows) == 0 {
		return nil, &errors.InputError{Field: "availability_windows", Err: errors.ErrNoWindows}
	}
	startMin, err := timegrid.ParseDailyBound(req.DailyStart)
	if err != nil {
		return nil, err
	}
	endMin, err := timegrid.ParseDailyBound(req.DailyEnd)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, &errors.InputError{
			Field:  "daily_availability",
			Detail: fmt.Sprintf("%s >= %s", req.DailyStart, req.DailyEnd),
			Err:    errors.ErrInvalidDailyBound,
		}
	}

	var out []models.AvailabilityWindow
	for _, w := range req.Windows {
		if !w.End.After(w.Start) {
			return nil, &errors.InputError{
				Field:  "availability_windows",
				Detail: fmt.Sprintf("%s >= %s", w.Start.Format(timegrid.ISOFormat), w.End.Format(timegrid.ISOFormat)),
				Err:    errors.ErrInvalidWindow,
			}
		}
		out = append(out, timegrid.ClipToDaily(w, startMin, endMin)...)
	}
	if len(out) == 0 {
		return nil, &errors.InputError{
			Field:  "availability_windows",
			Detail: "all windows fall outside the daily availability bounds",
			Err:    errors.ErrNoWindows,
		}
	}
	return out, nil
}

// validate applies the request-level input checks that do not need the
// time grid. Grid, window, and pool validation happen during context
// construction.
func validate(req *models.Request) error {
	if len(req.Stages) == 0 {
		return &errors.InputError{Field: "stages", Err: errors.ErrNoStages}
	}
	for _, s := range req.Stages {
		if s.Duration <= 0 {
			return &errors.InputError{
				Field:  "stages",
				Detail: fmt.Sprintf("stage %q duration %d", s.Name, s.Duration),
				Err:    errors.ErrInvalidDuration,
			}
		}
		if len(s.Seats) == 0 {
			return &errors.InputError{
				Field:  "stages",
				Detail: fmt.Sprintf("stage %q has no seats", s.Name),
				Err:    errors.ErrEmptyPool,
			}
		}
		for _, seat := range s.Seats {
			if !models.ValidRole(seat.Role) {
				return &errors.InputError{
					Field:  "stages",
					Detail: fmt.Sprintf("seat %q role %q", seat.ID, seat.Role),
					Err:    errors.ErrInvalidRole,
				}
			}
		}
	}
	for _, iv := range req.Interviewers {
		if !models.ValidRole(iv.Role) {
			return &errors.InputError{
				Field:  "interviewers",
				Detail: fmt.Sprintf("interviewer %q role %q", iv.ID, iv.Role),
				Err:    errors.ErrInvalidRole,
			}
		}
	}
	return nil
}
