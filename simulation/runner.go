// Package simulation drives rigs tick by tick, either back to back or paced by a clock, and keeps
// track of how well their chains are converging.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/rig"
	"go.viam.com/kinchain/utils"
)

// DefaultPeriod is the tick period of a paced run, roughly a 60Hz display.
const DefaultPeriod = 16 * time.Millisecond

// residualWindow is the number of ticks averaged by Residual.
const residualWindow = 25

// A Stepper advances a rig one tick and reports the solution of each of its chains.
type Stepper interface {
	Step(ctx context.Context) ([]rig.SolutionRow, error)
}

// Runner runs a Stepper. Run and Start pace ticks with the runner's clock; RunTicks does not wait.
type Runner struct {
	name    string
	stepper Stepper
	clock   clock.Clock
	period  time.Duration
	logger  logging.Logger

	mu       sync.Mutex
	ticks    int
	residual *utils.RollingAverage
	last     []rig.SolutionRow
	onStep   func([]rig.SolutionRow)

	workers utils.StoppableWorkers
}

// NewRunner returns a runner for stepper. A nil clock means the wall clock and a non-positive period
// means DefaultPeriod.
func NewRunner(name string, stepper Stepper, clk clock.Clock, period time.Duration, logger logging.Logger) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Runner{
		name:     name,
		stepper:  stepper,
		clock:    clk,
		period:   period,
		logger:   logger,
		residual: utils.NewRollingAverage(residualWindow),
	}
}

// OnStep sets a callback run with the rows of every tick, after the tick is recorded.
func (r *Runner) OnStep(fn func([]rig.SolutionRow)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStep = fn
}

// Name returns the runner's name.
func (r *Runner) Name() string {
	return r.name
}

// Ticks returns the number of ticks run so far.
func (r *Runner) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Residual returns the mean position error per chain over the last few ticks.
func (r *Runner) Residual() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.residual.Average()
}

// Last returns the rows of the latest tick.
func (r *Runner) Last() []rig.SolutionRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) step(ctx context.Context) ([]rig.SolutionRow, error) {
	rows, err := r.stepper.Step(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "%s tick %d", r.name, r.Ticks())
	}

	sum, converged := 0., 0
	for _, row := range rows {
		sum += row.Solution.PositionError
		if row.Solution.Converged {
			converged++
		}
	}
	mean := 0.
	if len(rows) > 0 {
		mean = sum / float64(len(rows))
	}

	r.mu.Lock()
	r.ticks++
	r.residual.Add(mean)
	r.last = rows
	onStep := r.onStep
	r.mu.Unlock()

	r.logger.CDebugw(ctx, "tick",
		"rig", r.name,
		"chains", len(rows),
		"converged", converged,
		"mean_position_error", mean)
	if onStep != nil {
		onStep(rows)
	}
	return rows, nil
}

// RunTicks runs n ticks back to back and returns all of their rows.
func (r *Runner) RunTicks(ctx context.Context, n int) ([]rig.SolutionRow, error) {
	var all []rig.SolutionRow
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		rows, err := r.step(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// Run ticks once per period until ctx is done or maxTicks ticks have run, if maxTicks is positive.
// It returns nil when stopped by ctx or the tick limit.
func (r *Runner) Run(ctx context.Context, maxTicks int) error {
	ticker := r.clock.Ticker(r.period)
	defer ticker.Stop()

	start := r.Ticks()
	for maxTicks <= 0 || r.Ticks()-start < maxTicks {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := r.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	r.logger.Infow("run finished", "rig", r.name, "ticks", r.Ticks()-start, "residual", r.Residual())
	return nil
}

// Start runs the runner in the background until Stop is called. Errors end the run and are logged.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workers != nil {
		return
	}
	r.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		if err := r.Run(ctx, 0); err != nil {
			r.logger.Errorw("background run failed", "rig", r.name, "error", err)
		}
	})
}

// Stop ends a background run started by Start and waits for it to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	workers := r.workers
	r.workers = nil
	r.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}
}

// RunAll runs n ticks of every runner concurrently. Each runner must drive its own rig. The first
// failure cancels the others.
func RunAll(ctx context.Context, n int, runners ...*Runner) (time.Duration, error) {
	fs := make([]utils.SimpleFunc, 0, len(runners))
	for _, r := range runners {
		r := r
		fs = append(fs, func(ctx context.Context) error {
			_, err := r.RunTicks(ctx, n)
			return err
		})
	}
	return utils.RunInParallel(ctx, fs)
}
