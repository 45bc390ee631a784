package cli

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/kinchain/config"
	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/motionplan/ik"
	"go.viam.com/kinchain/rig"
	"go.viam.com/kinchain/robots/rail"
	"go.viam.com/kinchain/robots/stewart"
	"go.viam.com/kinchain/simulation"
)

// ccdsim holds the state shared by the commands of one app.
type ccdsim struct {
	registry *logging.Registry
	logger   logging.Logger
}

func (cs *ccdsim) before(c *cli.Context) error {
	logger := logging.NewBlankLogger("ccdsim")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if !c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.INFO)
	}
	cs.registry = logging.NewRegistry()
	cs.logger = cs.registry.GetOrRegister("ccdsim", logger)
	return nil
}

// sublogger returns a registered child of the app logger so log patterns apply to it.
func (cs *ccdsim) sublogger(name string) logging.Logger {
	sub := cs.logger.Sublogger(name)
	return cs.registry.GetOrRegister("ccdsim."+name, sub)
}

func (cs *ccdsim) loadRig(c *cli.Context, iterations int) (*rig.Rig, error) {
	path := c.String(generalFlagConfig)
	if path == "" {
		return nil, errors.Errorf("no rig config, pass --%s", generalFlagConfig)
	}
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	if iterations > 0 {
		cfg.Solver.Iterations = iterations
	}
	logger := cs.sublogger("rig")
	// --debug wins over the configured levels
	if len(cfg.Log) > 0 && !c.Bool(generalFlagDebug) {
		if err := cs.registry.UpdateConfig(cfg.Log, cs.logger); err != nil {
			return nil, err
		}
	}
	return rig.Build(logger, cfg)
}

func vectorFlag(c *cli.Context, name string) (*r3.Vector, error) {
	values := c.Float64Slice(name)
	switch len(values) {
	case 0:
		return nil, nil
	case 3:
		return &r3.Vector{X: values[0], Y: values[1], Z: values[2]}, nil
	default:
		return nil, errors.Errorf("--%s needs exactly 3 values, got %d", name, len(values))
	}
}

// ShowAction prints the configured rig.
func (cs *ccdsim) ShowAction(c *cli.Context) error {
	r, err := cs.loadRig(c, 0)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, r.String())
	return err
}

// SolveAction solves one chain of the configured rig and prints the solution and resulting pose.
func (cs *ccdsim) SolveAction(c *cli.Context) error {
	target, err := vectorFlag(c, solveFlagTarget)
	if err != nil {
		return err
	}
	if target == nil {
		return errors.Errorf("--%s is required", solveFlagTarget)
	}
	orientation, err := vectorFlag(c, solveFlagOrientation)
	if err != nil {
		return err
	}
	r, err := cs.loadRig(c, c.Int(solveFlagIterations))
	if err != nil {
		return err
	}

	chainName := c.String(solveFlagChain)
	if chainName == "" {
		names := r.ChainNames()
		if len(names) != 1 {
			return errors.Errorf("rig has chains %v, pick one with --%s", names, solveFlagChain)
		}
		chainName = names[0]
	}
	chain, err := r.Chain(chainName)
	if err != nil {
		return err
	}
	sol, err := r.Solve(c.Context, chainName, ik.Goal{Position: *target, Orientation: orientation})
	if err != nil {
		return err
	}
	if !sol.Converged {
		cs.logger.Warnw("chain did not converge", "chain", chainName, "position_error", sol.PositionError)
	}
	if _, err := fmt.Fprintln(c.App.Writer, rig.SolutionTable([]rig.SolutionRow{{
		Chain:    chainName,
		Target:   *target,
		Effector: chain.EndEffectorWorldPosition(),
		Solution: sol,
	}})); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, r.String())
	return err
}

// RailAction runs the rail simulation.
func (cs *ccdsim) RailAction(c *cli.Context) error {
	rl, err := rail.New(cs.sublogger("rail"))
	if err != nil {
		return err
	}
	rl.SetOrientationConstraint(c.Bool(railFlagOrient))
	every := c.Int(railFlagTargetEvery)
	ticks := 0
	return cs.runSimulation(c, "rail", rl, func([]rig.SolutionRow) {
		ticks++
		if every > 0 && ticks%every == 0 {
			rl.NextTarget()
		}
	})
}

// StewartAction runs the stewart platform simulation.
func (cs *ccdsim) StewartAction(c *cli.Context) error {
	p, err := stewart.New(cs.sublogger("stewart"))
	if err != nil {
		return err
	}
	return cs.runSimulation(c, "stewart", p, nil)
}

func (cs *ccdsim) runSimulation(c *cli.Context, name string, stepper simulation.Stepper, onStep func([]rig.SolutionRow)) error {
	keep := c.Int(simFlagRows)
	if keep < 0 {
		return errors.Errorf("--%s must not be negative, got %d", simFlagRows, keep)
	}
	if ticks := c.Int(simFlagTicks); ticks < 0 {
		return errors.Errorf("--%s must not be negative, got %d", simFlagTicks, ticks)
	}
	runner := simulation.NewRunner(name, stepper, nil, c.Duration(simFlagPeriod), cs.sublogger("simulation"))

	var tail []rig.SolutionRow
	runner.OnStep(func(rows []rig.SolutionRow) {
		tail = append(tail, rows...)
		if len(tail) > keep {
			tail = tail[len(tail)-keep:]
		}
		if onStep != nil {
			onStep(rows)
		}
	})

	start := time.Now()
	var err error
	if c.Bool(simFlagRealtime) {
		err = runner.Run(c.Context, c.Int(simFlagTicks))
	} else {
		_, err = runner.RunTicks(c.Context, c.Int(simFlagTicks))
	}
	if err != nil {
		return err
	}
	cs.logger.Infow("simulation finished",
		"rig", name,
		"ticks", runner.Ticks(),
		"residual", runner.Residual(),
		"elapsed", time.Since(start))

	if keep > 0 {
		if _, err := fmt.Fprintln(c.App.Writer, rig.SolutionTable(tail)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s: %d ticks, mean position error %.6f over the last ticks\n",
		name, runner.Ticks(), runner.Residual())
	return err
}
