// Package cli contains the ccdsim command line app: it prints rigs described by config files, solves
// their chains toward given targets and runs the rail and stewart platform simulations.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/kinchain/simulation"
)

const (
	// Flags.
	generalFlagDebug  = "debug"
	generalFlagConfig = "config"

	solveFlagChain       = "chain"
	solveFlagTarget      = "target"
	solveFlagOrientation = "orientation"
	solveFlagIterations  = "iterations"

	simFlagTicks    = "ticks"
	simFlagRows     = "rows"
	simFlagRealtime = "realtime"
	simFlagPeriod   = "period"

	railFlagTargetEvery = "target-every"
	railFlagOrient      = "orient"
)

var simulationFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  simFlagTicks,
		Usage: "number of ticks to run",
		Value: 360,
	},
	&cli.IntFlag{
		Name:  simFlagRows,
		Usage: "number of trailing rows to print",
		Value: 10,
	},
	&cli.BoolFlag{
		Name:  simFlagRealtime,
		Usage: "pace ticks with the wall clock instead of running them back to back",
	},
	&cli.DurationFlag{
		Name:  simFlagPeriod,
		Usage: "tick period when running in real time",
		Value: simulation.DefaultPeriod,
	},
}

// NewApp returns a new app with the ccdsim commands, Writer set to out, and ErrWriter set to
// errOut. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	cs := &ccdsim{}
	return &cli.App{
		Name:            "ccdsim",
		Usage:           "solve joint chains with cyclic coordinate descent",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      generalFlagConfig,
				Aliases:   []string{"c"},
				Usage:     "load rig configuration from `FILE` (.json, .yaml or .yml)",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: cs.before,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the nodes of the configured rig",
				Action: cs.ShowAction,
			},
			{
				Name:      "solve",
				Usage:     "solve a chain of the configured rig toward a target",
				UsageText: "ccdsim --config arm.yaml solve --target 1 --target 2 --target 2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  solveFlagChain,
						Usage: "chain to solve, required when the rig has more than one",
					},
					&cli.Float64SliceFlag{
						Name:     solveFlagTarget,
						Usage:    "target position as x, y and z",
						Required: true,
					},
					&cli.Float64SliceFlag{
						Name:  solveFlagOrientation,
						Usage: "target end effector euler angles in degrees as pitch, yaw and roll",
					},
					&cli.IntFlag{
						Name:  solveFlagIterations,
						Usage: "override the configured iteration budget",
					},
				},
				Action: cs.SolveAction,
			},
			{
				Name:  "rail",
				Usage: "run an arm on two rails chasing targets that orbit eight waypoints",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  railFlagTargetEvery,
						Usage: "move to the next waypoint every `N` ticks, 0 to stay on the first",
						Value: 90,
					},
					&cli.BoolFlag{
						Name:  railFlagOrient,
						Usage: "also solve for the end effector orientation",
					},
				}, simulationFlags...),
				Action: cs.RailAction,
			},
			{
				Name:   "stewart",
				Usage:  "run a six legged platform whose body follows a looping path",
				Flags:  simulationFlags,
				Action: cs.StewartAction,
			},
		},
	}
}
