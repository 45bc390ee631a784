// Package config defines the structures to describe a rig: its transform nodes, joint limits,
// solvable chains and solver options.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/motionplan/ik"
)

// World is the reserved parent name of root nodes.
const World = "world"

// A Config describes a rig.
type Config struct {
	Name   string        `json:"name" yaml:"name"`
	Nodes  []NodeConfig  `json:"nodes" yaml:"nodes"`
	Chains []ChainConfig `json:"chains,omitempty" yaml:"chains,omitempty"`
	Solver SolverConfig  `json:"solver" yaml:"solver"`

	Log []logging.LoggerPatternConfig `json:"log,omitempty" yaml:"log,omitempty"`

	ConfigFilePath string `json:"-" yaml:"-"`
}

// SolverConfig holds solver options. Unset fields take the solver defaults.
type SolverConfig struct {
	Iterations        int      `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	PositionThreshold *float64 `json:"position_threshold,omitempty" yaml:"position_threshold,omitempty"`
	AngleThreshold    *float64 `json:"angle_threshold,omitempty" yaml:"angle_threshold,omitempty"`
}

// Options returns the solver options with defaults filled in.
func (sc SolverConfig) Options() ik.Options {
	opts := ik.NewDefaultOptions()
	if sc.Iterations != 0 {
		opts.Iterations = sc.Iterations
	}
	if sc.PositionThreshold != nil {
		opts.PositionThreshold = *sc.PositionThreshold
	}
	if sc.AngleThreshold != nil {
		opts.AngleThreshold = *sc.AngleThreshold
	}
	return opts
}

// ChainConfig names a solvable run of nodes from Base down to Tip.
type ChainConfig struct {
	Name           string `json:"name" yaml:"name"`
	Base           string `json:"base" yaml:"base"`
	Tip            string `json:"tip" yaml:"tip"`
	EffectorOffset Vector `json:"effector_offset" yaml:"effector_offset"`
}

// Validate returns every problem with the config, combined.
func (c *Config) Validate() error {
	var errs error
	names := lo.Map(c.Nodes, func(n NodeConfig, _ int) string { return n.Name })
	for _, dup := range lo.FindDuplicates(names) {
		errs = multierr.Append(errs, errors.Errorf("node name %q is not unique", dup))
	}
	byName := lo.KeyBy(c.Nodes, func(n NodeConfig) string { return n.Name })

	for i, n := range c.Nodes {
		errs = multierr.Append(errs, errors.Wrapf(n.Validate(), "nodes.%d", i))
		if n.Parent != "" && n.Parent != World {
			if _, ok := byName[n.Parent]; !ok {
				errs = multierr.Append(errs, errors.Errorf("node %q has unknown parent %q", n.Name, n.Parent))
			}
		}
	}
	if _, err := SortNodes(c.Nodes); err != nil {
		errs = multierr.Append(errs, err)
	}

	chainNames := lo.Map(c.Chains, func(ch ChainConfig, _ int) string { return ch.Name })
	for _, dup := range lo.FindDuplicates(chainNames) {
		errs = multierr.Append(errs, errors.Errorf("chain name %q is not unique", dup))
	}
	for i, ch := range c.Chains {
		if ch.Name == "" {
			errs = multierr.Append(errs, errors.Errorf("chains.%d: name is required", i))
		}
		for _, end := range []string{ch.Base, ch.Tip} {
			if _, ok := byName[end]; !ok {
				errs = multierr.Append(errs, errors.Errorf("chain %q refers to unknown node %q", ch.Name, end))
			}
		}
		if ch.EffectorOffset.R3().Norm() == 0 {
			errs = multierr.Append(errs, errors.Errorf("chain %q needs a non-zero effector offset", ch.Name))
		}
	}

	errs = multierr.Append(errs, errors.Wrap(c.Solver.Options().Validate(), "solver"))
	for _, lpc := range c.Log {
		if !logging.ValidatePattern(lpc.Pattern) {
			errs = multierr.Append(errs, errors.Errorf("invalid log pattern %q", lpc.Pattern))
		}
		if _, err := logging.LevelFromString(lpc.Level); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// SortNodes orders nodes so that every parent comes before its children.
func SortNodes(nodes []NodeConfig) ([]NodeConfig, error) {
	nodeToConfig := make(map[string]NodeConfig, len(nodes))
	for _, n := range nodes {
		nodeToConfig[n.Name] = n
	}

	sorted := make([]NodeConfig, 0, len(nodes))
	visited := map[string]bool{}

	var dfsHelper func(string, []string) error
	dfsHelper = func(name string, path []string) error {
		for idx, nodeName := range path {
			if name == nodeName {
				return errors.Errorf("circular parent links between %s", strings.Join(path[idx:], ", "))
			}
		}

		path = append(path, name)
		if _, ok := visited[name]; ok {
			return nil
		}
		visited[name] = true
		ntc, ok := nodeToConfig[name]
		if !ok {
			return nil
		}
		if ntc.Parent != "" && ntc.Parent != World {
			if err := dfsHelper(ntc.Parent, path); err != nil {
				return err
			}
		}
		sorted = append(sorted, ntc)
		return nil
	}

	for _, n := range nodes {
		if _, ok := visited[n.Name]; !ok {
			if err := dfsHelper(n.Name, nil); err != nil {
				return nil, err
			}
		}
	}
	return sorted, nil
}
