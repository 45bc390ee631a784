// Package rig builds transform hierarchies and their solvable chains from a config, playing the
// part of the scene builder that owns every node.
package rig

import (
	"context"
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/kinchain/config"
	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/motionplan/ik"
	"go.viam.com/kinchain/referenceframe"
)

// Rig owns a set of nodes and the chains solved over them.
type Rig struct {
	name   string
	logger logging.Logger
	solver *ik.CCDSolver

	nodes  map[string]*referenceframe.Node
	order  []string
	chains map[string]*referenceframe.Chain
}

// New returns an empty rig that solves with the given options.
func New(name string, logger logging.Logger, opts ik.Options) (*Rig, error) {
	solver, err := ik.NewCCDSolver(logger.Sublogger("solver"), opts)
	if err != nil {
		return nil, err
	}
	return &Rig{
		name:   name,
		logger: logger,
		solver: solver,
		nodes:  map[string]*referenceframe.Node{},
		chains: map[string]*referenceframe.Chain{},
	}, nil
}

// Build validates a config and creates its nodes, parents first, then its chains.
func Build(logger logging.Logger, cfg *config.Config) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rig config")
	}
	r, err := New(cfg.Name, logger, cfg.Solver.Options())
	if err != nil {
		return nil, err
	}
	sorted, err := config.SortNodes(cfg.Nodes)
	if err != nil {
		return nil, err
	}
	for _, nc := range sorted {
		if err := r.addNode(nc); err != nil {
			return nil, err
		}
	}
	for _, cc := range cfg.Chains {
		if _, err := r.AddChain(cc.Name, cc.Base, cc.Tip, cc.EffectorOffset.R3()); err != nil {
			return nil, err
		}
	}
	logger.Infow("built rig", "name", r.name, "nodes", len(r.order), "chains", len(r.chains))
	return r, nil
}

func (r *Rig) addNode(nc config.NodeConfig) error {
	n := referenceframe.NewNode(nc.Name)
	if nc.Scale != nil {
		n.SetScale(nc.Scale.R3())
	}
	n.SetAxis(nc.Axis.R3())
	if nc.Parent != "" && nc.Parent != config.World {
		parent, ok := r.nodes[nc.Parent]
		if !ok {
			return errors.Errorf("parent %q of %q is not built yet", nc.Parent, nc.Name)
		}
		if err := n.LinkParent(parent, nc.PreserveWorldPose); err != nil {
			return err
		}
	}
	n.SetOrigin(nc.Origin.R3())
	if nc.Euler != nil {
		n.SetEuler(nc.Euler.R3())
	}
	if nc.Joint != nil {
		jc, err := nc.Joint.ParseConfig()
		if err != nil {
			return errors.Wrapf(err, "joint of %q", nc.Name)
		}
		n.SetConstraint(jc)
		if err := n.CheckConstraint(); err != nil {
			return err
		}
	}
	return r.AddNode(n)
}

// AddNode registers a node built elsewhere. Names must be unique within the rig.
func (r *Rig) AddNode(n *referenceframe.Node) error {
	if _, ok := r.nodes[n.Name()]; ok {
		return errors.Errorf("node name %q is not unique", n.Name())
	}
	r.nodes[n.Name()] = n
	r.order = append(r.order, n.Name())
	return nil
}

// AddChain creates and registers the chain running from base down to tip.
func (r *Rig) AddChain(name, base, tip string, offset r3.Vector) (*referenceframe.Chain, error) {
	if _, ok := r.chains[name]; ok {
		return nil, errors.Errorf("chain name %q is not unique", name)
	}
	baseNode, err := r.Node(base)
	if err != nil {
		return nil, err
	}
	tipNode, err := r.Node(tip)
	if err != nil {
		return nil, err
	}
	chain, err := referenceframe.NewChainFromTip(baseNode, tipNode, offset)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %q", name)
	}
	r.chains[name] = chain
	return chain, nil
}

// Name returns the rig name.
func (r *Rig) Name() string {
	return r.name
}

// Logger returns the rig's logger.
func (r *Rig) Logger() logging.Logger {
	return r.logger
}

// Solver returns the solver shared by the rig's chains.
func (r *Rig) Solver() *ik.CCDSolver {
	return r.solver
}

// Node returns a node by name.
func (r *Rig) Node(name string) (*referenceframe.Node, error) {
	n, ok := r.nodes[name]
	if !ok {
		return nil, errors.Errorf("no node named %q", name)
	}
	return n, nil
}

// Chain returns a chain by name.
func (r *Rig) Chain(name string) (*referenceframe.Chain, error) {
	c, ok := r.chains[name]
	if !ok {
		return nil, errors.Errorf("no chain named %q", name)
	}
	return c, nil
}

// NodeNames returns node names in the order they were added.
func (r *Rig) NodeNames() []string {
	return append([]string(nil), r.order...)
}

// ChainNames returns chain names, sorted.
func (r *Rig) ChainNames() []string {
	names := lo.Keys(r.chains)
	sort.Strings(names)
	return names
}

// Solve solves one chain of the rig.
func (r *Rig) Solve(ctx context.Context, chainName string, goal ik.Goal) (*ik.Solution, error) {
	chain, err := r.Chain(chainName)
	if err != nil {
		return nil, err
	}
	return r.solver.Solve(ctx, chain, goal)
}

// CreateLinkedSegments creates count nodes named prefix_0 .. prefix_{count-1}, each pivoting at its
// own base and linked under the previous one `length` along its +Z. The first is a root at the
// origin.
func CreateLinkedSegments(prefix string, count int, length float64) []*referenceframe.Node {
	nodes := make([]*referenceframe.Node, 0, count)
	var prev *referenceframe.Node
	for i := 0; i < count; i++ {
		n := referenceframe.NewNode(fmt.Sprintf("%s_%d", prefix, i))
		if prev != nil {
			// a fresh node cannot be an ancestor of prev, so linking cannot fail
			_ = n.LinkParent(prev, true)
			// must go after linking, which recomputes the origin
			n.SetOrigin(r3.Vector{Z: length})
		}
		nodes = append(nodes, n)
		prev = n
	}
	return nodes
}
