package ik

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/kinchain/referenceframe"
)

// ChainGoal pairs a chain with the goal it should be solved toward.
type ChainGoal struct {
	Name  string
	Chain *referenceframe.Chain
	Goal  Goal
}

// ValidateIndependent returns an error if any two chains could write to the same node or read a
// node another chain writes to: chains may share ancestors above their bases, but no node of one may
// be, or be an ancestor of, a node of another.
func ValidateIndependent(goals []ChainGoal) error {
	for i := range goals {
		for j := i + 1; j < len(goals); j++ {
			for _, a := range goals[i].Chain.Nodes() {
				for _, b := range goals[j].Chain.Nodes() {
					if a == b || a.IsAncestorOf(b) || b.IsAncestorOf(a) {
						return errors.Errorf("chains %q and %q overlap at nodes %q and %q",
							goals[i].Name, goals[j].Name, a.Name(), b.Name())
					}
				}
			}
		}
	}
	return nil
}

// SolveChains solves independent chains concurrently with one solver, returning solutions in the
// order of goals. All chains are attempted even if some fail; the errors are combined.
func SolveChains(ctx context.Context, solver *CCDSolver, goals []ChainGoal) ([]*Solution, error) {
	if err := ValidateIndependent(goals); err != nil {
		return nil, err
	}
	// Shared ancestors above the bases are only read during a solve, but their caches are filled
	// lazily. Fill them here so the goroutines below never write to them.
	for _, g := range goals {
		g.Chain.Base().ParentWorldMatrix()
	}

	solutions := make([]*Solution, len(goals))
	var activeSolvers sync.WaitGroup
	defer activeSolvers.Wait()

	var solveErrors error
	var solveResultLock sync.Mutex

	for i, g := range goals {
		i, g := i, g
		activeSolvers.Add(1)
		utils.PanicCapturingGo(func() {
			defer activeSolvers.Done()

			sol, err := solver.Solve(ctx, g.Chain, g.Goal)
			solutions[i] = sol
			if err != nil {
				solveResultLock.Lock()
				defer solveResultLock.Unlock()
				solveErrors = multierr.Combine(solveErrors, errors.Wrapf(err, "solving %q", g.Name))
			}
		})
	}

	activeSolvers.Wait()

	return solutions, solveErrors
}
