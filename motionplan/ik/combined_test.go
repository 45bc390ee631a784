package ik

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/kinchain/referenceframe"
)

// legsUnderBody hangs count two segment legs off a shared body, spaced 5 apart along X.
func legsUnderBody(t *testing.T, count int) []ChainGoal {
	t.Helper()
	body := referenceframe.NewNode("body")
	goals := make([]ChainGoal, count)
	for i := range goals {
		root := referenceframe.NewNode(fmt.Sprintf("leg%d_0", i))
		test.That(t, root.LinkParent(body, false), test.ShouldBeNil)
		root.SetOrigin(r3.Vector{X: float64(5 * i)})
		tip := referenceframe.NewNode(fmt.Sprintf("leg%d_1", i))
		test.That(t, tip.LinkParent(root, true), test.ShouldBeNil)
		tip.SetOrigin(r3.Vector{Z: 1})

		chain, err := referenceframe.NewChain(r3.Vector{Z: 1}, root, tip)
		test.That(t, err, test.ShouldBeNil)
		goals[i] = ChainGoal{
			Name:  fmt.Sprintf("leg%d", i),
			Chain: chain,
			Goal:  Goal{Position: r3.Vector{X: float64(5*i) + 1, Z: 1}},
		}
	}
	return goals
}

func TestSolveChains(t *testing.T) {
	goals := legsUnderBody(t, 6)

	sols, err := SolveChains(context.Background(), newSolver(t, 2), goals)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sols, test.ShouldHaveLength, 6)
	for i, sol := range sols {
		test.That(t, sol.Converged, test.ShouldBeTrue)
		vecAlmostEqual(t, goals[i].Chain.EndEffectorWorldPosition(), goals[i].Goal.Position, 1e-9)
	}

	sols, err = SolveChains(context.Background(), newSolver(t, 1), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sols, test.ShouldBeEmpty)
}

func TestSolveChainsOverlap(t *testing.T) {
	nodes := segments(t, 3, 1)
	arm, err := referenceframe.NewChain(r3.Vector{Z: 1}, nodes[:2]...)
	test.That(t, err, test.ShouldBeNil)

	t.Run("shared node", func(t *testing.T) {
		wrist, err := referenceframe.NewChain(r3.Vector{Z: 1}, nodes[1:]...)
		test.That(t, err, test.ShouldBeNil)
		_, err = SolveChains(context.Background(), newSolver(t, 1), []ChainGoal{
			{Name: "arm", Chain: arm},
			{Name: "wrist", Chain: wrist},
		})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `chains "arm" and "wrist" overlap`)
	})

	t.Run("descendant chain", func(t *testing.T) {
		hand, err := referenceframe.NewChain(r3.Vector{Z: 1}, nodes[2])
		test.That(t, err, test.ShouldBeNil)
		err = ValidateIndependent([]ChainGoal{{Name: "arm", Chain: arm}, {Name: "hand", Chain: hand}})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `"seg0" and "seg2"`)
	})
}

func TestSolveChainsCanceled(t *testing.T) {
	goals := legsUnderBody(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sols, err := SolveChains(ctx, newSolver(t, 1), goals)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `solving "leg0"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `solving "leg1"`)
	test.That(t, sols, test.ShouldHaveLength, 2)
	for _, sol := range sols {
		test.That(t, sol.Converged, test.ShouldBeFalse)
	}
}
