package rig

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/kinchain/motionplan/ik"
	"go.viam.com/kinchain/referenceframe"
)

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", v.X, v.Y, v.Z)
}

func formatJoint(jc *referenceframe.JointConstraint) string {
	if jc == nil {
		return "free"
	}
	s := jc.Type.String()
	for _, lim := range jc.DoF() {
		s += fmt.Sprintf(" [%.2f, %.2f]", lim.Min, lim.Max)
	}
	return s
}

// String prints a table of each node in the rig with its parent, world position, world
// orientation and joint limits.
func (r *Rig) String() string {
	t := table.NewWriter()
	t.SetTitle(r.name)
	t.AppendHeader(table.Row{"#", "Name", "Parent", "Position", "Orientation", "Joint"})
	for i, name := range r.order {
		n := r.nodes[name]
		parent := ""
		if p := n.Parent(); p != nil {
			parent = p.Name()
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i),
			name,
			parent,
			formatVector(n.WorldPosition()),
			formatVector(n.WorldOrientation()),
			formatJoint(n.Constraint()),
		})
	}
	return t.Render()
}

// SolutionRow is one line of a solution table.
type SolutionRow struct {
	Tick     int
	Chain    string
	Target   r3.Vector
	Effector r3.Vector
	Solution *ik.Solution
}

// SolutionTable renders solve results, one row per chain and tick.
func SolutionTable(rows []SolutionRow) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Tick", "Chain", "Target", "Effector", "Converged", "Iterations", "Position error", "Orientation error"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Tick,
			row.Chain,
			formatVector(row.Target),
			formatVector(row.Effector),
			row.Solution.Converged,
			row.Solution.Iterations,
			fmt.Sprintf("%.6f", row.Solution.PositionError),
			fmt.Sprintf("%.6f", row.Solution.OrientationError),
		})
	}
	return t.Render()
}
