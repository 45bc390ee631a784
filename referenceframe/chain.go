package referenceframe

import (
	"github.com/golang/geo/r3"

	spatial "go.viam.com/kinchain/spatialmath"
)

// Chain is an ordered run of linked nodes, base first, with an end effector fixed in the frame of
// the tip. Every node after the base is the child of the node before it. The chain refers to its
// nodes without owning them.
type Chain struct {
	nodes  []*Node
	offset r3.Vector
}

// NewChain validates that nodes form a parent linked run, base first, and returns a chain whose end
// effector sits at `offset` in the tip's local frame.
func NewChain(offset r3.Vector, nodes ...*Node) (*Chain, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyChain
	}
	if offset.Norm() < spatial.Epsilon {
		return nil, ErrZeroEffectorOffset
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].parent != nodes[i-1] {
			return nil, NewBrokenChainError(nodes[i].name, nodes[i-1].name)
		}
	}
	return &Chain{nodes: append([]*Node(nil), nodes...), offset: offset}, nil
}

// NewChainFromTip walks parent links up from tip until it reaches base.
func NewChainFromTip(base, tip *Node, offset r3.Vector) (*Chain, error) {
	if base == nil || tip == nil {
		return nil, ErrEmptyChain
	}
	nodes := []*Node{tip}
	for n := tip; n != base; {
		n = n.parent
		if n == nil {
			return nil, NewNotAncestorError(base.name, tip.name)
		}
		nodes = append(nodes, n)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return NewChain(offset, nodes...)
}

// Nodes returns the nodes of the chain, base first.
func (c *Chain) Nodes() []*Node {
	return append([]*Node(nil), c.nodes...)
}

// Len returns the number of nodes.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Node returns the i-th node from the base.
func (c *Chain) Node(i int) *Node {
	return c.nodes[i]
}

// Base returns the first node.
func (c *Chain) Base() *Node {
	return c.nodes[0]
}

// Tip returns the last node.
func (c *Chain) Tip() *Node {
	return c.nodes[len(c.nodes)-1]
}

// EffectorOffset returns the end effector position in the tip's local frame.
func (c *Chain) EffectorOffset() r3.Vector {
	return c.offset
}

// Contains reports whether n is one of the chain's nodes.
func (c *Chain) Contains(n *Node) bool {
	for _, m := range c.nodes {
		if m == n {
			return true
		}
	}
	return false
}

// EndEffectorWorldPosition returns the end effector in world space.
func (c *Chain) EndEffectorWorldPosition() r3.Vector {
	return c.Tip().InAbsSystem(c.offset)
}

// EndEffectorWorldOrientation returns the world orientation of the tip.
func (c *Chain) EndEffectorWorldOrientation() r3.Vector {
	return c.Tip().WorldOrientation()
}

// Reach returns the length of the chain in its current configuration: the distances between
// successive pivots plus the distance from the tip pivot to the end effector. Prismatic joints
// count at their current extension.
func (c *Chain) Reach() float64 {
	reach := 0.
	prev := c.nodes[0].Pivot()
	for _, n := range c.nodes[1:] {
		p := n.Pivot()
		reach += p.Sub(prev).Norm()
		prev = p
	}
	return reach + c.EndEffectorWorldPosition().Sub(prev).Norm()
}

// DoF returns the limits of every input of the chain, base first. Rotational nodes contribute their
// enabled euler components, prismatic nodes their enabled origin components and unconstrained nodes
// all three euler components.
func (c *Chain) DoF() []Limit {
	var dof []Limit
	for _, n := range c.nodes {
		dof = append(dof, nodeDoF(n)...)
	}
	return dof
}

// Inputs returns the current joint values, ordered like DoF.
func (c *Chain) Inputs() []Input {
	var inputs []Input
	for _, n := range c.nodes {
		src := n.euler
		if IsPrismatic(n) {
			src = n.origin
		}
		for _, axis := range nodeInputAxes(n) {
			inputs = append(inputs, Input{spatial.Component(src, axis)})
		}
	}
	return inputs
}

// SetInputs writes joint values ordered like DoF back onto the nodes. Values are applied as given,
// without clamping.
func (c *Chain) SetInputs(inputs []Input) error {
	if dof := len(c.DoF()); dof != len(inputs) {
		return NewIncorrectDoFError(len(inputs), dof)
	}
	i := 0
	for _, n := range c.nodes {
		prismatic := IsPrismatic(n)
		src := n.euler
		if prismatic {
			src = n.origin
		}
		for _, axis := range nodeInputAxes(n) {
			src = spatial.WithComponent(src, axis, inputs[i].Value)
			i++
		}
		if prismatic {
			n.SetOrigin(src)
		} else {
			n.SetEuler(src)
		}
	}
	return nil
}

// ClampToLimits moves every enabled axis of the chain's constrained nodes into its range. Poses
// already within range are left untouched.
func (c *Chain) ClampToLimits() {
	for _, n := range c.nodes {
		jc := n.constraint
		if jc == nil {
			continue
		}
		if jc.Type == Prismatic {
			if next := jc.Project(n.origin); next != n.origin {
				n.SetOrigin(next)
			}
			continue
		}
		if next := jc.Project(n.euler); next != n.euler {
			n.SetEuler(next)
		}
	}
}
