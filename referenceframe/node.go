// Package referenceframe defines the transform hierarchy that kinematic chains are built from:
// nodes with a local pose and a non-owning parent link, the joint limits attached to them, and
// chains of nodes ending in an end effector.
package referenceframe

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/kinchain/spatialmath"
)

// Node is one rigid segment of a transform hierarchy. Its local matrix is
//
//	T(origin) * R(euler) * S(scale) * T(-axis)
//
// so `axis` is the pivot, in the node's own unscaled frame, that rotation and scale happen about.
// The world matrix is the parent's world matrix times the local matrix. Both are cached and
// recomputed lazily after any mutation of the node or one of its ancestors.
//
// The parent link does not own the parent; whoever builds the scene keeps every node alive. A Node
// is not safe for concurrent use, including concurrent reads while its caches are dirty.
type Node struct {
	name string

	origin r3.Vector
	euler  r3.Vector
	scale  r3.Vector
	axis   r3.Vector

	constraint *JointConstraint

	parent   *Node
	children []*Node

	local      mgl64.Mat4
	world      mgl64.Mat4
	localDirty bool
	dirty      bool
}

// NewNode returns a root node at the origin with unit scale.
func NewNode(name string) *Node {
	return &Node{
		name:       name,
		scale:      r3.Vector{X: 1, Y: 1, Z: 1},
		localDirty: true,
		dirty:      true,
	}
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// Origin returns the local translation.
func (n *Node) Origin() r3.Vector {
	return n.origin
}

// Euler returns the local rotation in degrees.
func (n *Node) Euler() r3.Vector {
	return n.euler
}

// Scale returns the local scale.
func (n *Node) Scale() r3.Vector {
	return n.scale
}

// Axis returns the local pivot.
func (n *Node) Axis() r3.Vector {
	return n.axis
}

// SetOrigin sets the local translation.
func (n *Node) SetOrigin(v r3.Vector) {
	n.origin = v
	n.markLocalDirty()
}

// SetEuler sets the local rotation in degrees.
func (n *Node) SetEuler(v r3.Vector) {
	n.euler = v
	n.markLocalDirty()
}

// SetScale sets the local scale.
func (n *Node) SetScale(v r3.Vector) {
	n.scale = v
	n.markLocalDirty()
}

// SetAxis sets the local pivot.
func (n *Node) SetAxis(v r3.Vector) {
	n.axis = v
	n.markLocalDirty()
}

// Constraint returns the joint limits of the node, nil for a free rotational joint.
func (n *Node) Constraint() *JointConstraint {
	return n.constraint
}

// SetConstraint attaches joint limits to the node. The current pose is not checked; see
// CheckConstraint and Chain.ClampToLimits.
func (n *Node) SetConstraint(c *JointConstraint) {
	n.constraint = c
}

// CheckConstraint returns an error when the node's pose lies outside its joint limits.
func (n *Node) CheckConstraint() error {
	if n.constraint == nil {
		return nil
	}
	v := n.euler
	if n.constraint.Type == Prismatic {
		v = n.origin
	}
	return errors.Wrapf(n.constraint.CheckPose(v), "node %q", n.name)
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the nodes linked to this one.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

func (n *Node) markLocalDirty() {
	n.localDirty = true
	n.markDirty()
}

// markDirty invalidates the world matrix of n and its descendants. A clean node never has a dirty
// ancestor, so reaching a node that is already dirty means its subtree is dirty too.
func (n *Node) markDirty() {
	if n.dirty {
		return
	}
	n.dirty = true
	for _, child := range n.children {
		child.markDirty()
	}
}

// LocalMatrix returns the node's transform relative to its parent.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	if n.localDirty {
		n.local = mgl64.Translate3D(n.origin.X, n.origin.Y, n.origin.Z).
			Mul4(spatial.RotationMatrix(n.euler)).
			Mul4(mgl64.Scale3D(n.scale.X, n.scale.Y, n.scale.Z)).
			Mul4(mgl64.Translate3D(-n.axis.X, -n.axis.Y, -n.axis.Z))
		n.localDirty = false
	}
	return n.local
}

// WorldMatrix returns the node's transform relative to the root of its hierarchy.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	if n.dirty {
		if n.parent != nil {
			n.world = n.parent.WorldMatrix().Mul4(n.LocalMatrix())
		} else {
			n.world = n.LocalMatrix()
		}
		n.dirty = false
	}
	return n.world
}

// ParentWorldMatrix returns the parent's world matrix, identity for roots.
func (n *Node) ParentWorldMatrix() mgl64.Mat4 {
	if n.parent == nil {
		return mgl64.Ident4()
	}
	return n.parent.WorldMatrix()
}

// WorldPosition returns the translation of the world matrix.
func (n *Node) WorldPosition() r3.Vector {
	return spatial.Translation(n.WorldMatrix())
}

// WorldOrientation returns the world rotation, with scale removed, as an euler vector.
func (n *Node) WorldOrientation() r3.Vector {
	_, euler, _ := spatial.Decompose(n.WorldMatrix())
	return euler
}

// InAbsSystem transforms a point in the node's local frame to world space.
func (n *Node) InAbsSystem(local r3.Vector) r3.Vector {
	return spatial.TransformPoint(n.WorldMatrix(), local)
}

// Pivot returns the world position of the node's rotation pivot.
func (n *Node) Pivot() r3.Vector {
	return n.InAbsSystem(n.axis)
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// LinkParent sets the parent of the node; nil detaches it. With preserveWorldPose the local origin,
// euler and scale are recomputed so the world pose is the same right after linking, which lets
// nodes authored in world space be attached without jumping.
func (n *Node) LinkParent(parent *Node, preserveWorldPose bool) error {
	if parent == n || (parent != nil && n.IsAncestorOf(parent)) {
		return errors.Wrapf(ErrCircularReference, "linking %q under %q", n.name, parent.name)
	}

	var world mgl64.Mat4
	if preserveWorldPose {
		world = n.WorldMatrix()
	}

	if n.parent != nil {
		siblings := n.parent.children
		for i, c := range siblings {
			if c == n {
				n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}

	if preserveWorldPose {
		// local = parentWorld^-1 * world, and the translation of T(o)*R*S*T(-a) is o - R*S*a.
		rel := n.ParentWorldMatrix().Inv().Mul4(world)
		_, euler, scale := spatial.Decompose(rel)
		n.origin = spatial.TransformPoint(rel, n.axis)
		n.euler = euler
		n.scale = scale
		n.localDirty = true
	}
	n.markDirty()
	return nil
}
