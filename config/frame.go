package config

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/kinchain/referenceframe"
)

// Vector is a position, euler rotation in degrees, or scale.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// R3 converts the vector.
func (v Vector) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// NodeConfig describes one transform node. Scale and Axis shape the node before it is linked;
// Origin, and Euler when given, are local values set after linking. With PreserveWorldPose the
// link keeps the node's pre-link world pose, which carries a parent's scale and rotation into the
// node the way segments authored in world space are attached.
type NodeConfig struct {
	Name              string       `json:"name" yaml:"name"`
	Parent            string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Origin            Vector       `json:"origin" yaml:"origin"`
	Euler             *Vector      `json:"euler,omitempty" yaml:"euler,omitempty"`
	Scale             *Vector      `json:"scale,omitempty" yaml:"scale,omitempty"`
	Axis              Vector       `json:"axis" yaml:"axis"`
	PreserveWorldPose bool         `json:"preserve_world_pose,omitempty" yaml:"preserve_world_pose,omitempty"`
	Joint             *JointConfig `json:"joint,omitempty" yaml:"joint,omitempty"`
}

// Validate checks the node on its own; links between nodes are checked by Config.Validate.
func (n NodeConfig) Validate() error {
	if n.Name == "" {
		return errors.New("node name is required")
	}
	if n.Name == World {
		return errors.Errorf("node name %q is reserved", World)
	}
	if n.Joint == nil {
		return nil
	}
	jc, err := n.Joint.ParseConfig()
	if err != nil {
		return errors.Wrapf(err, "joint of %q", n.Name)
	}
	// a missing euler is derived when the node is linked and checked then
	switch {
	case jc.Type == referenceframe.Prismatic:
		err = jc.CheckPose(n.Origin.R3())
	case n.Euler != nil:
		err = jc.CheckPose(n.Euler.R3())
	}
	return errors.Wrapf(err, "initial pose of %q", n.Name)
}

// JointConfig describes joint limits. Enabled is indexed X, Y, Z.
type JointConfig struct {
	Type         string  `json:"type" yaml:"type"`
	Enabled      [3]bool `json:"enabled" yaml:"enabled"`
	Center       Vector  `json:"center" yaml:"center"`
	MaxDeviation Vector  `json:"max_deviation" yaml:"max_deviation"`
}

// ParseConfig converts the config into a joint constraint.
func (jc *JointConfig) ParseConfig() (*referenceframe.JointConstraint, error) {
	jointType, err := referenceframe.ParseJointType(jc.Type)
	if err != nil {
		return nil, err
	}
	return referenceframe.NewJointConstraint(jointType, jc.Enabled, jc.Center.R3(), jc.MaxDeviation.R3())
}
