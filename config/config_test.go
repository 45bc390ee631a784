package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/referenceframe"
)

func TestReadExampleConfigs(t *testing.T) {
	arm, err := Read(filepath.Join("..", "etc", "configs", "arm.yaml"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm.Name, test.ShouldEqual, "arm")
	test.That(t, arm.Nodes, test.ShouldHaveLength, 3)
	test.That(t, arm.Nodes[1].Parent, test.ShouldEqual, "seg0")
	test.That(t, arm.Nodes[1].Joint.Enabled, test.ShouldResemble, [3]bool{true, true, false})
	test.That(t, arm.Chains[0].EffectorOffset.R3(), test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, arm.Solver.Options().Iterations, test.ShouldEqual, 20)
	test.That(t, arm.Log, test.ShouldHaveLength, 1)
	test.That(t, arm.ConfigFilePath, test.ShouldEndWith, "arm.yaml")

	leg, err := Read(filepath.Join("..", "etc", "configs", "leg.json"))
	test.That(t, err, test.ShouldBeNil)
	jc, err := leg.Nodes[2].Joint.ParseConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jc.Type, test.ShouldEqual, referenceframe.Prismatic)
	lim, ok := jc.Bounds(2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lim, test.ShouldResemble, referenceframe.Limit{Min: 0, Max: 1.5})
	// unset thresholds fall back to the solver defaults
	test.That(t, leg.Solver.Options().PositionThreshold, test.ShouldEqual, 0.001)
}

func TestUnmarshalFormats(t *testing.T) {
	_, err := Unmarshal([]byte(`name: x`), "toml")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported config format")

	cfg, err := FromReader(strings.NewReader(`{"name": "solo", "nodes": [{"name": "a"}]}`), ".JSON")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Nodes[0].Name, test.ShouldEqual, "a")

	_, err = Unmarshal([]byte(`{"name": "solo", "bogus": 1}`), "json")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Unmarshal([]byte("name: solo\nbogus: 1\n"), "yml")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)

	path := filepath.Join(t.TempDir(), "rig.yml")
	test.That(t, os.WriteFile(path, []byte("name: r\nnodes:\n  - name: a\n"), 0o600), test.ShouldBeNil)
	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
}

func TestValidateAggregates(t *testing.T) {
	negative := -1.
	cfg := &Config{
		Nodes: []NodeConfig{
			{Name: "a"},
			{Name: "a"},
			{Name: World},
			{Name: "b", Parent: "ghost"},
			{Name: "c", Joint: &JointConfig{Type: "screw"}},
			{Name: "d", Joint: &JointConfig{Type: "prismatic", MaxDeviation: Vector{X: -1}}},
		},
		Chains: []ChainConfig{
			{Name: "arm", Base: "a", Tip: "nowhere"},
			{Name: "arm", Base: "a", Tip: "a", EffectorOffset: Vector{Z: 1}},
		},
		Solver: SolverConfig{PositionThreshold: &negative},
		Log:    []logging.LoggerPatternConfig{{Pattern: "bad pattern!", Level: "loud"}},
	}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	for _, msg := range []string{
		`node name "a" is not unique`,
		`"world" is reserved`,
		`unknown parent "ghost"`,
		`unknown joint type`,
		`axis 0`,
		`chain name "arm" is not unique`,
		`unknown node "nowhere"`,
		`non-zero effector offset`,
		`position threshold`,
		`invalid log pattern`,
		`unknown log level`,
	} {
		test.That(t, err.Error(), test.ShouldContainSubstring, msg)
	}
}

func TestValidateInitialPose(t *testing.T) {
	yaw := &JointConfig{Type: "rotational", Enabled: [3]bool{false, true, false}, MaxDeviation: Vector{Y: 45}}
	piston := &JointConfig{
		Type:         "prismatic",
		Enabled:      [3]bool{false, false, true},
		Center:       Vector{Z: 0.75},
		MaxDeviation: Vector{Z: 0.75},
	}

	turned := Vector{Y: 90}
	err := NodeConfig{Name: "wrist", Euler: &turned, Joint: yaw}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `initial pose of "wrist"`)

	err = NodeConfig{Name: "leg", Origin: Vector{Z: 2}, Joint: piston}.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside the joint range [0, 1.5]")

	// origins of rotational joints and unset eulers are not limited here
	test.That(t, NodeConfig{Name: "wrist", Origin: Vector{Z: 9}, Joint: yaw}.Validate(), test.ShouldBeNil)
	test.That(t, NodeConfig{Name: "leg", Origin: Vector{Z: 1.5}, Joint: piston}.Validate(), test.ShouldBeNil)
}

func TestSortNodes(t *testing.T) {
	sorted, err := SortNodes([]NodeConfig{
		{Name: "tip", Parent: "mid"},
		{Name: "mid", Parent: "root"},
		{Name: "root", Parent: World},
		{Name: "other"},
	})
	test.That(t, err, test.ShouldBeNil)
	names := make([]string, 0, len(sorted))
	for _, n := range sorted {
		names = append(names, n.Name)
	}
	test.That(t, names, test.ShouldResemble, []string{"root", "mid", "tip", "other"})

	_, err = SortNodes([]NodeConfig{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "circular parent links between a, b")
}
