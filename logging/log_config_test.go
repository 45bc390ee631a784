package logging

import (
	"strings"
	"testing"

	"go.viam.com/test"
)

func verifySetLevels(registry *Registry, expectedMatches map[string]string) bool {
	for name, level := range expectedMatches {
		logger, ok := registry.loggerNamed(name)
		if !ok || !strings.EqualFold(level, logger.GetLevel().String()) {
			return false
		}
	}
	return true
}

func createTestRegistry(loggerNames []string) *Registry {
	registry := NewRegistry()
	for _, name := range loggerNames {
		registry.GetOrRegister(name, NewBlankLogger(name))
	}
	return registry
}

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		isValid bool
	}{
		{"ccdsim.rig", true},
		{"ccdsim.rig.*", true},
		{"ccdsim.*.solver", true},
		{"*.solver", true},
		{"rail.leg-0", true},
		{"*", true},

		{"ccdsim..rig", false},
		{"ccdsim.rig.", false},
		{".ccdsim.rig", false},
		{"ccdsim.rig.**", false},
		{"_.ccdsim", false},
		{"ccdsim.-", false},
		{"ccdsim rig", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			test.That(t, ValidatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
		})
	}
}

func TestUpdateLoggerRegistry(t *testing.T) {
	tests := []struct {
		loggerConfig    []LoggerPatternConfig
		loggerNames     []string
		expectedMatches map[string]string
	}{
		{
			loggerConfig: []LoggerPatternConfig{{Pattern: "ccdsim.solver", Level: "WARN"}},
			loggerNames:  []string{"ccdsim.solver", "ccdsim.solver.leg-0", "ccdsim.runner"},
			expectedMatches: map[string]string{
				"ccdsim.solver":       "WARN",
				"ccdsim.solver.leg-0": "INFO",
				"ccdsim.runner":       "INFO",
			},
		},
		{
			loggerConfig: []LoggerPatternConfig{{Pattern: "ccdsim.*", Level: "debug"}},
			loggerNames:  []string{"ccdsim.solver", "ccdsim.rig.stewart"},
			expectedMatches: map[string]string{
				"ccdsim.solver":      "DEBUG",
				"ccdsim.rig.stewart": "DEBUG",
			},
		},
		{
			// Later patterns win.
			loggerConfig: []LoggerPatternConfig{
				{Pattern: "ccdsim.*", Level: "DEBUG"},
				{Pattern: "ccdsim.runner", Level: "ERROR"},
			},
			loggerNames:     []string{"ccdsim.runner"},
			expectedMatches: map[string]string{"ccdsim.runner": "ERROR"},
		},
		{
			loggerConfig:    []LoggerPatternConfig{{Pattern: "_.*.solver", Level: "DEBUG"}},
			loggerNames:     []string{"ccdsim.solver"},
			expectedMatches: map[string]string{"ccdsim.solver": "INFO"},
		},
	}

	for _, tc := range tests {
		testRegistry := createTestRegistry(tc.loggerNames)

		err := testRegistry.UpdateConfig(tc.loggerConfig, NewBlankLogger("warn-logger"))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, verifySetLevels(testRegistry, tc.expectedMatches), test.ShouldBeTrue)
	}
}

func TestUpdateLoggerRegistryBadLevel(t *testing.T) {
	registry := createTestRegistry([]string{"ccdsim"})
	err := registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "ccdsim", Level: "loud"}}, NewBlankLogger("warn"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestRegisterAppliesExistingConfig(t *testing.T) {
	registry := NewRegistry()
	err := registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "rail.*", Level: "error"}}, NewBlankLogger("warn"))
	test.That(t, err, test.ShouldBeNil)

	first := registry.GetOrRegister("rail.solver", NewBlankLogger("rail.solver"))
	test.That(t, first.GetLevel(), test.ShouldEqual, ERROR)

	second := registry.GetOrRegister("rail.solver", NewBlankLogger("rail.solver"))
	test.That(t, second, test.ShouldEqual, first)
	test.That(t, registry.RegisteredNames(), test.ShouldResemble, []string{"rail.solver"})
}
