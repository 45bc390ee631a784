package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"ccdsim"}, args...))
	return out.String(), errOut.String(), err
}

var armConfig = filepath.Join("..", "etc", "configs", "arm.yaml")

func TestShow(t *testing.T) {
	out, _, err := runApp(t, "--config", armConfig, "show")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "seg2")
	test.That(t, out, test.ShouldContainSubstring, "rotational")

	_, _, err = runApp(t, "show")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--config")
}

func TestSolve(t *testing.T) {
	out, _, err := runApp(t, "--config", armConfig, "solve",
		"--target", "1", "--target", "2", "--target", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "arm")
	test.That(t, out, test.ShouldContainSubstring, "seg0")

	_, _, err = runApp(t, "--config", armConfig, "solve", "--target", "1", "--target", "2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exactly 3 values")

	_, _, err = runApp(t, "--config", armConfig, "solve", "--chain", "nope",
		"--target", "1", "--target", "2", "--target", "2")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSolveDebugLogs(t *testing.T) {
	_, logs, err := runApp(t, "--debug", "--config", armConfig, "solve", "--iterations", "3",
		"--target", "1", "--target", "2", "--target", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs, test.ShouldContainSubstring, "ccd sweep")
}

func TestRail(t *testing.T) {
	out, _, err := runApp(t, "rail", "--ticks", "20", "--target-every", "5", "--rows", "3", "--orient")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "rail: 20 ticks")
	test.That(t, out, test.ShouldContainSubstring, "19")

	for _, flag := range []string{"--rows", "--ticks"} {
		_, _, err = runApp(t, "rail", "--ticks", "2", flag, "-1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "must not be negative")
	}

	out, _, err = runApp(t, "rail", "--ticks", "2", "--rows", "0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "rail: 2 ticks")
}

func TestStewart(t *testing.T) {
	out, logs, err := runApp(t, "stewart", "--ticks", "5", "--rows", "6")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "leg_5")
	test.That(t, out, test.ShouldContainSubstring, "stewart: 5 ticks")
	test.That(t, logs, test.ShouldContainSubstring, "simulation finished")
}
