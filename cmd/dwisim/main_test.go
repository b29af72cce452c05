package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// runCmd executes the root command with args and returns stdout and stderr
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// isolatedConfig returns a config path inside a temp directory that does
// not exist yet, so defaults apply
func isolatedConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "dwisim.yaml")
}

func TestVersion(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestSimulateNoNoise(t *testing.T) {
	out, _, err := runCmd(t, "simulate", "--config", isolatedConfig(t), "--no-noise", "--yaml")
	require.NoError(t, err)

	var report simulationReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))

	require.Len(t, report.Samples, 7)
	require.Len(t, report.Sticks, 2)
	assert.Equal(t, 100.0, report.Samples[0].Signal)
	assert.InDelta(t, 0.3, report.BallFraction, 1e-9)
	for _, s := range report.Samples[1:] {
		assert.Less(t, s.Signal, 100.0)
		assert.Greater(t, s.Signal, 0.0)
	}
}

func TestSimulateSeeded(t *testing.T) {
	cfg := isolatedConfig(t)
	first, _, err := runCmd(t, "simulate", "--config", cfg, "--seed", "3", "--snr", "10")
	require.NoError(t, err)
	second, _, err := runCmd(t, "simulate", "--config", cfg, "--seed", "3", "--snr", "10")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "Ball fraction: 0.300")
}

func TestSimulateRejectsZeroSNR(t *testing.T) {
	_, _, err := runCmd(t, "simulate", "--config", isolatedConfig(t), "--snr", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNR")
}

func TestBoundPhantom(t *testing.T) {
	out, _, err := runCmd(t, "bound", "--config", isolatedConfig(t), "--histogram")
	require.NoError(t, err)
	assert.Contains(t, out, "low:  0\n")
	assert.Contains(t, out, "high: 102\n")
	assert.Contains(t, out, "14080")

	out, _, err = runCmd(t, "bound", "--config", isolatedConfig(t), "--rate", "0.001")
	require.NoError(t, err)
	assert.Contains(t, out, "high: 255\n")
}

// TestBoundRender writes the phantom, reads it back and renders the
// comparison images
func TestBoundRender(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dwisim.yaml")
	outDir := filepath.Join(dir, "render")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  dir: "+outDir+"\n"), 0644))

	phantom := filepath.Join(dir, "phantom.png")
	_, _, err := runCmd(t, "phantom", "--config", cfgPath, "--out", phantom)
	require.NoError(t, err)

	out, _, err := runCmd(t, "bound", phantom, "--config", cfgPath, "--render")
	require.NoError(t, err)
	assert.Contains(t, out, "high: 102\n")

	for _, name := range []string{"original.png", "rescaled.png"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestBoundMissingImage(t *testing.T) {
	_, _, err := runCmd(t, "bound", filepath.Join(t.TempDir(), "nope.png"), "--config", isolatedConfig(t))
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	cfg := isolatedConfig(t)

	out, _, err := runCmd(t, "config", "init", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, cfg)

	_, _, err = runCmd(t, "config", "init", "--config", cfg)
	assert.Error(t, err, "refuses to overwrite")

	_, _, err = runCmd(t, "config", "init", "--config", cfg, "--force")
	assert.NoError(t, err)

	out, _, err = runCmd(t, "config", "show", "--config", cfg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "diffusivity: 0.0015"), out)
}

func TestDebugLogging(t *testing.T) {
	_, logs, err := runCmd(t, "bound", "--config", isolatedConfig(t), "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, logs, "bounds estimated")
}
