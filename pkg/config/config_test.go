package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwisim/internal/models"
	"dwisim/pkg/simulation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dwisim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestMissingFileUsesDefaults verifies the fallback to DefaultConfig
func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 0.1, cfg.Intensity.Rate)
	require.NotNil(t, cfg.Simulation.SNR)
	assert.Equal(t, 20.0, *cfg.Simulation.SNR)
}

// TestSaveLoadRoundTrip writes the defaults and reads them back
func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dwisim.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
simulation:
  snr: null
  seed: 12
  angles: [[0, 0]]
  fractions: [100]
scheme:
  bValues: [0, 1000, 1000]
  directions: [[0, 0, 0], [1, 0, 0], [0, 0, 1]]
intensity:
  rate: 0.25
output:
  logLevel: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Nil(t, cfg.Simulation.SNR)
	assert.Equal(t, uint64(12), cfg.Simulation.Seed)
	assert.Equal(t, 0.0015, cfg.Simulation.Diffusivity, "unset keys keep their defaults")
	assert.Equal(t, 0.25, cfg.Intensity.Rate)
	assert.Equal(t, "debug", cfg.Output.LogLevel)

	table := cfg.GradientTable()
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 1.0, table.Directions[2].Z)

	p, err := cfg.SimulationParams()
	require.NoError(t, err)
	assert.Nil(t, p.SNR)
	assert.NotNil(t, p.Src)
	assert.Equal(t, []models.Stick{{Polar: 0, Azimuth: 0, Fraction: 100}}, p.Sticks)

	res, err := simulation.SticksAndBall(table, p)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Signal[1], 1e-9)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"mismatched sticks": `
simulation:
  angles: [[0, 0], [90, 0]]
  fractions: [50]
`,
		"mismatched scheme": `
scheme:
  bValues: [0, 1000]
  directions: [[0, 0, 0]]
`,
		"negative b-value": `
scheme:
  bValues: [0, -1000]
  directions: [[0, 0, 0], [1, 0, 0]]
`,
		"malformed yaml": "simulation: [",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestBallOnlyConfig(t *testing.T) {
	path := writeConfig(t, `
simulation:
  angles: []
  fractions: []
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	p, err := cfg.SimulationParams()
	require.NoError(t, err)
	assert.Empty(t, p.Sticks)
}

// TestDefaultsIndependent verifies DefaultConfig returns fresh values
func TestDefaultsIndependent(t *testing.T) {
	a := DefaultConfig()
	a.Scheme.BValues[1] = 5
	*a.Simulation.SNR = 3

	b := DefaultConfig()
	assert.Equal(t, 1000.0, b.Scheme.BValues[1])
	assert.Equal(t, 20.0, *b.Simulation.SNR)
}
