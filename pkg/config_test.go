package gtpc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigurationIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfiguration().Validate())
}

func TestLoadConfigurationJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"drift_velocity": 0.005,
		"output_mode": "projpoint",
		"laser": {"alpha": 0, "num_ray_points": 7},
		"pass": "secret"
	}`)
	config, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, 0.005, config.DriftVelocity)
	assert.Equal(t, ProjPointOutput, config.OutputMode)
	assert.Equal(t, 0., config.Laser.Alpha)
	assert.Equal(t, 7, config.Laser.NumRayPoints)
	assert.Equal(t, "secret", config.Passwd)
	// untouched values keep their defaults
	assert.Equal(t, 15.e-9, config.EIonization)
	assert.Equal(t, 1.36, config.Laser.Beta)
}

func TestLoadConfigurationOver(t *testing.T) {
	config := LaserConfiguration()
	assert.Equal(t, ProjPointOutput, config.OutputMode)
	assert.NoError(t, config.Validate())

	path := writeFile(t, "laser.json", `{"laser": {"num_ray_points": 3}}`)
	config, err := LoadConfigurationOver(path, LaserConfiguration())
	require.NoError(t, err)
	assert.Equal(t, ProjPointOutput, config.OutputMode)
	assert.Equal(t, 3, config.Laser.NumRayPoints)

	path = writeFile(t, "laser.toml", `output_mode = "caldata"`)
	config, err = LoadConfigurationOver(path, LaserConfiguration())
	require.NoError(t, err)
	assert.Equal(t, CalDataOutput, config.OutputMode)
}

func TestLoadConfigurationTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
half_size_y = 10.0
num_time_bins = 256
output_mode = "caldata"
field = [0.0, 10.0, 0.0]

[laser]
electrons_per_point = 10000
`)
	config, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, 10., config.HalfSizeY)
	assert.Equal(t, 256, config.NumTimeBins)
	assert.Equal(t, CalDataOutput, config.OutputMode)
	assert.Equal(t, [3]float64{0, 10, 0}, config.Field)
	assert.Equal(t, 10000, config.Laser.ElectronsPerPoint)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	var openErr *ErrOpenFile
	assert.True(t, errors.As(err, &openErr))

	path := writeFile(t, "bad.json", `{"output_mode": "raw"}`)
	_, err = LoadConfiguration(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name   string
		modify func(*Configuration)
		field  string
	}
	tests := []testCase{
		{"zero ionization energy", func(c *Configuration) { c.EIonization = 0 }, "e_ionization"},
		{"negative drift velocity", func(c *Configuration) { c.DriftVelocity = -1 }, "drift_velocity"},
		{"zero time bin", func(c *Configuration) { c.TimeBinSize = 0 }, "time_bin_size"},
		{"negative diffusion", func(c *Configuration) { c.LongDiff = -1 }, "diffusion"},
		{"negative fano", func(c *Configuration) { c.FanoFactor = -1 }, "fano_factor"},
		{"too many time bins", func(c *Configuration) { c.NumTimeBins = 70000 }, "num_time_bins"},
		{"no drift steps", func(c *Configuration) { c.MaxDriftSteps = 0 }, "max_drift_steps"},
		{"unknown mode", func(c *Configuration) { c.OutputMode = OutputMode(3) }, "output_mode"},
	}
	check := func(t *testing.T, tc testCase) {
		config := DefaultConfiguration()
		tc.modify(&config)
		var configErr *ConfigError
		require.True(t, errors.As(config.Validate(), &configErr))
		assert.Equal(t, tc.field, configErr.Field)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) { check(t, tc) })
	}
}

func TestOutputModeText(t *testing.T) {
	assert.Equal(t, "caldata", CalDataOutput.String())
	assert.Equal(t, "projpoint", ProjPointOutput.String())
	assert.Equal(t, "UNKNOWN", OutputMode(5).String())

	var m OutputMode
	require.NoError(t, m.UnmarshalText([]byte("projpoint")))
	assert.Equal(t, ProjPointOutput, m)
	assert.Error(t, m.UnmarshalText([]byte("adc")))
}
