package gtpc

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Configuration holds every parameter of a drift simulation run. It is read
// once and passed by value to the producers, which never modify it.
//
// Units: cm, ns, GeV, V/m. Magnetic fields are given in the units of the
// field map (kG for the GLAD map) and converted with FieldToTesla.
type Configuration struct {
	// Gas
	EIonization   float64 `json:"e_ionization" toml:"e_ionization"`     // [GeV]
	DriftVelocity float64 `json:"drift_velocity" toml:"drift_velocity"` // [cm/ns]
	TransDiff     float64 `json:"trans_diff" toml:"trans_diff"`         // [cm^2/ns]
	LongDiff      float64 `json:"long_diff" toml:"long_diff"`           // [cm^2/ns]
	FanoFactor    float64 `json:"fano_factor" toml:"fano_factor"`

	// Geometry
	HalfSizeX float64 `json:"half_size_x" toml:"half_size_x"` // [cm]
	HalfSizeY float64 `json:"half_size_y" toml:"half_size_y"` // [cm]
	HalfSizeZ float64 `json:"half_size_z" toml:"half_size_z"` // [cm]
	OffsetX   float64 `json:"offset_x" toml:"offset_x"`       // first pad column in the lab frame [cm]
	OffsetZ   float64 `json:"offset_z" toml:"offset_z"`       // first pad row in the lab frame [cm]
	PadSize   float64 `json:"pad_size" toml:"pad_size"`       // [cm]

	// Electronics
	DriftEField   float64    `json:"drift_e_field" toml:"drift_e_field"`     // [V/m]
	DriftTimeStep float64    `json:"drift_time_step" toml:"drift_time_step"` // [ns]
	MaxDriftSteps int        `json:"max_drift_steps" toml:"max_drift_steps"`
	TimeBinSize   float64    `json:"time_bin_size" toml:"time_bin_size"` // [ns]
	NumTimeBins   int        `json:"num_time_bins" toml:"num_time_bins"`
	OutputMode    OutputMode `json:"output_mode" toml:"output_mode"`

	// Magnetic field
	FieldToTesla float64    `json:"field_to_tesla" toml:"field_to_tesla"`
	FieldScale   float64    `json:"field_scale" toml:"field_scale"`
	Field        [3]float64 `json:"field" toml:"field"`               // constant field, field-map units
	FieldRegion  [6]float64 `json:"field_region" toml:"field_region"` // xmin, xmax, ymin, ymax, zmin, zmax [cm]

	// Laser
	Laser LaserParameters `json:"laser" toml:"laser"`

	// Run
	Seed      uint64 `json:"seed" toml:"seed"`
	MaxEvents int    `json:"max_events" toml:"max_events"`
	Skip      int    `json:"skip" toml:"skip"`
	Verbosity int    `json:"verbosity" toml:"verbosity"`
	FileIn    string `json:"file_in" toml:"file_in"`
	FileOut   string `json:"file_out" toml:"file_out"`

	// Output
	CompressionLevel int `json:"compression_level" toml:"compression_level"`

	// Parameter database
	NoDB      bool   `json:"no_db" toml:"no_db"`
	RunNumber int    `json:"run_number" toml:"run_number"`
	Host      string `json:"host" toml:"host"`
	User      string `json:"user" toml:"user"`
	Passwd    string `json:"pass" toml:"pass"`
	DBName    string `json:"dbname" toml:"dbname"`
}

// LaserParameters describes the synthetic calibration ray.
type LaserParameters struct {
	Alpha             float64 `json:"alpha" toml:"alpha"` // [deg]
	Beta              float64 `json:"beta" toml:"beta"`   // [deg]
	XIn               float64 `json:"x_in" toml:"x_in"`   // [cm]
	YIn               float64 `json:"y_in" toml:"y_in"`   // [cm]
	ZIn               float64 `json:"z_in" toml:"z_in"`   // [cm]
	NumRayPoints      int     `json:"num_ray_points" toml:"num_ray_points"`
	ElectronsPerPoint int     `json:"electrons_per_point" toml:"electrons_per_point"`
	PadsPerCm         float64 `json:"pads_per_cm" toml:"pads_per_cm"`
	TargetAngle       float64 `json:"target_angle" toml:"target_angle"`             // [deg]
	FieldMapOffsetZ   float64 `json:"field_map_offset_z" toml:"field_map_offset_z"` // [cm]
}

// DefaultConfiguration returns the prototype chamber values.
func DefaultConfiguration() Configuration {
	return Configuration{
		EIonization:   15.e-9,
		DriftVelocity: 0.0048,
		TransDiff:     0.00000216,
		LongDiff:      0.00000216,
		FanoFactor:    2,

		HalfSizeX: 4.4,
		HalfSizeY: 14.7,
		HalfSizeZ: 12.8,
		PadSize:   0.2,

		DriftEField:   10000,
		DriftTimeStep: 100,
		MaxDriftSteps: 100000,
		TimeBinSize:   15,
		NumTimeBins:   512,
		OutputMode:    CalDataOutput,

		FieldToTesla: 0.1,
		FieldScale:   1,
		FieldRegion:  [6]float64{-200, 200, -100, 100, -150, 450},

		Laser: LaserParameters{
			Alpha:             11.67,
			Beta:              1.36,
			YIn:               24.312,
			ZIn:               6.98,
			NumRayPoints:      2,
			ElectronsPerPoint: 100,
			PadsPerCm:         5,
			TargetAngle:       14,
			FieldMapOffsetZ:   263.4,
		},

		Seed:      4357,
		MaxEvents: 1000000000,

		CompressionLevel: 4,

		NoDB:   true,
		Host:   "localhost",
		User:   "gtpcreader",
		Passwd: "readonly",
		DBName: "GTPC",
	}
}

// LaserConfiguration returns the default values of the laser generator,
// which stores projected points.
func LaserConfiguration() Configuration {
	config := DefaultConfiguration()
	config.OutputMode = ProjPointOutput
	return config
}

// LoadConfiguration reads a JSON or TOML file over the default values. The
// format is chosen from the file extension.
func LoadConfiguration(filename string) (Configuration, error) {
	return LoadConfigurationOver(filename, DefaultConfiguration())
}

// LoadConfigurationOver reads a JSON or TOML file over config. Values missing
// from the file are kept.
func LoadConfigurationOver(filename string, config Configuration) (Configuration, error) {

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error decoding configuration %q: %w", filename, err)
	}
	return config, nil
}

// Validate checks the parameters the producers divide by or loop on.
func (c Configuration) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"e_ionization", c.EIonization},
		{"drift_velocity", c.DriftVelocity},
		{"half_size_x", c.HalfSizeX},
		{"half_size_y", c.HalfSizeY},
		{"half_size_z", c.HalfSizeZ},
		{"drift_e_field", c.DriftEField},
		{"drift_time_step", c.DriftTimeStep},
		{"time_bin_size", c.TimeBinSize},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return &ConfigError{Field: p.name, Reason: fmt.Sprintf("must be positive, got %v", p.value)}
		}
	}
	if c.TransDiff < 0 || c.LongDiff < 0 {
		return &ConfigError{Field: "diffusion", Reason: "coefficients must not be negative"}
	}
	if c.FanoFactor < 0 {
		return &ConfigError{Field: "fano_factor", Reason: "must not be negative"}
	}
	if c.NumTimeBins <= 0 || c.NumTimeBins > math.MaxUint16 {
		return &ConfigError{Field: "num_time_bins", Reason: fmt.Sprintf("out of range: %d", c.NumTimeBins)}
	}
	if c.MaxDriftSteps <= 0 {
		return &ConfigError{Field: "max_drift_steps", Reason: "must be positive"}
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return &ConfigError{Field: "compression_level", Reason: fmt.Sprintf("out of range: %d", c.CompressionLevel)}
	}
	if c.OutputMode != CalDataOutput && c.OutputMode != ProjPointOutput {
		return &ConfigError{Field: "output_mode", Reason: "unknown mode"}
	}
	return nil
}

// OutputMode selects the shape of the per-pad records of a run.
type OutputMode int

const (
	CalDataOutput OutputMode = iota
	ProjPointOutput
)

var outputModeStrings = []string{
	"caldata",
	"projpoint",
}

func (m OutputMode) String() string {
	if m < CalDataOutput || m > ProjPointOutput {
		return "UNKNOWN"
	}
	return outputModeStrings[m]
}

func (m OutputMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *OutputMode) UnmarshalText(data []byte) error {
	s := string(data)
	for i, v := range outputModeStrings {
		if v == s {
			*m = OutputMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid OutputMode: %s", s)
}
