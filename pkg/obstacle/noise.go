package obstacle

import (
	"github.com/ojrac/opensimplex-go"
)

// NoiseConfig configures a fractal noise field
type NoiseConfig struct {
	Seed        int64   `json:"seed"`
	Frequency   float64 `json:"frequency"`
	Octaves     int     `json:"octaves"`
	Lacunarity  float64 `json:"lacunarity"`
	Persistence float64 `json:"persistence"`
}

// DefaultNoiseConfig returns the octave settings used for disk textures
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Seed:        0,
		Frequency:   0.05,
		Octaves:     6,
		Lacunarity:  2.0,
		Persistence: 0.8,
	}
}

// NoiseField is a multi-octave fractal built on OpenSimplex noise.
// Values lie in [-1, 1]. Safe for concurrent use.
type NoiseField struct {
	config NoiseConfig
	base   opensimplex.Noise
	norm   float64
}

// NewNoiseField creates a fractal noise field
func NewNoiseField(config NoiseConfig) *NoiseField {
	if config.Octaves < 1 {
		config.Octaves = 1
	}

	// Sum of octave amplitudes, so the result stays within [-1, 1]
	norm, amplitude := 0.0, 1.0
	for i := 0; i < config.Octaves; i++ {
		norm += amplitude
		amplitude *= config.Persistence
	}

	return &NoiseField{
		config: config,
		base:   opensimplex.New(config.Seed),
		norm:   norm,
	}
}

// Eval samples the field at (x, y)
func (n *NoiseField) Eval(x, y float64) float64 {
	sum := 0.0
	amplitude := 1.0
	frequency := n.config.Frequency
	for i := 0; i < n.config.Octaves; i++ {
		sum += amplitude * n.base.Eval2(x*frequency, y*frequency)
		amplitude *= n.config.Persistence
		frequency *= n.config.Lacunarity
	}
	return max(-1, min(1, sum/n.norm))
}
