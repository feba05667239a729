// Package noise provides 2-D samplers for heightmap seeding.
package noise

import (
	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/voxel-terrain/internal/config"
)

// Sampler2D returns a height sample in [-1, 1] for a world column.
type Sampler2D interface {
	Sample(x, z float64) float64
}

// SamplerFunc adapts a function to Sampler2D.
type SamplerFunc func(x, z float64) float64

// Sample calls f.
func (f SamplerFunc) Sample(x, z float64) float64 { return f(x, z) }

// Perlin samples octave Perlin noise.
type Perlin struct {
	gen   *perlin.Perlin
	scale float64
}

// NewPerlin creates a sampler. alpha is the weight falloff between octaves,
// beta the frequency step, octaves the octave count; scale maps world units
// into noise space.
func NewPerlin(alpha, beta float64, octaves int32, seed int64, scale float64) *Perlin {
	return &Perlin{
		gen:   perlin.NewPerlin(alpha, beta, octaves, seed),
		scale: scale,
	}
}

// FromConfig creates a sampler from the noise section.
func FromConfig(cfg config.NoiseConfig) *Perlin {
	return NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed, cfg.Scale)
}

// Sample implements Sampler2D. Octave sums can overshoot, so the result is
// clamped.
func (p *Perlin) Sample(x, z float64) float64 {
	n := p.gen.Noise2D(x*p.scale, z*p.scale)
	return min(max(n, -1), 1)
}
