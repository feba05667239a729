package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/config"
	"github.com/Faultbox/voxel-terrain/internal/noise"
)

// EditMode selects whether an edit removes or adds material.
type EditMode uint8

const (
	ModeDig EditMode = iota
	ModeFill
)

func (m EditMode) String() string {
	switch m {
	case ModeDig:
		return "dig"
	case ModeFill:
		return "fill"
	default:
		return fmt.Sprintf("EditMode(%d)", uint8(m))
	}
}

// Dig lowers the samples in the edit sphere around point.
func (t *Terrain) Dig(point mgl32.Vec3) (int, error) {
	return t.Edit(point, ModeDig)
}

// Fill raises the samples in the edit sphere around point.
func (t *Terrain) Fill(point mgl32.Vec3) (int, error) {
	return t.Edit(point, ModeFill)
}

// Edit applies a sphere edit of the configured radius and power at world
// point. Every sample within radius moves by the power, down for ModeDig
// and up for ModeFill, clamped to [ValueMin, ValueMax]. The sample range is
// clipped to the field, so edits near or past the border are safe. It
// returns the number of samples written.
func (t *Terrain) Edit(point mgl32.Vec3, mode EditMode) (int, error) {
	r := t.edit.Radius
	cs := t.table.CellSize(0)
	delta := t.edit.Power
	if mode == ModeDig {
		delta = -delta
	}

	var lo, hi [3]int
	for a := range 3 {
		lo[a] = max(int(math.Floor(float64((point[a]-r)/cs))), 0)
		hi[a] = min(int(math.Ceil(float64((point[a]+r)/cs))), t.size[a])
		if lo[a] > hi[a] {
			return 0, nil
		}
	}

	origin := t.resampler.Origin()
	written := 0
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				p := mgl32.Vec3{float32(x) * cs, float32(y) * cs, float32(z) * cs}
				if p.Sub(point).Len() > r {
					continue
				}
				v := t.clamp(origin.At(x, y, z) + delta)
				if err := t.Set(x, y, z, v); err != nil {
					return written, fmt.Errorf("%s at %v: %w", mode, point, err)
				}
				written++
			}
		}
	}

	t.metrics.Edited()
	t.metrics.SetDirtyChunks(t.DirtyCount())
	t.log.Debug("terrain edited",
		zap.Stringer("mode", mode),
		zap.Float32s("point", point[:]),
		zap.Int("samples", written))
	return written, nil
}

func (t *Terrain) clamp(v float32) float32 {
	return min(max(v, t.cfg.ValueMin), t.cfg.ValueMax)
}

// Seed fills the field from a heightmap. Each column's height is
// (s+1)/2 of the field's vertical cell count, and a sample at row y gets
// height-y, clamped to the value range: solid below the surface, open
// above, with a linear band at the surface. Chunks above level 0 are
// resampled afterwards.
func (t *Terrain) Seed(s noise.Sampler2D) error {
	cs := float64(t.table.CellSize(0))
	axisY := float32(t.size[1])

	for z := 0; z <= t.size[2]; z++ {
		for x := 0; x <= t.size[0]; x++ {
			n := s.Sample(float64(x)*cs, float64(z)*cs)
			h := float32((n+1)/2) * axisY
			for y := 0; y <= t.size[1]; y++ {
				if err := t.Set(x, y, z, t.clamp(h-float32(y))); err != nil {
					return fmt.Errorf("seeding column (%d, %d): %w", x, z, err)
				}
			}
		}
	}

	for _, c := range t.chunks {
		if c.Level() == 0 {
			continue
		}
		if err := t.resampler.Resample(c.Origin(), c.Level()); err != nil {
			return fmt.Errorf("resampling chunk %v: %w", c.Index(), err)
		}
	}
	t.metrics.SetDirtyChunks(t.DirtyCount())
	t.log.Info("terrain seeded", zap.Int("columns", (t.size[0]+1)*(t.size[2]+1)))
	return nil
}

// WorldHeight returns the world-space height of the field.
func WorldHeight(cfg config.TerrainConfig) float32 {
	return float32(cfg.AxisY) * cfg.Levels[0].CellSize
}

// HeightBands returns a classifier that tags a cell by how many band
// boundaries lie at or below its position. Boundaries are fractions of
// worldHeight in ascending order; one boundary at 0.55 splits the terrain
// into a low and a high material.
func HeightBands(worldHeight float32, fractions ...float32) cell.Classifier {
	bounds := make([]float32, len(fractions))
	for i, f := range fractions {
		bounds[i] = f * worldHeight
	}
	return func(p mgl32.Vec3) int {
		tag := 0
		for _, b := range bounds {
			if p.Y() >= b {
				tag++
			}
		}
		return tag
	}
}
