package lod

import (
	"fmt"

	"github.com/Faultbox/voxel-terrain/internal/field"
)

// Resampler keeps the edited ground truth (origin) apart from the field
// chunks actually sample (working). Edits reach both; level changes only
// rewrite the working field.
type Resampler struct {
	table   *Table
	origin  *field.Field
	working *field.Field
}

// NewResampler wraps origin and derives the working field as a copy.
func NewResampler(origin *field.Field, table *Table) *Resampler {
	return &Resampler{
		table:   table,
		origin:  origin,
		working: origin.Clone(),
	}
}

// Origin returns the ground-truth field.
func (r *Resampler) Origin() *field.Field { return r.origin }

// Working returns the field chunks sample from.
func (r *Resampler) Working() *field.Field { return r.working }

// Set writes v to both fields.
func (r *Resampler) Set(x, y, z int, v float32) error {
	if err := r.origin.Set(x, y, z, v); err != nil {
		return err
	}
	return r.working.Set(x, y, z, v)
}

// Resample rewrites the working samples strictly inside the chunk whose
// corner block starts at origin, for level l. Stride-aligned samples are
// copied from the origin field exactly; the rest are trilinearly
// interpolated from the aligned samples of their enclosing coarse cell.
// Samples on the block faces belong to the neighbours too and keep their
// origin values, so a chunk never alters what its neighbours sample.
// Stride 1 copies the interior unchanged.
func (r *Resampler) Resample(origin [3]int, l Level) error {
	if !r.table.Valid(l) {
		return fmt.Errorf("%w: level %d", ErrInvalidTable, l)
	}
	size := r.table.ChunkSize()
	ox, oy, oz := origin[0], origin[1], origin[2]
	if !r.origin.Contains(ox, oy, oz) || !r.origin.Contains(ox+size, oy+size, oz+size) {
		return fmt.Errorf("chunk block at %v: %w", origin, field.ErrOutOfRange)
	}

	stride := r.table.Stride(l)
	for z := 1; z < size; z++ {
		for y := 1; y < size; y++ {
			for x := 1; x < size; x++ {
				r.working.Put(ox+x, oy+y, oz+z, r.sample(ox, oy, oz, x, y, z, stride))
			}
		}
	}
	return nil
}

// sample returns the working value for block-local (x, y, z).
func (r *Resampler) sample(ox, oy, oz, x, y, z, stride int) float32 {
	if x%stride == 0 && y%stride == 0 && z%stride == 0 {
		return r.origin.At(ox+x, oy+y, oz+z)
	}

	x0, tx := split(x, stride)
	y0, ty := split(y, stride)
	z0, tz := split(z, stride)
	x1, y1, z1 := x0+stride, y0+stride, z0+stride
	if tx == 0 {
		x1 = x0
	}
	if ty == 0 {
		y1 = y0
	}
	if tz == 0 {
		z1 = z0
	}

	at := func(x, y, z int) float32 {
		return r.origin.At(ox+x, oy+y, oz+z)
	}

	c00 := lerp(at(x0, y0, z0), at(x1, y0, z0), tx)
	c10 := lerp(at(x0, y1, z0), at(x1, y1, z0), tx)
	c01 := lerp(at(x0, y0, z1), at(x1, y0, z1), tx)
	c11 := lerp(at(x0, y1, z1), at(x1, y1, z1), tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// split returns the aligned coordinate below v and the fraction past it.
func split(v, stride int) (int, float32) {
	base := v - v%stride
	return base, float32(v-base) / float32(stride)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
