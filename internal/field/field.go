// Package field stores the scalar samples that define the terrain surface.
package field

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a coordinate lies outside the sample grid.
var ErrOutOfRange = errors.New("coordinate out of range")

// Field is a dense 3D grid of scalar samples taken at cell corners.
// A field with C cells along an axis holds C+1 samples on that axis so the
// last cell has a closing corner.
type Field struct {
	cellsX, cellsY, cellsZ int
	strideY, strideZ       int
	data                   []float32
}

// New creates a zeroed field for the given cell counts.
func New(cellsX, cellsY, cellsZ int) *Field {
	if cellsX <= 0 || cellsY <= 0 || cellsZ <= 0 {
		panic(fmt.Sprintf("field: invalid cell counts %dx%dx%d", cellsX, cellsY, cellsZ))
	}
	sx, sy, sz := cellsX+1, cellsY+1, cellsZ+1
	return &Field{
		cellsX:  cellsX,
		cellsY:  cellsY,
		cellsZ:  cellsZ,
		strideY: sx,
		strideZ: sx * sy,
		data:    make([]float32, sx*sy*sz),
	}
}

// Size returns the cell counts along each axis. Valid sample coordinates
// are [0, size] inclusive.
func (f *Field) Size() (x, y, z int) {
	return f.cellsX, f.cellsY, f.cellsZ
}

// Contains reports whether (x, y, z) is a valid sample coordinate.
func (f *Field) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x <= f.cellsX && y <= f.cellsY && z <= f.cellsZ
}

// Get returns the sample at (x, y, z).
func (f *Field) Get(x, y, z int) (float32, error) {
	if !f.Contains(x, y, z) {
		return 0, f.rangeError(x, y, z)
	}
	return f.data[f.index(x, y, z)], nil
}

// Set stores v at (x, y, z). No clamping is applied.
func (f *Field) Set(x, y, z int, v float32) error {
	if !f.Contains(x, y, z) {
		return f.rangeError(x, y, z)
	}
	f.data[f.index(x, y, z)] = v
	return nil
}

// At returns the sample at (x, y, z) without an error result.
// Callers must have checked bounds; an invalid coordinate panics.
func (f *Field) At(x, y, z int) float32 {
	if !f.Contains(x, y, z) {
		panic(f.rangeError(x, y, z))
	}
	return f.data[f.index(x, y, z)]
}

// Put stores v at (x, y, z) without an error result. Like At, it panics on
// an invalid coordinate.
func (f *Field) Put(x, y, z int, v float32) {
	if !f.Contains(x, y, z) {
		panic(f.rangeError(x, y, z))
	}
	f.data[f.index(x, y, z)] = v
}

// Fill sets every sample to v.
func (f *Field) Fill(v float32) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	c.data = make([]float32, len(f.data))
	copy(c.data, f.data)
	return &c
}

// Equal reports whether both fields have the same shape and samples.
func (f *Field) Equal(other *Field) bool {
	if f.cellsX != other.cellsX || f.cellsY != other.cellsY || f.cellsZ != other.cellsZ {
		return false
	}
	for i := range f.data {
		if f.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

func (f *Field) index(x, y, z int) int {
	return x + y*f.strideY + z*f.strideZ
}

func (f *Field) rangeError(x, y, z int) error {
	return fmt.Errorf("%w: (%d,%d,%d) not in [0,%d]x[0,%d]x[0,%d]",
		ErrOutOfRange, x, y, z, f.cellsX, f.cellsY, f.cellsZ)
}
