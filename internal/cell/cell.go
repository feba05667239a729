// Package cell turns scalar samples into per-cell isosurface fragments.
package cell

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxel-terrain/internal/mesh"
)

// Extractor triangulates one cell from its 8 corner samples.
// Implementations must be pure: the same corners and iso level always yield
// the same fragment. The fragment is expressed in unit-cell space [0,1]^3.
type Extractor interface {
	Extract(corners [8]float32, isoLevel float32) (fragment *mesh.Mesh, hasGeometry bool, err error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(corners [8]float32, isoLevel float32) (*mesh.Mesh, bool, error)

// Extract calls f.
func (f ExtractorFunc) Extract(corners [8]float32, isoLevel float32) (*mesh.Mesh, bool, error) {
	return f(corners, isoLevel)
}

// Classifier maps a cell's world position to a submesh tag.
// It must be pure so tags stay stable across refreshes.
type Classifier func(position mgl32.Vec3) int

// CornerOffsets lists the unit-cube position of each corner index:
// the bottom face (y=0) counter-clockwise, then the top face (y=1) in the
// same order. Y is the vertical axis.
var CornerOffsets = [8][3]int{
	{0, 0, 1},
	{1, 0, 1},
	{1, 0, 0},
	{0, 0, 0},
	{0, 1, 1},
	{1, 1, 1},
	{1, 1, 0},
	{0, 1, 0},
}

// Cell is one sampled cube with its cached fragment.
type Cell struct {
	// Coord is the field coordinate of the cell's minimum corner.
	Coord [3]int
	// Position is the world position of the minimum corner.
	Position mgl32.Vec3
	// Size is the world edge length of the cell.
	Size float32

	Corners     [8]float32
	Fragment    *mesh.Mesh
	HasGeometry bool
	Tag         int
}

// Transform maps unit-cell fragment space into world space.
func (c *Cell) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(c.Position[0], c.Position[1], c.Position[2]).
		Mul4(mgl32.Scale3D(c.Size, c.Size, c.Size))
}

// clear drops the cached fragment so stale geometry is never reused.
func (c *Cell) clear() {
	c.Fragment = nil
	c.HasGeometry = false
	c.Tag = 0
}
