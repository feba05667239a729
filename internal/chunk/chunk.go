// Package chunk implements the per-chunk refresh state machine.
package chunk

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/assets"
	"github.com/Faultbox/voxel-terrain/internal/binder"
	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/field"
	"github.com/Faultbox/voxel-terrain/internal/lod"
	"github.com/Faultbox/voxel-terrain/internal/mesh"
	"github.com/Faultbox/voxel-terrain/internal/metrics"
)

// State tells whether a chunk's mesh matches the field.
type State uint8

const (
	Dirty State = iota
	Clean
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Clean:
		return "clean"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Pipeline is the shared machinery a refresh runs through. The terrain owns
// one and hands it to every chunk.
type Pipeline struct {
	Cells   *cell.Grid // tags cells once per compute
	Binder  *binder.Binder
	Field   *field.Field // working field
	Table   *lod.Table
	Metrics *metrics.Collector
	Log     *zap.Logger
}

// Chunk is a cube of ChunkSize finest cells, meshed at its current level.
type Chunk struct {
	index  [3]int
	origin [3]int
	level  lod.Level
	state  State

	cells    []cell.Cell
	laidOut  lod.Level
	mesh     *mesh.Mesh
	spare    *mesh.Mesh // bind target, swapped with mesh on success
	mats     []*assets.Material
	hasCells bool
}

// New creates a dirty chunk at grid index idx whose minimum corner is the
// field sample origin.
func New(idx, origin [3]int, level lod.Level) *Chunk {
	return &Chunk{
		index:  idx,
		origin: origin,
		level:  level,
		state:  Dirty,
		mesh:   &mesh.Mesh{},
		spare:  &mesh.Mesh{},
		mats:   []*assets.Material{},
	}
}

func (c *Chunk) Index() [3]int      { return c.index }
func (c *Chunk) Origin() [3]int     { return c.origin }
func (c *Chunk) Level() lod.Level   { return c.level }
func (c *Chunk) State() State       { return c.state }
func (c *Chunk) Cells() []cell.Cell { return c.cells }

// Mesh returns the combined mesh of the last refresh.
func (c *Chunk) Mesh() *mesh.Mesh { return c.mesh }

// Materials returns one material per submesh of Mesh, in the same order.
func (c *Chunk) Materials() []*assets.Material { return c.mats }

// MarkDirty schedules the chunk for the next refresh.
func (c *Chunk) MarkDirty() {
	c.state = Dirty
}

// SetLevel switches the chunk to level l and reports whether it changed.
// A changed chunk is dirty; its cells are rebuilt on the next refresh.
func (c *Chunk) SetLevel(l lod.Level) bool {
	if l == c.level {
		return false
	}
	c.level = l
	c.state = Dirty
	return true
}

// Block returns the cell block the chunk samples at its current level.
func (c *Chunk) Block(t *lod.Table) cell.Block {
	return cell.Block{
		Origin:   c.origin,
		Cells:    t.CellCount(c.level),
		Stride:   t.Stride(c.level),
		CellSize: t.CellSize(c.level),
	}
}

// Refresh recomputes the chunk's cells and rebinds its mesh. A clean chunk
// is skipped unless forced. It reports whether work was done. On error the
// chunk is left dirty and keeps the mesh and materials of its last
// successful refresh.
func (c *Chunk) Refresh(p *Pipeline, forced bool) (bool, error) {
	if c.state == Clean && !forced {
		p.Metrics.ChunkSkipped()
		return false, nil
	}

	b := c.Block(p.Table)
	if !c.hasCells || c.laidOut != c.level {
		c.cells = p.Cells.Layout(c.cells, b)
		c.laidOut = c.level
		c.hasCells = true
	}

	withGeometry, err := p.Cells.Compute(c.cells, p.Field, b)
	if err != nil {
		c.state = Dirty
		p.Metrics.RefreshFailed()
		return false, fmt.Errorf("refreshing chunk %v: %w", c.index, err)
	}

	mats, err := p.Binder.Bind(c.cells, nil, c.spare)
	if err != nil {
		c.state = Dirty
		p.Metrics.RefreshFailed()
		return false, fmt.Errorf("binding chunk %v: %w", c.index, err)
	}
	c.mesh, c.spare = c.spare, c.mesh
	c.mats = mats
	c.state = Clean
	p.Metrics.ChunkRefreshed()

	if p.Log != nil {
		p.Log.Debug("chunk refreshed",
			zap.Ints("chunk", c.index[:]),
			zap.Int("level", int(c.level)),
			zap.Int("cells", len(c.cells)),
			zap.Int("with_geometry", withGeometry),
			zap.Int("submeshes", len(c.mesh.SubMeshes)))
	}
	return true, nil
}
