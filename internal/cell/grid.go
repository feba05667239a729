package cell

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/field"
	"github.com/Faultbox/voxel-terrain/internal/metrics"
)

// Block describes the cube of cells a chunk samples at its current level.
type Block struct {
	Origin   [3]int  // field coordinate of the block's minimum corner
	Cells    int     // cells per axis
	Stride   int     // field samples spanned by one cell
	CellSize float32 // world edge length of one cell
}

// Len returns the number of cells in the block.
func (b Block) Len() int {
	return b.Cells * b.Cells * b.Cells
}

// Index returns the flat index of cell (i, j, k), x fastest.
func (b Block) Index(i, j, k int) int {
	return i + j*b.Cells + k*b.Cells*b.Cells
}

// Grid gathers corners and runs the extractor for a block of cells.
type Grid struct {
	extractor Extractor
	classify  Classifier
	isoLevel  float32
	log       *zap.Logger
	metrics   *metrics.Collector
}

// NewGrid creates a cell grid. A nil classifier tags every cell 0.
func NewGrid(extractor Extractor, classify Classifier, isoLevel float32, log *zap.Logger, m *metrics.Collector) *Grid {
	if log == nil {
		log = zap.NewNop()
	}
	return &Grid{
		extractor: extractor,
		classify:  classify,
		isoLevel:  isoLevel,
		log:       log,
		metrics:   m,
	}
}

// IsoLevel returns the threshold passed to the extractor.
func (g *Grid) IsoLevel() float32 {
	return g.isoLevel
}

// Layout sizes cells for the block and fills in coordinates and world
// positions. Cached fragments are dropped.
func (g *Grid) Layout(cells []Cell, b Block) []Cell {
	n := b.Len()
	if cap(cells) < n {
		cells = make([]Cell, n)
	}
	cells = cells[:n]

	for k := 0; k < b.Cells; k++ {
		for j := 0; j < b.Cells; j++ {
			for i := 0; i < b.Cells; i++ {
				c := &cells[b.Index(i, j, k)]
				c.Coord = [3]int{
					b.Origin[0] + i*b.Stride,
					b.Origin[1] + j*b.Stride,
					b.Origin[2] + k*b.Stride,
				}
				c.Position = mgl32.Vec3{
					float32(c.Coord[0]/b.Stride) * b.CellSize,
					float32(c.Coord[1]/b.Stride) * b.CellSize,
					float32(c.Coord[2]/b.Stride) * b.CellSize,
				}
				c.Size = b.CellSize
				c.clear()
			}
		}
	}
	return cells
}

// Compute samples every cell of the block from f and caches its fragment
// and tag. It returns how many cells produced geometry. An extractor error
// marks that cell empty and does not stop the block.
func (g *Grid) Compute(cells []Cell, f *field.Field, b Block) (int, error) {
	if len(cells) != b.Len() {
		return 0, fmt.Errorf("cell slice has %d cells, block needs %d", len(cells), b.Len())
	}

	withGeometry := 0
	for idx := range cells {
		c := &cells[idx]
		if err := gather(c, f, b.Stride); err != nil {
			return withGeometry, fmt.Errorf("gathering corners of cell %v: %w", c.Coord, err)
		}

		frag, ok, err := g.extractor.Extract(c.Corners, g.isoLevel)
		g.metrics.CellExtracted()
		if err != nil {
			g.metrics.ExtractorFailed()
			g.log.Warn("extractor failed, treating cell as empty",
				zap.Ints("cell", c.Coord[:]),
				zap.Error(err))
			c.clear()
			continue
		}
		if !ok || frag == nil || frag.IsEmpty() {
			c.clear()
			continue
		}

		c.Fragment = frag
		c.HasGeometry = true
		c.Tag = 0
		if g.classify != nil {
			c.Tag = g.classify(c.Position)
		}
		withGeometry++
	}
	return withGeometry, nil
}

// gather copies the 8 corner samples of c from f.
func gather(c *Cell, f *field.Field, stride int) error {
	for i, off := range CornerOffsets {
		v, err := f.Get(
			c.Coord[0]+off[0]*stride,
			c.Coord[1]+off[1]*stride,
			c.Coord[2]+off[2]*stride,
		)
		if err != nil {
			return err
		}
		c.Corners[i] = v
	}
	return nil
}
