package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voxel-terrain/internal/assets"
	"github.com/Faultbox/voxel-terrain/internal/binder"
	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/field"
	"github.com/Faultbox/voxel-terrain/internal/lod"
	"github.com/Faultbox/voxel-terrain/internal/mesh"
)

type countingExtractor struct {
	calls int
}

func (e *countingExtractor) Extract(corners [8]float32, iso float32) (*mesh.Mesh, bool, error) {
	e.calls++
	for _, v := range corners {
		if v >= iso {
			m := &mesh.Mesh{}
			m.AddTriangle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0})
			return m, true, nil
		}
	}
	return nil, false, nil
}

func newPipeline(t *testing.T, f *field.Field, ext cell.Extractor) *Pipeline {
	t.Helper()
	table, err := lod.NewTable(4, []lod.Spec{
		{Divisor: 1, CellSize: 1},
		{Divisor: 2, CellSize: 2},
	})
	require.NoError(t, err)

	return &Pipeline{
		Cells:  cell.NewGrid(ext, nil, 0.5, nil, nil),
		Binder: binder.New([]*assets.Material{{Name: "stone"}}, binder.Options{}),
		Field:  f,
		Table:  table,
	}
}

func solidField() *field.Field {
	f := field.New(4, 4, 4)
	f.Fill(1)
	return f
}

func TestNewChunkIsDirty(t *testing.T) {
	c := New([3]int{1, 0, 2}, [3]int{4, 0, 8}, 0)
	assert.Equal(t, Dirty, c.State())
	assert.True(t, c.Mesh().IsEmpty())
	assert.NotNil(t, c.Materials())
	assert.Equal(t, [3]int{1, 0, 2}, c.Index())
	assert.Equal(t, [3]int{4, 0, 8}, c.Origin())
}

func TestRefreshIsIdempotent(t *testing.T) {
	ext := &countingExtractor{}
	p := newPipeline(t, solidField(), ext)
	c := New([3]int{}, [3]int{}, 0)

	did, err := c.Refresh(p, false)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, Clean, c.State())
	assert.Equal(t, 64, ext.calls)
	assert.Equal(t, 64, c.Mesh().TriangleCount())
	require.Len(t, c.Materials(), 1)
	assert.Equal(t, "stone", c.Materials()[0].Name)

	did, err = c.Refresh(p, false)
	require.NoError(t, err)
	assert.False(t, did)
	assert.Equal(t, 64, ext.calls, "clean chunk must not call the extractor")
}

func TestRefreshForced(t *testing.T) {
	ext := &countingExtractor{}
	p := newPipeline(t, solidField(), ext)
	c := New([3]int{}, [3]int{}, 0)

	_, err := c.Refresh(p, false)
	require.NoError(t, err)

	did, err := c.Refresh(p, true)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, 128, ext.calls)
	assert.Equal(t, Clean, c.State())
}

func TestMarkDirtyRefreshesAgain(t *testing.T) {
	ext := &countingExtractor{}
	f := solidField()
	p := newPipeline(t, f, ext)
	c := New([3]int{}, [3]int{}, 0)

	_, err := c.Refresh(p, false)
	require.NoError(t, err)

	f.Fill(0)
	c.MarkDirty()
	assert.Equal(t, Dirty, c.State())

	did, err := c.Refresh(p, false)
	require.NoError(t, err)
	assert.True(t, did)
	assert.True(t, c.Mesh().IsEmpty())
	assert.Empty(t, c.Materials())
}

func TestSetLevel(t *testing.T) {
	ext := &countingExtractor{}
	p := newPipeline(t, solidField(), ext)
	c := New([3]int{}, [3]int{}, 0)

	_, err := c.Refresh(p, false)
	require.NoError(t, err)
	require.Len(t, c.Cells(), 64)

	assert.False(t, c.SetLevel(0), "same level is not a change")
	assert.Equal(t, Clean, c.State())

	assert.True(t, c.SetLevel(1))
	assert.Equal(t, Dirty, c.State())
	assert.Equal(t, lod.Level(1), c.Level())

	_, err = c.Refresh(p, false)
	require.NoError(t, err)
	assert.Len(t, c.Cells(), 8)
	assert.Equal(t, 64+8, ext.calls)

	// Coarse cells are laid out on the coarse stride
	last := c.Cells()[len(c.Cells())-1]
	assert.Equal(t, [3]int{2, 2, 2}, last.Coord)
	assert.Equal(t, float32(2), last.Size)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, last.Position)
}

func TestRefreshOutsideFieldStaysDirty(t *testing.T) {
	p := newPipeline(t, field.New(2, 2, 2), &countingExtractor{})
	c := New([3]int{}, [3]int{}, 0)

	did, err := c.Refresh(p, false)
	assert.ErrorIs(t, err, field.ErrOutOfRange)
	assert.False(t, did)
	assert.Equal(t, Dirty, c.State())
}

func TestFailedRefreshKeepsLastMesh(t *testing.T) {
	tag := 0
	p := newPipeline(t, solidField(), &countingExtractor{})
	p.Cells = cell.NewGrid(&countingExtractor{}, func(mgl32.Vec3) int { return tag }, 0.5, nil, nil)
	c := New([3]int{}, [3]int{}, 0)

	_, err := c.Refresh(p, false)
	require.NoError(t, err)
	require.Equal(t, Clean, c.State())

	tag = 5
	did, err := c.Refresh(p, true)
	require.ErrorIs(t, err, binder.ErrTagOutOfRange)
	assert.False(t, did)
	assert.Equal(t, Dirty, c.State(), "a failed forced refresh must be retried")
	assert.Equal(t, 64, c.Mesh().TriangleCount())
	assert.Len(t, c.Materials(), len(c.Mesh().SubMeshes))

	tag = 0
	did, err = c.Refresh(p, false)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, Clean, c.State())
	assert.Len(t, c.Materials(), len(c.Mesh().SubMeshes))
}

func TestRefreshClassifiesEachCellOnce(t *testing.T) {
	calls := 0
	p := newPipeline(t, solidField(), nil)
	p.Cells = cell.NewGrid(&countingExtractor{}, func(mgl32.Vec3) int {
		calls++
		return 0
	}, 0.5, nil, nil)
	c := New([3]int{}, [3]int{}, 0)

	_, err := c.Refresh(p, false)
	require.NoError(t, err)
	assert.Equal(t, 64, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dirty", Dirty.String())
	assert.Equal(t, "clean", Clean.String())
	assert.Equal(t, "State(7)", State(7).String())
}
