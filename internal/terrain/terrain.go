// Package terrain owns the scalar field and its chunks. It applies edits,
// tracks which chunks are dirty and drives throttled mesh updates.
//
// A Terrain is driven from a single goroutine: edits and UpdateMeshes must
// not run concurrently.
package terrain

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/assets"
	"github.com/Faultbox/voxel-terrain/internal/binder"
	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/chunk"
	"github.com/Faultbox/voxel-terrain/internal/config"
	"github.com/Faultbox/voxel-terrain/internal/field"
	"github.com/Faultbox/voxel-terrain/internal/lod"
	"github.com/Faultbox/voxel-terrain/internal/metrics"
)

// ErrChunkOutOfRange is returned for a chunk index outside the grid.
var ErrChunkOutOfRange = errors.New("chunk index out of range")

// MaterialProvider resolves material handles by logical name.
type MaterialProvider interface {
	Material(name string) (*assets.Material, error)
}

// Deps are the collaborators a terrain is built with.
type Deps struct {
	Extractor cell.Extractor // required
	// Classifier tags cells by world position. Nil tags every cell 0.
	Classifier cell.Classifier
	Materials  MaterialProvider // required
	Metrics    *metrics.Collector
	Logger     *zap.Logger
}

// Terrain is a chunked, editable isosurface terrain.
type Terrain struct {
	cfg  config.TerrainConfig
	edit config.EditConfig

	table     *lod.Table
	resampler *lod.Resampler
	pipe      *chunk.Pipeline

	size   [3]int // cells per axis
	counts [3]int // chunks per axis
	chunks []*chunk.Chunk

	tick    int
	log     *zap.Logger
	metrics *metrics.Collector
}

// New validates cfg, resolves the configured materials in tag order and
// builds the chunk grid. Every chunk starts dirty at level 0; the first
// UpdateMeshes(true) meshes them all.
func New(cfg *config.Config, deps Deps) (*Terrain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("%w: no isosurface extractor", config.ErrInvalidConfig)
	}
	if deps.Materials == nil {
		return nil, fmt.Errorf("%w: no material provider", config.ErrInvalidConfig)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tc := cfg.Terrain
	table, err := lod.NewTable(tc.ChunkSize, tc.LevelSpecs())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	mats := make([]*assets.Material, len(cfg.Materials.Names))
	for i, name := range cfg.Materials.Names {
		mat, err := deps.Materials.Material(name)
		if err != nil {
			return nil, fmt.Errorf("resolving material %d: %w", i, err)
		}
		mats[i] = mat
	}

	origin := field.New(tc.AxisX, tc.AxisY, tc.AxisZ)
	origin.Fill(tc.InitialValue)
	resampler := lod.NewResampler(origin, table)

	t := &Terrain{
		cfg:       tc,
		edit:      cfg.Edit,
		table:     table,
		resampler: resampler,
		size:      [3]int{tc.AxisX, tc.AxisY, tc.AxisZ},
		counts: [3]int{
			tc.AxisX / tc.ChunkSize,
			tc.AxisY / tc.ChunkSize,
			tc.AxisZ / tc.ChunkSize,
		},
		log:     log,
		metrics: deps.Metrics,
	}
	t.pipe = &chunk.Pipeline{
		Cells:   cell.NewGrid(deps.Extractor, deps.Classifier, tc.IsoLevel, log.Named("cells"), deps.Metrics),
		Binder:  binder.New(mats, binder.Options{Metrics: deps.Metrics}),
		Field:   resampler.Working(),
		Table:   table,
		Metrics: deps.Metrics,
		Log:     log,
	}

	t.chunks = make([]*chunk.Chunk, t.counts[0]*t.counts[1]*t.counts[2])
	for z := range t.counts[2] {
		for y := range t.counts[1] {
			for x := range t.counts[0] {
				idx := [3]int{x, y, z}
				o := [3]int{x * tc.ChunkSize, y * tc.ChunkSize, z * tc.ChunkSize}
				t.chunks[t.flat(idx)] = chunk.New(idx, o, 0)
			}
		}
	}
	t.metrics.SetDirtyChunks(len(t.chunks))

	log.Info("terrain created",
		zap.Ints("cells", t.size[:]),
		zap.Ints("chunks", t.counts[:]),
		zap.Int("levels", table.Len()),
		zap.Strings("materials", cfg.Materials.Names))
	return t, nil
}

func (t *Terrain) flat(idx [3]int) int {
	return idx[0] + idx[1]*t.counts[0] + idx[2]*t.counts[0]*t.counts[1]
}

// Field returns the edited ground-truth field. Writes must go through Set.
func (t *Terrain) Field() *field.Field { return t.resampler.Origin() }

// WorkingField returns the field chunks sample from.
func (t *Terrain) WorkingField() *field.Field { return t.resampler.Working() }

// Table returns the level table.
func (t *Terrain) Table() *lod.Table { return t.table }

// ChunkCounts returns the number of chunks per axis.
func (t *Terrain) ChunkCounts() [3]int { return t.counts }

// Chunks returns every chunk, x fastest.
func (t *Terrain) Chunks() []*chunk.Chunk { return t.chunks }

// Chunk returns the chunk at grid index idx.
func (t *Terrain) Chunk(idx [3]int) (*chunk.Chunk, error) {
	for a := range 3 {
		if idx[a] < 0 || idx[a] >= t.counts[a] {
			return nil, fmt.Errorf("%w: %v, grid is %v", ErrChunkOutOfRange, idx, t.counts)
		}
	}
	return t.chunks[t.flat(idx)], nil
}

// DirtyCount returns how many chunks wait for a refresh.
func (t *Terrain) DirtyCount() int {
	n := 0
	for _, c := range t.chunks {
		if c.State() == chunk.Dirty {
			n++
		}
	}
	return n
}

// Get returns the ground-truth sample at (x, y, z).
func (t *Terrain) Get(x, y, z int) (float32, error) {
	return t.resampler.Origin().Get(x, y, z)
}

// Set writes a sample to both fields and marks every chunk using that
// corner dirty. Values are stored as given; clamping is the caller's job.
func (t *Terrain) Set(x, y, z int, v float32) error {
	if err := t.resampler.Set(x, y, z, v); err != nil {
		return err
	}
	t.markDirty([3]int{x, y, z}, [3]int{x, y, z})
	t.metrics.SampleWritten()
	return nil
}

// markDirty marks the chunks owning any cell that has a corner in the
// inclusive sample box [lo, hi]. A corner is shared by at most two chunks
// per axis.
func (t *Terrain) markDirty(lo, hi [3]int) {
	var from, to [3]int
	for a := range 3 {
		from[a] = max(lo[a]-1, 0) / t.cfg.ChunkSize
		to[a] = min(hi[a], t.size[a]-1) / t.cfg.ChunkSize
	}
	for z := from[2]; z <= to[2]; z++ {
		for y := from[1]; y <= to[1]; y++ {
			for x := from[0]; x <= to[0]; x++ {
				t.chunks[t.flat([3]int{x, y, z})].MarkDirty()
			}
		}
	}
}

// ChunkLOD returns the level of the chunk at idx.
func (t *Terrain) ChunkLOD(idx [3]int) (lod.Level, error) {
	c, err := t.Chunk(idx)
	if err != nil {
		return 0, err
	}
	return c.Level(), nil
}

// SetChunkLOD moves the chunk at idx to level l and resamples the interior
// of its block in the working field. It reports whether the level changed.
// Shared faces keep their origin values, so only this chunk turns dirty.
func (t *Terrain) SetChunkLOD(idx [3]int, l lod.Level) (bool, error) {
	c, err := t.Chunk(idx)
	if err != nil {
		return false, err
	}
	if !t.table.Valid(l) {
		return false, fmt.Errorf("%w: level %d, table has %d", lod.ErrInvalidTable, l, t.table.Len())
	}

	from := c.Level()
	if !c.SetLevel(l) {
		return false, nil
	}
	if err := t.resampler.Resample(c.Origin(), l); err != nil {
		return true, fmt.Errorf("resampling chunk %v: %w", idx, err)
	}

	t.metrics.LODChanged()
	t.metrics.SetDirtyChunks(t.DirtyCount())

	t.log.Debug("chunk level changed",
		zap.Ints("chunk", idx[:]),
		zap.Int("from", int(from)),
		zap.Int("to", int(l)))
	return true, nil
}

// UpdateMeshes advances the tick throttle and, on every UpdateTick-th call
// or when immediate is set, refreshes the chunks. Clean chunks are skipped
// unless immediate forces them. Every chunk is visited even if some fail;
// their errors are combined. It returns how many chunks were refreshed.
func (t *Terrain) UpdateMeshes(immediate bool) (int, error) {
	t.tick = (t.tick + 1) % t.cfg.UpdateTick
	if !immediate && t.tick != 0 {
		t.metrics.UpdatePass(true)
		return 0, nil
	}
	t.metrics.UpdatePass(false)

	var errs error
	refreshed := 0
	for _, c := range t.chunks {
		did, err := c.Refresh(t.pipe, immediate)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if did {
			refreshed++
		}
	}
	t.metrics.SetDirtyChunks(t.DirtyCount())

	if errs != nil {
		t.log.Warn("mesh update incomplete",
			zap.Int("refreshed", refreshed),
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs))
	} else if refreshed > 0 {
		t.log.Debug("meshes updated", zap.Int("refreshed", refreshed), zap.Bool("immediate", immediate))
	}
	return refreshed, errs
}
