package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/voxel-terrain/internal/assets"
	"github.com/Faultbox/voxel-terrain/internal/config"
	"github.com/Faultbox/voxel-terrain/internal/extract"
	"github.com/Faultbox/voxel-terrain/internal/lod"
	"github.com/Faultbox/voxel-terrain/internal/logger"
	"github.com/Faultbox/voxel-terrain/internal/metrics"
	"github.com/Faultbox/voxel-terrain/internal/noise"
	"github.com/Faultbox/voxel-terrain/internal/terrain"
)

const prefetchTimeout = 5 * time.Second

// demo seeds a terrain, then digs a trench through it tick by tick while a
// viewer walks along it, coarsening distant chunks.
type demo struct {
	cfg      *config.Config
	registry *prometheus.Registry
	assets   *assets.Manager
	terrain  *terrain.Terrain
	log      *zap.Logger
}

func newDemo(cfg *config.Config) (*demo, error) {
	log := logger.Named("demo")
	registry := prometheus.NewRegistry()
	m := metrics.New(cfg.Metrics.Namespace, registry)

	// Built-in materials are overridden by files in the material dir
	builtin := assets.MemSource{}
	for _, name := range cfg.Materials.Names {
		builtin[name] = []byte(name)
	}
	manager := assets.NewManager(logger.Named("assets"), builtin)
	if cfg.Materials.Dir != "" {
		manager.AddSource(assets.DirSource{Root: cfg.Materials.Dir, Ext: ".mat"})
	}
	if err := prefetch(manager, cfg.Materials.Names, log); err != nil {
		return nil, err
	}

	ter, err := terrain.New(cfg, terrain.Deps{
		Extractor:  extract.Tetrahedra{},
		Classifier: terrain.HeightBands(terrain.WorldHeight(cfg.Terrain), cfg.Materials.BandHeights...),
		Materials:  manager,
		Metrics:    m,
		Logger:     logger.Named("terrain"),
	})
	if err != nil {
		return nil, err
	}

	return &demo{
		cfg:      cfg,
		registry: registry,
		assets:   manager,
		terrain:  ter,
		log:      log,
	}, nil
}

// prefetch loads every material in the background and waits for all of
// them, so terrain construction only hits the cache.
func prefetch(m *assets.Manager, names []string, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	futures := make([]*assets.Future, len(names))
	for i, name := range names {
		futures[i] = m.LoadAsync(name)
		futures[i].Then(func(mat *assets.Material, err error) {
			if err == nil {
				log.Debug("material ready", zap.String("name", mat.Name), zap.Int("bytes", len(mat.Data)))
			}
		})
	}
	for i, f := range futures {
		if _, err := f.Wait(ctx); err != nil {
			return fmt.Errorf("prefetching material %s: %w", names[i], err)
		}
	}
	return nil
}

// Run seeds the terrain and simulates ticks.
func (d *demo) Run(ticks int) error {
	start := time.Now()
	if err := d.terrain.Seed(noise.FromConfig(d.cfg.Noise)); err != nil {
		return err
	}
	if _, err := d.terrain.UpdateMeshes(true); err != nil {
		return err
	}
	d.log.Info("initial meshes built",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("triangles", d.triangles()))

	tc := d.cfg.Terrain
	cs := tc.Levels[0].CellSize
	worldX := float32(tc.AxisX) * cs
	depth := terrain.WorldHeight(tc) * 0.5

	for tick := 0; tick < ticks; tick++ {
		x := worldX * float32(tick) / float32(max(ticks, 1))
		viewer := mgl32.Vec3{x, depth, float32(tc.AxisZ) * cs / 2}

		if _, err := d.terrain.Dig(viewer); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if tick%tc.UpdateTick == 0 {
			if err := d.updateLevels(viewer); err != nil {
				return fmt.Errorf("tick %d: %w", tick, err)
			}
		}
		n, err := d.terrain.UpdateMeshes(false)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if n > 0 {
			d.log.Debug("tick", zap.Int("tick", tick), zap.Int("refreshed", n))
		}
	}

	// Flush whatever the throttle held back
	if _, err := d.terrain.UpdateMeshes(true); err != nil {
		return err
	}
	d.report(time.Since(start))
	return nil
}

// updateLevels picks each chunk's level from its distance to the viewer,
// one level per two chunk widths.
func (d *demo) updateLevels(viewer mgl32.Vec3) error {
	table := d.terrain.Table()
	width := float32(table.ChunkSize()) * table.CellSize(0)

	for _, c := range d.terrain.Chunks() {
		o := c.Origin()
		half := width / 2
		center := mgl32.Vec3{
			float32(o[0])*table.CellSize(0) + half,
			float32(o[1])*table.CellSize(0) + half,
			float32(o[2])*table.CellSize(0) + half,
		}
		steps := int(math.Floor(float64(center.Sub(viewer).Len() / (2 * width))))
		level := lod.Level(min(steps, int(table.Coarsest())))
		if _, err := d.terrain.SetChunkLOD(c.Index(), level); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) triangles() int {
	total := 0
	for _, c := range d.terrain.Chunks() {
		total += c.Mesh().TriangleCount()
	}
	return total
}

func (d *demo) report(elapsed time.Duration) {
	perMaterial := make(map[string]int)
	for _, c := range d.terrain.Chunks() {
		for i, mat := range c.Materials() {
			_, count := c.Mesh().SubMeshTriangles(i)
			perMaterial[mat.Name] += count
		}
	}
	for name, count := range perMaterial {
		d.log.Info("material", zap.String("name", name), zap.Int("triangles", count))
	}

	hits, misses := d.assets.Stats()
	d.log.Info("run complete",
		zap.Duration("elapsed", elapsed),
		zap.Int("triangles", d.triangles()),
		zap.Int("asset_cache_hits", hits),
		zap.Int("asset_cache_misses", misses))

	families, err := d.registry.Gather()
	if err != nil {
		d.log.Warn("gathering metrics failed", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			value := metric.GetCounter().GetValue()
			if g := metric.GetGauge(); g != nil {
				value = g.GetValue()
			}
			d.log.Info("metric", zap.String("name", mf.GetName()), zap.Float64("value", value))
		}
	}
}

// Close releases the asset manager.
func (d *demo) Close() {
	d.assets.Close()
}
