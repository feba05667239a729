// Package metrics exposes Prometheus counters for the terrain pipeline.
// A nil *Collector is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector groups the pipeline counters and gauges.
type Collector struct {
	cellsExtracted    prometheus.Counter
	extractorFailures prometheus.Counter
	chunkRefreshes    prometheus.Counter
	chunkSkips        prometheus.Counter
	refreshFailures   prometheus.Counter
	bindFragments     prometheus.Counter
	bindGroups        prometheus.Counter
	updatePasses      prometheus.Counter
	updateThrottled   prometheus.Counter
	lodChanges        prometheus.Counter
	edits             prometheus.Counter
	samplesWritten    prometheus.Counter
	dirtyChunks       prometheus.Gauge
}

// New creates a collector and registers it with reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func New(namespace string, reg prometheus.Registerer) *Collector {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	c := &Collector{
		cellsExtracted:    counter("cells_extracted_total", "Cells passed to the isosurface extractor."),
		extractorFailures: counter("extractor_failures_total", "Extractor errors treated as empty cells."),
		chunkRefreshes:    counter("chunk_refreshes_total", "Chunks recomputed and rebound."),
		chunkSkips:        counter("chunk_refresh_skips_total", "Refresh calls skipped because the chunk was clean."),
		refreshFailures:   counter("chunk_refresh_failures_total", "Chunk refreshes that returned an error."),
		bindFragments:     counter("bind_fragments_total", "Cell fragments grouped by the binder."),
		bindGroups:        counter("bind_groups_total", "Per-material groups merged by the binder."),
		updatePasses:      counter("update_passes_total", "UpdateMeshes calls that visited the chunks."),
		updateThrottled:   counter("update_throttled_total", "UpdateMeshes calls skipped by the tick throttle."),
		lodChanges:        counter("lod_changes_total", "Chunk level-of-detail transitions."),
		edits:             counter("edits_total", "Sphere edits applied."),
		samplesWritten:    counter("samples_written_total", "Scalar samples written through the terrain."),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dirty_chunks",
			Help:      "Chunks waiting for a refresh.",
		}),
	}

	reg.MustRegister(
		c.cellsExtracted, c.extractorFailures,
		c.chunkRefreshes, c.chunkSkips, c.refreshFailures,
		c.bindFragments, c.bindGroups,
		c.updatePasses, c.updateThrottled,
		c.lodChanges, c.edits, c.samplesWritten,
		c.dirtyChunks,
	)
	return c
}

func (c *Collector) CellExtracted() {
	if c != nil {
		c.cellsExtracted.Inc()
	}
}

func (c *Collector) ExtractorFailed() {
	if c != nil {
		c.extractorFailures.Inc()
	}
}

func (c *Collector) ChunkRefreshed() {
	if c != nil {
		c.chunkRefreshes.Inc()
	}
}

func (c *Collector) ChunkSkipped() {
	if c != nil {
		c.chunkSkips.Inc()
	}
}

func (c *Collector) RefreshFailed() {
	if c != nil {
		c.refreshFailures.Inc()
	}
}

// Bound records one binder call.
func (c *Collector) Bound(fragments, groups int) {
	if c != nil {
		c.bindFragments.Add(float64(fragments))
		c.bindGroups.Add(float64(groups))
	}
}

// UpdatePass records an UpdateMeshes call; throttled calls do no work.
func (c *Collector) UpdatePass(throttled bool) {
	if c == nil {
		return
	}
	if throttled {
		c.updateThrottled.Inc()
		return
	}
	c.updatePasses.Inc()
}

func (c *Collector) LODChanged() {
	if c != nil {
		c.lodChanges.Inc()
	}
}

// Edited records one sphere edit. Its samples are counted by SampleWritten.
func (c *Collector) Edited() {
	if c != nil {
		c.edits.Inc()
	}
}

func (c *Collector) SampleWritten() {
	if c != nil {
		c.samplesWritten.Inc()
	}
}

func (c *Collector) SetDirtyChunks(n int) {
	if c != nil {
		c.dirtyChunks.Set(float64(n))
	}
}
