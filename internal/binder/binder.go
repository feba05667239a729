// Package binder merges a chunk's cell fragments into one multi-material
// mesh.
package binder

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxel-terrain/internal/assets"
	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/mesh"
	"github.com/Faultbox/voxel-terrain/internal/metrics"
)

// ErrTagOutOfRange is returned when a classifier yields a tag with no
// material.
var ErrTagOutOfRange = errors.New("submesh tag out of range")

// Stats describes the most recent Bind call.
type Stats struct {
	Fragments int // cell fragments grouped
	Groups    int // non-empty tags merged
}

// Options tune a Binder.
type Options struct {
	// SmoothNormals averages normals across fragment seams in the result.
	SmoothNormals bool
	Metrics       *metrics.Collector
}

// Binder groups fragments by tag and merges them. All buffers are owned by
// the binder and reused between calls; a Binder is not safe for concurrent
// use.
type Binder struct {
	materials []*assets.Material
	opts      Options

	groups    [][]mesh.Instance
	pool      *mesh.Pool
	instances []mesh.Instance
	stats     Stats
}

// New creates a binder for the given tag-indexed materials. The mesh pool
// holds one mesh per material, the most a chunk can bind at once.
func New(materials []*assets.Material, opts Options) *Binder {
	b := &Binder{
		materials: materials,
		opts:      opts,
		groups:    make([][]mesh.Instance, len(materials)),
		pool:      mesh.NewPool(len(materials)),
		instances: make([]mesh.Instance, 0, len(materials)),
	}
	return b
}

// MaterialCount returns the number of tags the binder accepts.
func (b *Binder) MaterialCount() int {
	return len(b.materials)
}

// LastStats returns the statistics of the most recent Bind call.
func (b *Binder) LastStats() Stats {
	return b.stats
}

// Bind merges the geometry-bearing cells into out and returns the material
// of each submesh of out, in ascending tag order. Tags come from classify,
// or from each cell's cached tag when classify is nil. An all-empty input
// leaves out empty and returns an empty list.
func (b *Binder) Bind(cells []cell.Cell, classify cell.Classifier, out *mesh.Mesh) ([]*assets.Material, error) {
	b.reset()

	for i := range cells {
		c := &cells[i]
		if !c.HasGeometry || c.Fragment == nil {
			continue
		}

		tag := c.Tag
		if classify != nil {
			tag = classify(c.Position)
		}
		if tag < 0 || tag >= len(b.materials) {
			out.Reset()
			return nil, fmt.Errorf("%w: cell %v has tag %d, %d materials",
				ErrTagOutOfRange, c.Coord, tag, len(b.materials))
		}

		b.groups[tag] = append(b.groups[tag], mesh.Instance{
			Mesh:      c.Fragment,
			Transform: c.Transform(),
		})
		b.stats.Fragments++
	}

	result := make([]*assets.Material, 0, len(b.materials))
	for tag, group := range b.groups {
		if len(group) == 0 {
			continue
		}

		merged := b.pool.Get()
		merged.Combine(group, true)
		b.instances = append(b.instances, mesh.Instance{Mesh: merged, Transform: mgl32.Ident4()})
		result = append(result, b.materials[tag])
	}
	b.stats.Groups = len(result)

	out.Combine(b.instances, false)
	if b.opts.SmoothNormals {
		mesh.SmoothNormals(out.Vertices)
	}

	b.opts.Metrics.Bound(b.stats.Fragments, b.stats.Groups)
	return result, nil
}

// reset rewinds per-call state without releasing buffers.
func (b *Binder) reset() {
	for i := range b.groups {
		clear(b.groups[i])
		b.groups[i] = b.groups[i][:0]
	}
	clear(b.instances)
	b.instances = b.instances[:0]
	b.pool.Reset()
	b.stats = Stats{}
}
