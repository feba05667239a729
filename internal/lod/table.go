// Package lod defines level-of-detail tiers and resamples the working
// scalar field when a chunk changes tier.
package lod

import (
	"errors"
	"fmt"
)

// ErrInvalidTable is returned for an inconsistent level table.
var ErrInvalidTable = errors.New("invalid level table")

// Level indexes the level table. Level 0 is the finest.
type Level int

// Spec describes one level.
type Spec struct {
	// Divisor reduces the chunk's cell count per axis; it is also the
	// sampling stride in field samples.
	Divisor int
	// CellSize is the world edge length of one cell at this level.
	CellSize float32
}

// Table holds the level specs for a given base chunk size.
type Table struct {
	chunkSize int
	levels    []Spec
}

// NewTable validates and builds a level table. chunkSize is the number of
// finest cells per chunk axis.
func NewTable(chunkSize int, levels []Spec) (*Table, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidTable, chunkSize)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidTable)
	}
	if levels[0].Divisor != 1 {
		return nil, fmt.Errorf("%w: level 0 divisor is %d, want 1", ErrInvalidTable, levels[0].Divisor)
	}
	for i, l := range levels {
		if l.Divisor <= 0 || chunkSize%l.Divisor != 0 {
			return nil, fmt.Errorf("%w: level %d divisor %d does not divide chunk size %d",
				ErrInvalidTable, i, l.Divisor, chunkSize)
		}
		if i > 0 && l.Divisor < levels[i-1].Divisor {
			return nil, fmt.Errorf("%w: level %d is finer than level %d", ErrInvalidTable, i, i-1)
		}
		if l.CellSize <= 0 {
			return nil, fmt.Errorf("%w: level %d cell size %v", ErrInvalidTable, i, l.CellSize)
		}
	}

	t := &Table{chunkSize: chunkSize, levels: make([]Spec, len(levels))}
	copy(t.levels, levels)
	return t, nil
}

// Len returns the number of levels.
func (t *Table) Len() int { return len(t.levels) }

// ChunkSize returns the finest-level cells per chunk axis.
func (t *Table) ChunkSize() int { return t.chunkSize }

// Valid reports whether l is in the table.
func (t *Table) Valid(l Level) bool {
	return l >= 0 && int(l) < len(t.levels)
}

// Coarsest returns the last level.
func (t *Table) Coarsest() Level {
	return Level(len(t.levels) - 1)
}

// CellCount returns the cells per chunk axis at l.
func (t *Table) CellCount(l Level) int {
	return t.chunkSize / t.levels[l].Divisor
}

// Stride returns the field samples spanned by one cell at l.
func (t *Table) Stride(l Level) int {
	return t.levels[l].Divisor
}

// CellSize returns the world edge length of a cell at l.
func (t *Table) CellSize(l Level) float32 {
	return t.levels[l].CellSize
}
