// Package mesh provides the triangle mesh type shared by cell fragments and
// chunk meshes, and the merge operation that combines them.
package mesh

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a mesh vertex with position and normal.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// SubMesh is a contiguous index range drawn with one material.
type SubMesh struct {
	StartIndex int32
	IndexCount int32
}

// Mesh holds vertices, triangle indices and the submesh table.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	SubMeshes []SubMesh
	Bounds    Bounds
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Instance places a source mesh with a transform for merging.
type Instance struct {
	Mesh      *Mesh
	Transform mgl32.Mat4
}

// emptyBounds is inverted so the first point sets both corners.
func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
}
