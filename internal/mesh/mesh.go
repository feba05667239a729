package mesh

import "github.com/go-gl/mathgl/mgl32"

// Reset empties the mesh while keeping its buffers for reuse.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
	m.SubMeshes = m.SubMeshes[:0]
	m.Bounds = Bounds{}
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// AddTriangle appends a flat-shaded triangle. Fragments built this way carry
// no submesh table.
func (m *Mesh) AddTriangle(a, b, c, normal mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	if len(m.Vertices) == 0 {
		m.Bounds = emptyBounds()
	}
	m.Vertices = append(m.Vertices,
		Vertex{Position: a, Normal: normal},
		Vertex{Position: b, Normal: normal},
		Vertex{Position: c, Normal: normal},
	)
	m.Indices = append(m.Indices, base, base+1, base+2)
	updateBounds(&m.Bounds, a)
	updateBounds(&m.Bounds, b)
	updateBounds(&m.Bounds, c)
}

// Combine replaces the contents of m with the given instances, transforming
// every vertex by its instance transform. With mergeSubMeshes the result has
// a single submesh; otherwise each instance becomes one submesh, in order.
// Instances with a nil mesh contribute an empty submesh when not merging.
func (m *Mesh) Combine(instances []Instance, mergeSubMeshes bool) {
	m.Reset()
	if len(instances) == 0 {
		return
	}
	m.Bounds = emptyBounds()

	for _, inst := range instances {
		start := int32(len(m.Indices))
		if inst.Mesh != nil {
			m.appendTransformed(inst.Mesh, inst.Transform)
		}
		if !mergeSubMeshes {
			m.SubMeshes = append(m.SubMeshes, SubMesh{
				StartIndex: start,
				IndexCount: int32(len(m.Indices)) - start,
			})
		}
	}

	if mergeSubMeshes {
		m.SubMeshes = append(m.SubMeshes, SubMesh{StartIndex: 0, IndexCount: int32(len(m.Indices))})
	}
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
	}
}

func (m *Mesh) appendTransformed(src *Mesh, transform mgl32.Mat4) {
	base := uint32(len(m.Vertices))
	normalMat := transform.Mat3()

	for _, v := range src.Vertices {
		p := transform.Mul4x1(v.Position.Vec4(1)).Vec3()
		n := normalMat.Mul3x1(v.Normal)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: n})
		updateBounds(&m.Bounds, p)
	}
	for _, idx := range src.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// SubMeshTriangles returns the first triangle and the triangle count of
// submesh i.
func (m *Mesh) SubMeshTriangles(i int) (first, count int) {
	sm := m.SubMeshes[i]
	return int(sm.StartIndex) / 3, int(sm.IndexCount) / 3
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
