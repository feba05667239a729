package mesh

import "github.com/go-gl/mathgl/mgl32"

// SmoothNormals averages normals at shared vertex positions.
// This hides the facets between neighbouring cell fragments.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, indices := range posMap {
		if len(indices) < 2 {
			continue
		}

		var sum mgl32.Vec3
		for _, idx := range indices {
			sum = sum.Add(vertices[idx].Normal)
		}
		if sum.Len() == 0 {
			continue
		}

		avg := sum.Normalize()
		for _, idx := range indices {
			vertices[idx].Normal = avg
		}
	}
}
