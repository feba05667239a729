// Package extract provides a marching-tetrahedra isosurface extractor.
//
// Each cell is split into six tetrahedra around the diagonal from corner 3
// (0,0,0) to corner 5 (1,1,1). A sample is solid when it is at or above the
// iso level. Triangles face away from the solid side.
package extract

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxel-terrain/internal/cell"
	"github.com/Faultbox/voxel-terrain/internal/mesh"
)

// ErrNonFinite is returned for a NaN or infinite corner sample.
var ErrNonFinite = errors.New("non-finite corner sample")

var tetrahedra = [6][4]int{
	{3, 2, 6, 5},
	{3, 2, 1, 5},
	{3, 7, 6, 5},
	{3, 7, 4, 5},
	{3, 0, 1, 5},
	{3, 0, 4, 5},
}

// Tetrahedra is a stateless cell.Extractor.
type Tetrahedra struct{}

var _ cell.Extractor = Tetrahedra{}

// Extract implements cell.Extractor.
func (Tetrahedra) Extract(corners [8]float32, isoLevel float32) (*mesh.Mesh, bool, error) {
	solid := 0
	for i, v := range corners {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, false, fmt.Errorf("%w: corner %d is %v", ErrNonFinite, i, v)
		}
		if v >= isoLevel {
			solid++
		}
	}
	if solid == 0 || solid == 8 {
		return nil, false, nil
	}

	m := &mesh.Mesh{}
	for _, tet := range tetrahedra {
		polygonise(m, corners, tet, isoLevel)
	}
	if m.IsEmpty() {
		return nil, false, nil
	}
	return m, true, nil
}

func polygonise(m *mesh.Mesh, corners [8]float32, tet [4]int, iso float32) {
	var in, out []int
	for _, c := range tet {
		if corners[c] >= iso {
			in = append(in, c)
		} else {
			out = append(out, c)
		}
	}

	switch len(in) {
	case 1:
		a := in[0]
		emit(m, in, out,
			crossing(corners, a, out[0], iso),
			crossing(corners, a, out[1], iso),
			crossing(corners, a, out[2], iso))
	case 3:
		b := out[0]
		emit(m, in, out,
			crossing(corners, in[0], b, iso),
			crossing(corners, in[1], b, iso),
			crossing(corners, in[2], b, iso))
	case 2:
		a, b := in[0], in[1]
		c, d := out[0], out[1]
		// a-c, a-d, b-d, b-c walk the quad's boundary
		p0 := crossing(corners, a, c, iso)
		p1 := crossing(corners, a, d, iso)
		p2 := crossing(corners, b, d, iso)
		p3 := crossing(corners, b, c, iso)
		emit(m, in, out, p0, p1, p2)
		emit(m, in, out, p0, p2, p3)
	}
}

// emit appends the triangle wound so its normal points toward the open side.
func emit(m *mesh.Mesh, in, out []int, p0, p1, p2 mgl32.Vec3) {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Len() < 1e-12 {
		return
	}
	if n.Dot(centroid(out).Sub(centroid(in))) < 0 {
		p1, p2 = p2, p1
		n = n.Mul(-1)
	}
	m.AddTriangle(p0, p1, p2, n.Normalize())
}

// crossing returns the iso crossing on the edge from corner a to corner b.
func crossing(corners [8]float32, a, b int, iso float32) mgl32.Vec3 {
	pa, pb := corner(a), corner(b)
	va, vb := corners[a], corners[b]
	t := float32(0.5)
	if va != vb {
		t = (iso - va) / (vb - va)
	}
	return pa.Add(pb.Sub(pa).Mul(t))
}

func corner(i int) mgl32.Vec3 {
	o := cell.CornerOffsets[i]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

func centroid(idx []int) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, i := range idx {
		sum = sum.Add(corner(i))
	}
	return sum.Mul(1 / float32(len(idx)))
}
