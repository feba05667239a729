package mesh

// Pool hands out preallocated meshes by position. Reset rewinds the position
// without releasing anything, so meshes and their buffers are reused across
// calls.
type Pool struct {
	meshes []*Mesh
	next   int
}

// NewPool creates a pool holding size meshes.
func NewPool(size int) *Pool {
	p := &Pool{meshes: make([]*Mesh, size)}
	for i := range p.meshes {
		p.meshes[i] = &Mesh{}
	}
	return p
}

// Reset rewinds the pool to its first mesh.
func (p *Pool) Reset() {
	p.next = 0
}

// Get returns the next mesh. If the pool is exhausted it grows by one.
func (p *Pool) Get() *Mesh {
	if p.next == len(p.meshes) {
		p.meshes = append(p.meshes, &Mesh{})
	}
	m := p.meshes[p.next]
	p.next++
	return m
}

// Used returns how many meshes were handed out since the last Reset.
func (p *Pool) Used() int {
	return p.next
}

// Cap returns the number of meshes owned by the pool.
func (p *Pool) Cap() int {
	return len(p.meshes)
}
