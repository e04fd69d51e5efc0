package kernel

import (
	"fmt"

	"github.com/hschendel/stl"
)

// Mesh is a triangle mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // product the mesh was rendered for
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoundingBox returns the axis-aligned bounds of the vertices. It returns
// zero vectors for an empty mesh.
func (m *Mesh) BoundingBox() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	copy(min[:], m.Vertices[:3])
	copy(max[:], m.Vertices[:3])
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := m.Vertices[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	return min, max
}

// Solid converts the mesh to an STL solid. Each triangle takes the normal
// of its first vertex.
func (m *Mesh) Solid() (*stl.Solid, error) {
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("kernel: mesh has %d indices, not a multiple of 3", len(m.Indices))
	}
	n := m.VertexCount()
	hasNormals := len(m.Normals) == len(m.Vertices)

	s := &stl.Solid{
		Name:      m.PartName,
		Triangles: make([]stl.Triangle, 0, m.TriangleCount()),
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		var tri stl.Triangle
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[t+j])
			if idx >= n {
				return nil, fmt.Errorf("kernel: index %d out of range for %d vertices", idx, n)
			}
			tri.Vertices[j] = stl.Vec3{m.Vertices[3*idx], m.Vertices[3*idx+1], m.Vertices[3*idx+2]}
		}
		if hasNormals {
			idx := int(m.Indices[t])
			tri.Normal = stl.Vec3{m.Normals[3*idx], m.Normals[3*idx+1], m.Normals[3*idx+2]}
		}
		s.Triangles = append(s.Triangles, tri)
	}
	return s, nil
}

// WriteSTL writes the mesh to path as binary STL.
func (m *Mesh) WriteSTL(path string) error {
	s, err := m.Solid()
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("kernel: writing %s: %w", path, err)
	}
	return nil
}
