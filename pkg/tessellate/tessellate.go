// Package tessellate turns a building into world-space triangle meshes,
// one per placed instance, for viewers and exporters.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/kernel"
	"github.com/chazu/timberframe/pkg/part"
)

// ErrNoGeometry is returned for a template that has neither a mesh nor a
// solid when no kernel is available to box its bounds.
var ErrNoGeometry = errors.New("template has no geometry")

// Tessellate produces one mesh per instance of b, in emission order. Each
// template's local mesh is computed once and then transformed per instance.
// Templates without a mesh are tessellated with k: from their solid when
// they carry one, otherwise as a box filling their bounds. k may be nil
// when every template already has a mesh. The building is never mutated.
func Tessellate(b *part.Building, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if b == nil {
		return nil, nil
	}

	local := make(map[*part.Template]*kernel.Mesh)
	meshes := make([]*kernel.Mesh, 0, b.Len())
	for _, in := range b.Instances() {
		m, ok := local[in.Template]
		if !ok {
			var err error
			m, err = templateMesh(in.Template, k)
			if err != nil {
				return nil, fmt.Errorf("tessellate: %s: %w", in.Name(), err)
			}
			local[in.Template] = m
		}
		world := Transform(m, in.Transform)
		world.PartName = in.Name()
		meshes = append(meshes, world)
	}
	return meshes, nil
}

// templateMesh returns the template-local mesh, building it with k if needed.
func templateMesh(t *part.Template, k kernel.Kernel) (*kernel.Mesh, error) {
	if m := t.Mesh(); !m.IsEmpty() {
		return m, nil
	}
	if k == nil {
		return nil, ErrNoGeometry
	}
	solid := t.Solid()
	if solid == nil {
		b := t.Bounds()
		s := b.Size()
		solid = k.Translate(k.Box(s.X, s.Y, s.Z), b.Min.X, b.Min.Y, b.Min.Z)
	}
	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	return m, nil
}

// Transform returns a copy of m placed by xf. Normals are transformed by
// the inverse scale before rotation so they stay perpendicular under
// non-uniform scaling. Indices are shared with m.
func Transform(m *kernel.Mesh, xf part.Transform) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  m.Indices,
		PartName: m.PartName,
	}
	inv := geom.V(1/xf.Scale.X, 1/xf.Scale.Y, 1/xf.Scale.Z)
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertex(i)
		p := xf.Apply(geom.V(x, y, z))
		out.Vertices[3*i], out.Vertices[3*i+1], out.Vertices[3*i+2] = float32(p.X), float32(p.Y), float32(p.Z)

		if 3*i+2 < len(m.Normals) {
			nx, ny, nz := m.Normal(i)
			n := geom.V(nx, ny, nz).Mul(inv).RotateY(xf.Rotation).Normalize()
			out.Normals[3*i], out.Normals[3*i+1], out.Normals[3*i+2] = float32(n.X), float32(n.Y), float32(n.Z)
		}
	}
	return out
}

// Bounds returns the box around every vertex of the meshes.
func Bounds(meshes []*kernel.Mesh) geom.Box3 {
	b := geom.EmptyBox()
	for _, m := range meshes {
		for i := 0; i < m.VertexCount(); i++ {
			x, y, z := m.Vertex(i)
			b = b.ExpandByPoint(geom.V(x, y, z))
		}
	}
	return b
}
