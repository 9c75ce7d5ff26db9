package asset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/udhos/gwob"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/kernel"
	"github.com/chazu/timberframe/pkg/part"
)

var log = logging.Logger("tf-asset")

// FileStore loads Wavefront OBJ geometry and MTL materials from a
// filesystem. Identifier paths are relative to the filesystem root.
type FileStore struct {
	fsys fs.FS
}

// NewFileStore returns a store reading from fsys.
func NewFileStore(fsys fs.FS) *FileStore {
	return &FileStore{fsys: fsys}
}

// Resolve implements Store. The material is the one the geometry selects
// with usemtl, or the first by name when it selects none. An empty Material
// path yields part.DefaultMaterial.
func (s *FileStore) Resolve(ctx context.Context, id part.Identifier) (*part.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mesh, bounds, usemtl, err := s.readOBJ(id.Geometry)
	if err != nil {
		return nil, err
	}

	mat := part.DefaultMaterial
	if id.Material != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lib, err := s.readMTL(id.Material)
		if err != nil {
			return nil, err
		}
		m, ok := pickMaterial(materials(lib), usemtl)
		switch {
		case ok:
			mat = m
		case usemtl != "":
			return nil, fmt.Errorf("%w: material %q in %s", ErrNotFound, usemtl, id.Material)
		}
	}
	mesh.PartName = mat.Name
	return part.NewTemplate(id, bounds, mat, mesh, nil)
}

func (s *FileStore) open(name string) (fs.File, error) {
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, err
}

func (s *FileStore) readOBJ(name string) (*kernel.Mesh, geom.Box3, string, error) {
	f, err := s.open(name)
	if err != nil {
		return nil, geom.Box3{}, "", err
	}
	defer f.Close()

	o, err := gwob.NewObjFromReader(name, bufio.NewReader(f), parserOptions())
	if err != nil {
		return nil, geom.Box3{}, "", fmt.Errorf("%s: %w", name, err)
	}
	mesh, err := meshFromObj(o)
	if err != nil {
		return nil, geom.Box3{}, "", fmt.Errorf("%s: %w", name, err)
	}
	bounds := geom.EmptyBox()
	for i := 0; i < mesh.VertexCount(); i++ {
		x, y, z := mesh.Vertex(i)
		bounds = bounds.ExpandByPoint(geom.V(x, y, z))
	}
	return mesh, bounds, firstUsemtl(o), nil
}

func (s *FileStore) readMTL(name string) (gwob.MaterialLib, error) {
	f, err := s.open(name)
	if err != nil {
		return gwob.MaterialLib{}, err
	}
	defer f.Close()

	lib, err := gwob.ReadMaterialLibFromReader(bufio.NewReader(f), parserOptions())
	if err != nil {
		return gwob.MaterialLib{}, fmt.Errorf("%s: %w", name, err)
	}
	return lib, nil
}

func parserOptions() *gwob.ObjParserOptions {
	return &gwob.ObjParserOptions{
		Logger: func(msg string) { log.Debugf("obj: %s", strings.TrimSpace(msg)) },
	}
}

// ParseOBJ reads Wavefront OBJ geometry into a flat triangle mesh. Every
// face corner becomes its own vertex; corners without a normal get the
// flat normal of their face.
func ParseOBJ(r io.Reader) (*kernel.Mesh, error) {
	o, err := gwob.NewObjFromReader("obj", bufio.NewReader(r), parserOptions())
	if err != nil {
		return nil, err
	}
	return meshFromObj(o)
}

func meshFromObj(o *gwob.Obj) (*kernel.Mesh, error) {
	if len(o.Indices) < 3 {
		return nil, errors.New("no faces")
	}

	stride := o.StrideSize / 4
	elems := o.NumberOfElements()
	corner := func(i int) (geom.Vec3, geom.Vec3, error) {
		if i < 0 || i >= elems {
			return geom.Vec3{}, geom.Vec3{}, fmt.Errorf("index %d out of range (have %d)", i, elems)
		}
		x, y, z, err := o.VertexCoordinates(i)
		if err != nil {
			return geom.Vec3{}, geom.Vec3{}, err
		}
		var n geom.Vec3
		if o.NormCoordFound {
			off := i*stride + o.StrideOffsetNormal/4
			n = geom.V(float64(o.Coord[off]), float64(o.Coord[off+1]), float64(o.Coord[off+2]))
		}
		return geom.V(float64(x), float64(y), float64(z)), n, nil
	}

	mesh := &kernel.Mesh{Indices: make([]uint32, 0, len(o.Indices))}
	for t := 0; t+2 < len(o.Indices); t += 3 {
		var p, n [3]geom.Vec3
		for j := 0; j < 3; j++ {
			var err error
			if p[j], n[j], err = corner(o.Indices[t+j]); err != nil {
				return nil, err
			}
		}
		flat := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
		for j := 0; j < 3; j++ {
			nj := n[j]
			if nj.Length() == 0 {
				nj = flat
			}
			mesh.Vertices = append(mesh.Vertices, float32(p[j].X), float32(p[j].Y), float32(p[j].Z))
			mesh.Normals = append(mesh.Normals, float32(nj.X), float32(nj.Y), float32(nj.Z))
			mesh.Indices = append(mesh.Indices, uint32(len(mesh.Indices)))
		}
	}
	return mesh, nil
}

func firstUsemtl(o *gwob.Obj) string {
	for _, g := range o.Groups {
		if g.Usemtl != "" {
			return g.Usemtl
		}
	}
	return ""
}

// ParseMTL reads the materials of an MTL library, sorted by name.
func ParseMTL(r io.Reader) ([]part.Material, error) {
	lib, err := gwob.ReadMaterialLibFromReader(bufio.NewReader(r), parserOptions())
	if err != nil {
		return nil, err
	}
	return materials(lib), nil
}

func materials(lib gwob.MaterialLib) []part.Material {
	mats := make([]part.Material, 0, len(lib.Lib))
	for name, m := range lib.Lib {
		mats = append(mats, part.Material{
			Name:    name,
			Diffuse: [3]float64{float64(m.Kd[0]), float64(m.Kd[1]), float64(m.Kd[2])},
			Opacity: 1,
		})
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].Name < mats[j].Name })
	return mats
}

// pickMaterial returns the material named by the geometry's first usemtl,
// or the library's first material by name when the geometry names none.
func pickMaterial(mats []part.Material, usemtl string) (part.Material, bool) {
	for _, m := range mats {
		if m.Name == usemtl {
			return m, true
		}
	}
	if usemtl == "" && len(mats) > 0 {
		return mats[0], true
	}
	return part.Material{}, false
}
