package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/timberframe/pkg/kernel"
)

// WriteOBJ writes meshes as one Wavefront OBJ document with an object per
// mesh. Face indices are global and 1-based.
func WriteOBJ(w io.Writer, meshes []*kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# timberframe")

	offset, normalOffset := 0, 0
	for i, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		name := m.PartName
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i)
		}
		fmt.Fprintf(bw, "o %s\n", name)

		n := m.VertexCount()
		for v := 0; v < n; v++ {
			x, y, z := m.Vertex(v)
			fmt.Fprintf(bw, "v %g %g %g\n", x, y, z)
		}
		hasNormals := len(m.Normals) == len(m.Vertices)
		if hasNormals {
			for v := 0; v < n; v++ {
				x, y, z := m.Normal(v)
				fmt.Fprintf(bw, "vn %g %g %g\n", x, y, z)
			}
		}
		for t := 0; t+2 < len(m.Indices); t += 3 {
			a := int(m.Indices[t]) + offset + 1
			b := int(m.Indices[t+1]) + offset + 1
			c := int(m.Indices[t+2]) + offset + 1
			if hasNormals {
				d := normalOffset - offset
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a+d, b, b+d, c, c+d)
			} else {
				fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
			}
		}
		offset += n
		if hasNormals {
			normalOffset += n
		}
	}
	return bw.Flush()
}
