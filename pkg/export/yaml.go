package export

import (
	"fmt"
	"io"
	"time"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
	"gopkg.in/yaml.v3"
)

// Layout is the serializable description of an assembled building.
type Layout struct {
	Building   string          `yaml:"building"`
	Created    time.Time       `yaml:"created"`
	Dimensions part.Dimensions `yaml:"dimensions"`
	Bounds     geom.Box3       `yaml:"bounds"`
	Parts      []LayoutPart    `yaml:"parts"`
	BOM        []BOMLine       `yaml:"bom"`
}

// LayoutPart is one placed instance.
type LayoutPart struct {
	ID        string          `yaml:"id"`
	Role      part.Role       `yaml:"role"`
	Template  part.Identifier `yaml:"template"`
	Transform part.Transform  `yaml:"transform"`
	Bounds    geom.Box3       `yaml:"bounds"`
}

// NewLayout captures b in emission order.
func NewLayout(b *part.Building) *Layout {
	l := &Layout{
		Building:   b.ID,
		Created:    b.Created.UTC(),
		Dimensions: b.Dimensions,
		Bounds:     b.Bounds(),
		BOM:        BillOfMaterials(b),
	}
	for _, in := range b.Instances() {
		l.Parts = append(l.Parts, LayoutPart{
			ID:        in.ID,
			Role:      in.Role,
			Template:  in.Template.ID(),
			Transform: in.Transform,
			Bounds:    in.Bounds(),
		})
	}
	return l
}

// WriteYAML encodes the layout of b.
func WriteYAML(w io.Writer, b *part.Building) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewLayout(b)); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a layout written by WriteYAML.
func ReadYAML(r io.Reader) (*Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return &l, nil
}
