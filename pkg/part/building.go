package part

import (
	"time"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/google/uuid"
)

// Building is the result of one build request: every placed instance in
// emission order plus the aggregate bounds.
type Building struct {
	ID         string
	Dimensions Dimensions
	Created    time.Time

	instances []*Instance
	bounds    geom.Box3
}

// NewBuilding returns an empty building for dims.
func NewBuilding(dims Dimensions) *Building {
	return &Building{
		ID:         uuid.NewString(),
		Dimensions: dims,
		Created:    time.Now(),
		bounds:     geom.EmptyBox(),
	}
}

// Add appends instances and recomputes the aggregate bounds.
func (b *Building) Add(insts ...*Instance) {
	b.instances = append(b.instances, insts...)
	b.recompute()
}

// Instances returns the instances in emission order. The slice is a copy.
func (b *Building) Instances() []*Instance {
	out := make([]*Instance, len(b.instances))
	copy(out, b.instances)
	return out
}

// Len returns the number of instances.
func (b *Building) Len() int {
	return len(b.instances)
}

// Bounds returns the union of every instance's world bounds.
func (b *Building) Bounds() geom.Box3 {
	return b.bounds
}

// ByRole returns the instances with the given role in emission order.
func (b *Building) ByRole(r Role) []*Instance {
	var out []*Instance
	for _, in := range b.instances {
		if in.Role == r {
			out = append(out, in)
		}
	}
	return out
}

// CountByRole returns how many instances each role contributed.
func (b *Building) CountByRole() map[Role]int {
	counts := make(map[Role]int, len(Roles))
	for _, in := range b.instances {
		counts[in.Role]++
	}
	return counts
}

// Templates returns the distinct template used by each role.
func (b *Building) Templates() map[Role]*Template {
	out := make(map[Role]*Template)
	for _, in := range b.instances {
		if _, ok := out[in.Role]; !ok {
			out[in.Role] = in.Template
		}
	}
	return out
}

// Translate moves every instance by d.
func (b *Building) Translate(d geom.Vec3) {
	for _, in := range b.instances {
		in.Transform = in.Transform.Translate(d)
	}
	b.recompute()
}

func (b *Building) recompute() {
	box := geom.EmptyBox()
	for _, in := range b.instances {
		box = box.Union(in.Bounds())
	}
	b.bounds = box
}
