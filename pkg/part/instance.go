package part

import (
	"github.com/chazu/timberframe/pkg/geom"
	"github.com/google/uuid"
)

// Instance is one placed copy of a template.
type Instance struct {
	ID        string
	Role      Role
	Template  *Template
	Transform Transform
}

// NewInstance returns an instance with a fresh short ID.
func NewInstance(role Role, tmpl *Template, xf Transform) *Instance {
	return &Instance{
		ID:        uuid.New().String()[:8],
		Role:      role,
		Template:  tmpl,
		Transform: xf,
	}
}

// Name is the display name used for meshes and exports.
func (in *Instance) Name() string {
	return in.Role.String() + "-" + in.ID
}

// Bounds returns the world-space bounding box.
func (in *Instance) Bounds() geom.Box3 {
	return in.Transform.ApplyBox(in.Template.Bounds())
}

// Length returns the world length of the instance along its own local X
// axis, the measurement used for cut lists.
func (in *Instance) Length() float64 {
	return in.Template.Size().X * in.Transform.Scale.X
}
