// Package scene holds the instances currently shown to the user. The
// assembler inserts and removes instances through it; viewers and exporters
// read from it.
package scene

import (
	"sync"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
)

// Scene is a thread-safe, insertion-ordered set of instances keyed by ID.
type Scene struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*part.Instance
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{byID: make(map[string]*part.Instance)}
}

// Add inserts instances. An instance whose ID is already present replaces
// the previous one in place.
func (s *Scene) Add(insts ...*part.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range insts {
		if _, ok := s.byID[in.ID]; !ok {
			s.order = append(s.order, in.ID)
		}
		s.byID[in.ID] = in
	}
}

// Remove deletes the given instances. Unknown instances are ignored.
func (s *Scene) Remove(insts ...*part.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	for _, in := range insts {
		if _, ok := s.byID[in.ID]; ok {
			delete(s.byID, in.ID)
			removed = true
		}
	}
	if !removed {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// Instances returns a snapshot in insertion order.
func (s *Scene) Instances() []*part.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*part.Instance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of instances.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Bounds returns the union of every instance's world bounds, or an empty box.
func (s *Scene) Bounds() geom.Box3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := geom.EmptyBox()
	for _, in := range s.byID {
		b = b.Union(in.Bounds())
	}
	return b
}

// Clear removes everything.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.byID = make(map[string]*part.Instance)
}
