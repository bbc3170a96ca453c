// Package override provides the immutable override-scope tree consumed by
// the module lifecycle engine.
//
// A Scope pairs an optional list of self-override callbacks with a map from
// imported-module-type to a child scope. Self overrides run against a
// module's binder between its binds and exports phases, so they may shadow
// private registrations the export phase depends on. A child subtree
// applies only to that child's own binds/exports cycle.
//
// Scopes compose without mutation: every combinator returns a new node.
// Node identity matters — the engine keys module controllers by
// (module type, scope node reference), so two structurally identical scopes
// built separately still produce independent module instances.
package override

import (
	"maps"
	"reflect"
	"slices"

	"github.com/modkit-go/modkit/pkg/binder"
)

// Callback mutates a module's binder between its binds and exports phases.
type Callback func(b binder.Binder) error

// Scope is one node of the override tree. The zero value and the nil
// pointer are both valid empty scopes.
type Scope struct {
	self     []Callback
	children map[reflect.Type]*Scope
}

// New creates an empty scope.
func New() *Scope {
	return &Scope{}
}

// WithAdditionalOverride returns a new scope whose self-override runs the
// existing callbacks, then cb.
func (s *Scope) WithAdditionalOverride(cb Callback) *Scope {
	if cb == nil {
		return s
	}
	out := s.clone()
	out.self = append(out.self, cb)
	return out
}

// WithChild returns a new scope carrying child as the subtree for the
// imported module type t. An existing subtree for t is replaced.
func (s *Scope) WithChild(t reflect.Type, child *Scope) *Scope {
	out := s.clone()
	if out.children == nil {
		out.children = make(map[reflect.Type]*Scope, 1)
	}
	out.children[t] = child
	return out
}

// WithChildFor is WithChild with the type token derived from M.
func WithChildFor[M any](s *Scope, child *Scope) *Scope {
	return s.WithChild(binder.TypeOf[M](), child)
}

// ChildFor returns the subtree for one imported module type, or nil.
func (s *Scope) ChildFor(t reflect.Type) *Scope {
	if s == nil {
		return nil
	}
	return s.children[t]
}

// Apply runs the self-override callbacks against b in registration order.
func (s *Scope) Apply(b binder.Binder) error {
	if s == nil {
		return nil
	}
	for _, cb := range s.self {
		if err := cb(b); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the scope carries no overrides at any depth.
func (s *Scope) IsEmpty() bool {
	if s == nil {
		return true
	}
	if len(s.self) > 0 {
		return false
	}
	for _, child := range s.children {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

// Merge deep-unions two trees into a new one. At every matching node the
// receiver's callbacks run before other's.
func (s *Scope) Merge(other *Scope) *Scope {
	if s == nil {
		return other
	}
	if other == nil {
		return s
	}

	out := &Scope{
		self: slices.Concat(s.self, other.self),
	}
	if len(s.children) > 0 || len(other.children) > 0 {
		out.children = make(map[reflect.Type]*Scope, len(s.children)+len(other.children))
		maps.Copy(out.children, s.children)
		for t, theirs := range other.children {
			if ours, ok := out.children[t]; ok {
				out.children[t] = ours.Merge(theirs)
			} else {
				out.children[t] = theirs
			}
		}
	}
	return out
}

// clone copies the node one level deep; child subtrees are shared since
// they are themselves immutable.
func (s *Scope) clone() *Scope {
	if s == nil {
		return &Scope{}
	}
	out := &Scope{
		self: slices.Clone(s.self),
	}
	if s.children != nil {
		out.children = maps.Clone(s.children)
	}
	return out
}
