package binder

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
)

// registration stores a provider together with any built instance, so the
// preserve-but-refresh strategy can swap providers without losing identity.
type registration struct {
	kind     Kind
	provide  Provider
	instance any
	built    bool

	// fresh marks a public registration made during the current export
	// pass. ResetPublicScope clears it, so re-exporting the same contract
	// on a later pass is not a duplicate.
	fresh bool
}

// scopedBinder is the default Binder implementation.
//
// Registrations are never touched by more than one in-flight binds/exports
// sequence at a time, but resolution may be hit concurrently by sibling
// modules reading an exported lazy singleton. The mutex therefore guards
// map access and instance caching; providers always run outside the lock so
// they can resolve their own dependencies re-entrantly.
type scopedBinder struct {
	mu sync.Mutex

	name    string
	parent  Binder
	imports []Binder

	private map[reflect.Type]*registration
	public  map[reflect.Type]*registration

	exportMode bool
	sealed     bool
	strategy   Strategy
}

// New creates a scoped binder chained to an optional parent.
func New(parent Binder) Binder {
	return &scopedBinder{
		parent:  parent,
		private: make(map[reflect.Type]*registration),
		public:  make(map[reflect.Type]*registration),
	}
}

// Register writes a registration into the partition selected by export mode,
// honoring the active strategy. KindInstance providers run immediately.
func (b *scopedBinder) Register(t reflect.Type, kind Kind, provide Provider) error {
	b.mu.Lock()

	owner := b.describe()
	target := b.private
	if b.exportMode {
		if b.sealed {
			b.mu.Unlock()
			return moderrors.New(moderrors.ErrCodeSealedScope,
				"cannot register %s in %s: public scope is sealed", t, owner)
		}
		target = b.public
	}

	if existing, ok := target[t]; ok {
		switch b.strategy {
		case PreserveExisting:
			if existing.built {
				existing.kind = kind
				existing.provide = provide
				existing.fresh = true
				b.mu.Unlock()
				return nil
			}
			// Never resolved: plain replacement below.
		case Replace:
			if b.exportMode && existing.fresh {
				b.mu.Unlock()
				return moderrors.New(moderrors.ErrCodeDuplicateExport,
					"%s is already exported by %s", t, owner)
			}
			// Private or stale export: overwrite silently.
		}
	}

	reg := &registration{kind: kind, provide: provide, fresh: true}
	target[t] = reg
	b.mu.Unlock()

	if kind != KindInstance {
		return nil
	}

	// Eager build, outside the lock so the provider can resolve.
	v, err := provide(b)
	if err != nil {
		b.mu.Lock()
		if target[t] == reg {
			delete(target, t)
		}
		b.mu.Unlock()
		return err
	}
	b.mu.Lock()
	reg.instance = v
	reg.built = true
	b.mu.Unlock()
	return nil
}

// Get resolves t across local private → local public → each import's
// public-only view → the parent's full chain.
func (b *scopedBinder) Get(t reflect.Type) (any, error) {
	v, err := b.TryGet(t)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &moderrors.NotFoundError{
			Requested: t,
			Owner:     b.Name(),
			Visible:   b.LocalTypes(),
		}
	}
	return v, nil
}

// TryGet is the non-throwing variant of Get: (nil, nil) when absent.
func (b *scopedBinder) TryGet(t reflect.Type) (any, error) {
	if reg := b.local(t); reg != nil {
		return b.resolve(reg)
	}

	b.mu.Lock()
	imports := slices.Clone(b.imports)
	parent := b.parent
	b.mu.Unlock()

	for _, imp := range imports {
		v, err := imp.TryGetPublic(t)
		if err != nil || v != nil {
			return v, err
		}
	}
	if parent != nil {
		return parent.TryGet(t)
	}
	return nil, nil
}

// Parent resolves t against the parent chain only.
func (b *scopedBinder) Parent(t reflect.Type) (any, error) {
	b.mu.Lock()
	parent := b.parent
	b.mu.Unlock()
	if parent == nil {
		return nil, &moderrors.NotFoundError{Requested: t, Owner: b.Name()}
	}
	return parent.Get(t)
}

// TryParent is the non-throwing variant of Parent.
func (b *scopedBinder) TryParent(t reflect.Type) (any, error) {
	b.mu.Lock()
	parent := b.parent
	b.mu.Unlock()
	if parent == nil {
		return nil, nil
	}
	return parent.TryGet(t)
}

// Contains walks the same chain as Get as a boolean existence check.
func (b *scopedBinder) Contains(t reflect.Type) bool {
	if b.local(t) != nil {
		return true
	}

	b.mu.Lock()
	imports := slices.Clone(b.imports)
	parent := b.parent
	b.mu.Unlock()

	for _, imp := range imports {
		if imp.ContainsPublic(t) {
			return true
		}
	}
	return parent != nil && parent.Contains(t)
}

// TryGetPublic restricts lookup to the local public partition only.
func (b *scopedBinder) TryGetPublic(t reflect.Type) (any, error) {
	b.mu.Lock()
	reg, ok := b.public[t]
	b.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return b.resolve(reg)
}

// ContainsPublic reports whether t is in the local public partition.
func (b *scopedBinder) ContainsPublic(t reflect.Type) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.public[t]
	return ok
}

// EnableExportMode directs registrations into the public partition.
func (b *scopedBinder) EnableExportMode() {
	b.mu.Lock()
	b.exportMode = true
	b.mu.Unlock()
}

// DisableExportMode restores the private partition as the write target.
func (b *scopedBinder) DisableExportMode() {
	b.mu.Lock()
	b.exportMode = false
	b.mu.Unlock()
}

// SealPublicScope rejects further export-mode registrations.
func (b *scopedBinder) SealPublicScope() {
	b.mu.Lock()
	b.sealed = true
	b.mu.Unlock()
}

// ResetPublicScope lifts the seal and retires the current export pass so
// hot reload can re-register the same contracts.
func (b *scopedBinder) ResetPublicScope() {
	b.mu.Lock()
	b.sealed = false
	for _, reg := range b.public {
		reg.fresh = false
	}
	b.mu.Unlock()
}

// AttachImports chains the public-only views of other binders.
func (b *scopedBinder) AttachImports(imports []Binder) {
	b.mu.Lock()
	b.imports = slices.Clone(imports)
	b.mu.Unlock()
}

// LocalTypes lists the locally registered types across both partitions.
func (b *scopedBinder) LocalTypes() []reflect.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]reflect.Type, 0, len(b.private)+len(b.public))
	for t := range b.private {
		out = append(out, t)
	}
	for t := range b.public {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, c reflect.Type) int {
		return strings.Compare(a.String(), c.String())
	})
	return out
}

// Name identifies the owning module in errors and logs.
func (b *scopedBinder) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SetName records the owning module's name.
func (b *scopedBinder) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

// Clear drops every registration and cached instance.
func (b *scopedBinder) Clear() {
	b.mu.Lock()
	b.private = make(map[reflect.Type]*registration)
	b.public = make(map[reflect.Type]*registration)
	b.imports = nil
	b.mu.Unlock()
}

// RunWithStrategy runs body with the given re-registration strategy active,
// restoring the previous strategy afterwards.
func (b *scopedBinder) RunWithStrategy(s Strategy, body func() error) error {
	b.mu.Lock()
	prev := b.strategy
	b.strategy = s
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.strategy = prev
		b.mu.Unlock()
	}()
	return body()
}

// local finds a registration in either local partition.
func (b *scopedBinder) local(t reflect.Type) *registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.private[t]; ok {
		return r
	}
	if r, ok := b.public[t]; ok {
		return r
	}
	return nil
}

// resolve builds or returns the registration's value. Lazy singletons are
// double-checked: the provider runs outside the lock, and if two readers
// raced, the first stored instance wins so singleton identity is stable.
func (b *scopedBinder) resolve(reg *registration) (any, error) {
	if reg.kind == KindFactory {
		b.mu.Lock()
		provide := reg.provide
		b.mu.Unlock()
		return provide(b)
	}

	b.mu.Lock()
	if reg.built {
		v := reg.instance
		b.mu.Unlock()
		return v, nil
	}
	provide := reg.provide
	b.mu.Unlock()

	v, err := provide(b)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if !reg.built {
		reg.instance = v
		reg.built = true
	}
	v = reg.instance
	b.mu.Unlock()
	return v, nil
}

// describe names the binder for error messages. Caller holds mu.
func (b *scopedBinder) describe() string {
	if b.name != "" {
		return b.name
	}
	return "binder"
}

// Ensure scopedBinder implements the contracts.
var (
	_ Binder            = (*scopedBinder)(nil)
	_ RegistrationAware = (*scopedBinder)(nil)
)
