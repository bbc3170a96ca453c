package binder

import (
	"reflect"
)

// Kind tags a registration with its construction policy.
type Kind int

const (
	// KindFactory builds a fresh value on every resolution.
	KindFactory Kind = iota
	// KindLazySingleton builds once on first resolution and caches the value.
	KindLazySingleton
	// KindInstance holds an eagerly built value supplied at registration time.
	KindInstance
)

// String returns the kind's name for error messages and logs.
func (k Kind) String() string {
	switch k {
	case KindFactory:
		return "factory"
	case KindLazySingleton:
		return "lazySingleton"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Strategy controls how a registration interacts with an existing one for
// the same type in the same partition.
type Strategy int

const (
	// Replace is the default: re-registering a private type overwrites it,
	// re-registering an exported type is a configuration error.
	Replace Strategy = iota
	// PreserveExisting keeps an already-built instance and only swaps the
	// stored provider for future first-resolutions. Used by hot reload so
	// resolved singletons survive while factories refresh.
	PreserveExisting
)

// Provider builds a value, resolving its own dependencies from b.
type Provider func(b Binder) (any, error)

// Binder is the scoped, partitioned dependency container contract.
//
// Lookup methods come in a throwing and a probing flavor: Get returns a
// [github.com/modkit-go/modkit/pkg/errors.NotFoundError] on a miss, TryGet
// returns (nil, nil). Provider failures propagate through both.
type Binder interface {
	// Register writes a registration for t into the partition selected by
	// the export-mode flag. For KindInstance the provider runs immediately.
	Register(t reflect.Type, kind Kind, provide Provider) error

	// Get resolves t across the full visibility chain.
	Get(t reflect.Type) (any, error)
	// TryGet is the non-throwing variant of Get: (nil, nil) when absent.
	TryGet(t reflect.Type) (any, error)
	// Parent resolves t against the parent chain only, bypassing local and
	// import scopes.
	Parent(t reflect.Type) (any, error)
	// TryParent is the non-throwing variant of Parent.
	TryParent(t reflect.Type) (any, error)
	// Contains walks the same chain as Get as a boolean existence check.
	Contains(t reflect.Type) bool
	// TryGetPublic restricts lookup to the local public partition only.
	TryGetPublic(t reflect.Type) (any, error)
	// ContainsPublic reports whether t is registered in the local public
	// partition.
	ContainsPublic(t reflect.Type) bool

	// EnableExportMode directs subsequent registrations into the public
	// partition; DisableExportMode restores the private partition.
	EnableExportMode()
	DisableExportMode()

	// SealPublicScope rejects further export-mode registrations;
	// ResetPublicScope lifts the seal for hot reload.
	SealPublicScope()
	ResetPublicScope()

	// AttachImports chains the public-only views of other binders into this
	// binder's lookup chain. Replaces any previously attached imports.
	AttachImports(imports []Binder)

	// LocalTypes lists the types registered locally (both partitions).
	LocalTypes() []reflect.Type

	// Name identifies the owning module in errors and logs.
	Name() string
	SetName(name string)

	// Clear drops every registration and cached instance.
	Clear()
}

// RegistrationAware is an optional Binder extension exposing a pluggable
// re-registration strategy, scoped to the execution of body.
type RegistrationAware interface {
	RunWithStrategy(s Strategy, body func() error) error
}

// Factory creates binders, letting the embedding application select a
// concrete container implementation.
type Factory interface {
	Create(parent Binder) Binder
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(parent Binder) Binder

// Create calls f.
func (f FactoryFunc) Create(parent Binder) Binder { return f(parent) }

// DefaultFactory creates the scoped binder implementation from this package.
var DefaultFactory Factory = FactoryFunc(func(parent Binder) Binder { return New(parent) })

// TypeOf returns the token for T. It works for interface types as well as
// concrete types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
