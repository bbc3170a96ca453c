package binder

import (
	moderrors "github.com/modkit-go/modkit/pkg/errors"
)

// RegisterFactory registers a provider for T that runs on every resolution.
func RegisterFactory[T any](b Binder, provide func(Binder) (T, error)) error {
	return b.Register(TypeOf[T](), KindFactory, erase(provide))
}

// RegisterLazySingleton registers a provider for T that runs once; the built
// value is cached on first resolution.
func RegisterLazySingleton[T any](b Binder, provide func(Binder) (T, error)) error {
	return b.Register(TypeOf[T](), KindLazySingleton, erase(provide))
}

// RegisterInstance registers an already-built value for T.
func RegisterInstance[T any](b Binder, v T) error {
	return b.Register(TypeOf[T](), KindInstance, func(Binder) (any, error) { return v, nil })
}

// Get resolves T across the binder's full visibility chain.
func Get[T any](b Binder) (T, error) {
	var zero T
	v, err := b.Get(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return assert[T](v)
}

// MustGet is like Get but panics on failure. Intended for registration
// phases where a miss is a programming error.
func MustGet[T any](b Binder) T {
	v, err := Get[T](b)
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet resolves T if registered anywhere on the chain. The bool reports
// presence; a provider failure surfaces as an error with presence true.
func TryGet[T any](b Binder) (T, bool, error) {
	var zero T
	v, err := b.TryGet(TypeOf[T]())
	if err != nil {
		return zero, true, err
	}
	if v == nil {
		return zero, false, nil
	}
	typed, err := assert[T](v)
	return typed, true, err
}

// Parent resolves T against the parent chain only, bypassing local and
// import scopes.
func Parent[T any](b Binder) (T, error) {
	var zero T
	v, err := b.Parent(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return assert[T](v)
}

// TryParent is the non-throwing variant of Parent.
func TryParent[T any](b Binder) (T, bool, error) {
	var zero T
	v, err := b.TryParent(TypeOf[T]())
	if err != nil {
		return zero, true, err
	}
	if v == nil {
		return zero, false, nil
	}
	typed, err := assert[T](v)
	return typed, true, err
}

// Contains reports whether T is resolvable on the binder's chain.
func Contains[T any](b Binder) bool {
	return b.Contains(TypeOf[T]())
}

// erase adapts a typed provider to the untyped Provider signature.
func erase[T any](provide func(Binder) (T, error)) Provider {
	return func(b Binder) (any, error) { return provide(b) }
}

// assert narrows a resolved value to T.
func assert[T any](v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, moderrors.New(moderrors.ErrCodeConfiguration,
			"registration for %s resolved to %T", TypeOf[T](), v)
	}
	return typed, nil
}
