// Package binder provides the scoped dependency container used by the
// modkit engine.
//
// A Binder is partitioned into a private scope and a public (exported)
// scope, optionally chained to a list of imported binders and one parent
// binder. Each registration is keyed by a [reflect.Type] token and tagged
// with a kind: factory (new value per resolution), lazy singleton (built
// once, cached on first resolution), or instance (already built, eager).
//
// # Visibility
//
// Resolution walks local private → local public → each import's public-only
// view → the parent's full chain. A private registration is visible only
// within its own binder; a public registration is additionally visible to
// any importer's full lookup chain and to a public-only probe from a later
// module layer.
//
// # Usage
//
//	b := binder.New(nil)
//	binder.RegisterLazySingleton(b, func(binder.Binder) (*Repo, error) {
//	    return NewRepo(), nil
//	})
//	repo, err := binder.Get[*Repo](b)
//
// The generic helpers wrap the untyped interface surface; alternative
// container implementations only need to satisfy [Binder] (and optionally
// [RegistrationAware]) to plug into the engine via a [Factory].
package binder
