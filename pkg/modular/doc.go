// Package modular implements the module lifecycle engine: the per-module
// controller state machine and the concurrent import-graph resolver.
//
// # Architecture
//
// An application is composed of user-declared modules, each owning a
// private set of implementation dependencies and a public (exported)
// contract, wired together through an explicit import graph. The engine
// pairs every module with one [binder.Binder] inside a [Controller] and
// drives it through a fixed lifecycle:
//
//	initial --Initialize--> loading --success--> loaded --Dispose--> disposed
//	                          \--failure--> error (terminal)
//
// Initialize resolves the module's imports first (recursively, with
// controller deduplication and cycle detection), validates the module's
// expected environment types, runs the private and public registration
// phases, applies overrides, awaits the module's init hook, and only then
// publishes the loaded status. No partial loaded state is ever observable.
//
// # Resolution
//
// Sibling imports resolve as independently progressing concurrent branches
// with no ordering guarantee between them. Controllers are deduplicated
// through a shared [Registry] keyed by (module type, override-scope node
// identity): in a diamond graph the shared dependency is constructed and
// initialized exactly once, and both importers observe the identical
// controller. Cycles are detected per branch via a value-copied visited
// stack and reported as [errors.CycleError] with the full chain.
//
// # Usage
//
//	ctrl, err := modular.Start(ctx, &AppModule{}, modular.Options{})
//	if err != nil {
//	    return err
//	}
//	defer ctrl.Dispose()
//	svc := binder.MustGet[*AppService](ctrl.Binder())
//
// The Registry is an explicit parameter owned by the root call, so
// independent resolution runs (parallel tests, multiple apps in one
// process) never interfere.
package modular
