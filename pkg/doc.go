// Package pkg provides the modkit libraries.
//
// # Overview
//
// Modkit is a module system for Go applications: modules declare the
// dependencies they bind, the contracts they export, and the modules they
// import, and the engine assembles them into a running graph.
//
//   - [binder] - Scoped dependency container with private and public partitions
//   - [modular] - Module contract, lifecycle controller, and graph resolver
//   - [override] - Scoped binding overrides for tests and environments
//   - [retainer] - Reference-counted controller retention
//   - [graph] - Static import-graph inspection and rendering
//   - [modtest] - Test helpers
//   - [errors] - Coded errors shared by every package
//
// # Quick Start
//
// Define a module and start it:
//
//	type AppModule struct {
//	    modular.BaseModule
//	}
//
//	func (m *AppModule) Imports() []modular.Module {
//	    return []modular.Module{&StoreModule{}}
//	}
//
//	func (m *AppModule) Binds(b binder.Binder) error {
//	    return binder.RegisterLazySingleton(b, newServer)
//	}
//
//	ctrl, err := modular.Start(ctx, &AppModule{}, modular.Options{})
package pkg
