package modular

import (
	"context"
	"reflect"

	"github.com/modkit-go/modkit/pkg/binder"
)

// Module is a user-authored unit: an import list, a required-type list,
// registration procedures, and lifecycle hooks. Modules are stateless from
// the engine's perspective and owned by whoever constructs them.
//
// Embed [BaseModule] to pick up no-op defaults and only override what a
// module needs.
type Module interface {
	// Imports lists the modules that must be loaded before this one starts.
	Imports() []Module

	// Expects lists type tokens the environment (imports or parent binder)
	// must already provide. Validated before Binds runs.
	Expects() []reflect.Type

	// Binds registers private implementation dependencies.
	Binds(b binder.Binder) error

	// Exports registers the module's public contract. The binder is in
	// export mode for the duration of the call.
	Exports(b binder.Binder) error

	// OnInit runs after registration, before the module reports loaded.
	OnInit(ctx context.Context) error

	// OnDispose runs when the module's controller is disposed.
	OnDispose() error

	// HotReload is invoked after a hot reload re-ran the registration
	// phases.
	HotReload()
}

// Configurable is an optional Module extension accepting structured
// configuration before initialization. Implementations should reject
// arguments of the wrong shape with an error; the controller surfaces any
// failure (including panics from careless assertions) as a lifecycle error.
type Configurable interface {
	Configure(args any) error
}

// BaseModule provides no-op implementations of every Module method except
// Binds and Exports, which default to registering nothing. Embed it and
// override what you need.
type BaseModule struct{}

func (BaseModule) Imports() []Module              { return nil }
func (BaseModule) Expects() []reflect.Type        { return nil }
func (BaseModule) Binds(binder.Binder) error      { return nil }
func (BaseModule) Exports(binder.Binder) error    { return nil }
func (BaseModule) OnInit(context.Context) error   { return nil }
func (BaseModule) OnDispose() error               { return nil }
func (BaseModule) HotReload()                     {}

// moduleType returns the runtime type used as the module's identity.
func moduleType(m Module) reflect.Type {
	return reflect.TypeOf(m)
}

// moduleName renders a module's type compactly for errors and logs.
func moduleName(m Module) string {
	t := moduleType(m)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
