package modular

import (
	"github.com/charmbracelet/log"

	"github.com/modkit-go/modkit/pkg/binder"
	"github.com/modkit-go/modkit/pkg/override"
)

// Options configures a controller. The zero value is usable: defaults are
// the scoped binder factory, a logging interceptor, and log.Default().
type Options struct {
	// BinderFactory selects the container implementation. Defaults to
	// binder.DefaultFactory.
	BinderFactory binder.Factory

	// ParentBinder is the environment binder chained beneath every module
	// in this resolution run. Optional.
	ParentBinder binder.Binder

	// Interceptors observe lifecycle transitions. When nil, a single
	// LoggingInterceptor is installed.
	Interceptors []Interceptor

	// Logger receives engine logs. Defaults to log.Default().
	Logger *log.Logger

	// Overrides is the override-scope tree applied to this module and,
	// through its children, to the module's imports.
	Overrides *override.Scope
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.BinderFactory == nil {
		o.BinderFactory = binder.DefaultFactory
	}
	if o.Interceptors == nil {
		o.Interceptors = []Interceptor{NewLoggingInterceptor(o.Logger)}
	}
	return o
}
