package modular

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/modkit-go/modkit/pkg/binder"
	moderrors "github.com/modkit-go/modkit/pkg/errors"
	"github.com/modkit-go/modkit/pkg/override"
)

// Controller pairs exactly one Module with exactly one Binder and drives
// the lifecycle state machine. Import controllers are shared, not owned: in
// a diamond graph multiple parents reference the same child controller, and
// a non-owning parent never disposes it.
type Controller struct {
	module Module
	binder binder.Binder
	opts   Options
	scope  *override.Scope

	mu      sync.Mutex
	status  Status
	err     error
	started bool
	imports []*Controller
	changed chan struct{}
}

// NewController builds a controller for module in the initial state.
func NewController(module Module, opts Options) *Controller {
	opts = opts.WithDefaults()
	b := opts.BinderFactory.Create(opts.ParentBinder)
	b.SetName(moduleName(module))
	return &Controller{
		module:  module,
		binder:  b,
		opts:    opts,
		scope:   opts.Overrides,
		status:  StatusInitial,
		changed: make(chan struct{}),
	}
}

// Start is the convenience entry point for a root module: it builds a
// registry and a controller, then initializes the whole import graph.
func Start(ctx context.Context, module Module, opts Options) (*Controller, error) {
	ctrl := NewController(module, opts)
	if err := ctrl.Initialize(ctx, NewRegistry()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Module returns the wrapped module.
func (c *Controller) Module() Module { return c.module }

// Binder returns the controller's container.
func (c *Controller) Binder() binder.Binder { return c.binder }

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the failure that moved the controller to StatusError, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Imports returns the controllers of the module's resolved imports.
func (c *Controller) Imports() []*Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Controller, len(c.imports))
	copy(out, c.imports)
	return out
}

// Configure forwards structured configuration to the module, before
// Initialize. A module that does not accept configuration, or rejects the
// argument shape, surfaces a lifecycle error rather than a raw type error.
func (c *Controller) Configure(args any) (err error) {
	cfg, ok := c.module.(Configurable)
	if !ok {
		return moderrors.New(moderrors.ErrCodeBadConfigure,
			"module %s does not accept configuration", moduleName(c.module))
	}
	defer func() {
		if r := recover(); r != nil {
			err = moderrors.New(moderrors.ErrCodeBadConfigure,
				"configuring %s: %v", moduleName(c.module), r)
		}
	}()
	if cerr := cfg.Configure(args); cerr != nil {
		return moderrors.Wrap(moderrors.ErrCodeBadConfigure, cerr,
			"configuring %s", moduleName(c.module))
	}
	return nil
}

// Initialize drives the module to loaded: resolve imports, validate
// expected types, run binds, apply overrides, run exports, seal the public
// scope, await the module's init hook. Any failure captures the error,
// moves the controller to the terminal error state, and is returned — no
// partial loaded state is ever published.
func (c *Controller) Initialize(ctx context.Context, reg *Registry) error {
	reg.adopt(c)
	return c.initialize(ctx, reg, []reflect.Type{moduleType(c.module)})
}

// initialize is the internal entry used by the resolver, threading the
// current branch's value-copied visited stack.
func (c *Controller) initialize(ctx context.Context, reg *Registry, path []reflect.Type) error {
	c.mu.Lock()
	if c.started {
		status := c.status
		c.mu.Unlock()
		return moderrors.New(moderrors.ErrCodeLifecycle,
			"module %s is already %s; build a fresh controller to retry",
			moduleName(c.module), status)
	}
	c.started = true
	c.mu.Unlock()

	c.notify(func(i Interceptor) { i.OnInit(c.module) })
	c.setStatus(StatusLoading)

	if err := c.load(ctx, reg, path); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.setStatus(StatusError)
		c.notify(func(i Interceptor) { i.OnError(c.module, err) })
		return err
	}

	c.setStatus(StatusLoaded)
	c.notify(func(i Interceptor) { i.OnLoaded(c.module) })
	return nil
}

// load resolves imports, validates expectations, and runs the registration
// and init phases.
func (c *Controller) load(ctx context.Context, reg *Registry, path []reflect.Type) error {
	imports, err := resolveImports(ctx, reg, c, path)
	if err != nil {
		return err
	}

	importBinders := make([]binder.Binder, len(imports))
	for i, imp := range imports {
		importBinders[i] = imp.binder
	}
	c.binder.AttachImports(importBinders)

	c.mu.Lock()
	c.imports = imports
	c.mu.Unlock()

	// Expected types must be satisfied by the imports+parent chain before
	// any local registration runs.
	for _, t := range c.module.Expects() {
		if !c.binder.Contains(t) {
			return moderrors.New(moderrors.ErrCodeMissingExpected,
				"module %s expects %s, which neither its imports nor the parent binder provide",
				moduleName(c.module), t)
		}
	}

	if err := c.registrationPhases(); err != nil {
		return err
	}

	if err := c.module.OnInit(ctx); err != nil {
		return moderrors.Wrap(moderrors.ErrCodeLifecycle, err,
			"init hook of %s", moduleName(c.module))
	}
	return nil
}

// registrationPhases runs binds → self-overrides → exports and seals the
// public scope. Overrides apply after binds so they may shadow private
// registrations the export phase depends on.
func (c *Controller) registrationPhases() error {
	c.binder.DisableExportMode()
	if err := c.module.Binds(c.binder); err != nil {
		return fmt.Errorf("binds of %s: %w", moduleName(c.module), err)
	}

	if err := c.scope.Apply(c.binder); err != nil {
		return fmt.Errorf("overrides of %s: %w", moduleName(c.module), err)
	}

	c.binder.EnableExportMode()
	err := c.module.Exports(c.binder)
	c.binder.DisableExportMode()
	if err != nil {
		return fmt.Errorf("exports of %s: %w", moduleName(c.module), err)
	}
	c.binder.SealPublicScope()
	return nil
}

// HotReload re-runs the registration phases of a loaded module under the
// preserve-existing strategy: resolved singletons keep their identity while
// factories pick up freshly bound closures. The module's HotReload hook
// always runs, even when a registration phase fails. No-op unless the
// controller is currently loaded.
func (c *Controller) HotReload() error {
	if c.Status() != StatusLoaded {
		return nil
	}

	c.binder.ResetPublicScope()

	var err error
	if ra, ok := c.binder.(binder.RegistrationAware); ok {
		err = ra.RunWithStrategy(binder.PreserveExisting, c.registrationPhases)
	} else {
		err = c.registrationPhases()
	}

	c.module.HotReload()
	c.opts.Logger.Debug("module hot reloaded", "module", moduleName(c.module), "err", err)
	return err
}

// Dispose tears the controller down: run the module's dispose hook, clear
// the binder, close the status notification channel. Idempotent. Import
// controllers are left untouched — they may be shared with other parents.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.status == StatusDisposed {
		c.mu.Unlock()
		return nil
	}
	c.status = StatusDisposed
	ch := c.changed
	c.changed = nil
	c.mu.Unlock()

	err := c.module.OnDispose()
	c.binder.Clear()
	if ch != nil {
		close(ch)
	}
	c.notify(func(i Interceptor) { i.OnDispose(c.module) })

	if err != nil {
		return moderrors.Wrap(moderrors.ErrCodeLifecycle, err,
			"dispose hook of %s", moduleName(c.module))
	}
	return nil
}

// Key returns the registry identity of this controller.
func (c *Controller) Key() Key {
	return Key{Module: moduleType(c.module), Scope: c.scope}
}

// setStatus publishes a transition and wakes all waiters. Disposed is
// terminal: a late transition from an in-flight initialization must not
// resurrect a disposed controller.
func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	if c.status == StatusDisposed {
		c.mu.Unlock()
		return
	}
	c.status = s
	ch := c.changed
	if ch != nil {
		c.changed = make(chan struct{})
	}
	c.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// waitLoaded blocks until the controller reaches a terminal-for-waiters
// state: loaded returns nil, error and disposed return a lifecycle error.
func (c *Controller) waitLoaded(ctx context.Context) error {
	for {
		c.mu.Lock()
		status, err, ch := c.status, c.err, c.changed
		c.mu.Unlock()

		switch status {
		case StatusLoaded:
			return nil
		case StatusError:
			return err
		case StatusDisposed:
			return moderrors.New(moderrors.ErrCodeLifecycle,
				"module %s was disposed while awaited", moduleName(c.module))
		}

		if ch == nil {
			return moderrors.New(moderrors.ErrCodeLifecycle,
				"module %s stopped publishing status", moduleName(c.module))
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// notify invokes fn for every interceptor, recovering and logging panics so
// an observer cannot poison the lifecycle.
func (c *Controller) notify(fn func(Interceptor)) {
	for _, i := range c.opts.Interceptors {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.opts.Logger.Error("interceptor panicked",
						"module", moduleName(c.module), "panic", r)
				}
			}()
			fn(i)
		}()
	}
}
