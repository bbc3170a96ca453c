package modular

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
	"github.com/modkit-go/modkit/pkg/override"
)

// Key identifies a controller in a Registry. Two keys are equal only if the
// module type and the override-scope node match by identity — structural
// equality of scopes is deliberately not considered, so the same module
// type instantiates independently under different override trees.
type Key struct {
	Module reflect.Type
	Scope  *override.Scope
}

// Registry deduplicates controllers across a resolution run. It is owned by
// the root Initialize call and shared down the import graph; independent
// runs use independent registries and never interfere.
type Registry struct {
	mu          sync.Mutex
	controllers map[Key]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[Key]*Controller)}
}

// lookupOrCreate returns the controller for key, constructing it via build
// when absent. The check and the insert form one critical section with no
// suspension point, so two concurrent branches of a diamond graph can never
// construct duplicate controllers.
func (r *Registry) lookupOrCreate(key Key, build func() *Controller) (ctrl *Controller, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctrl, ok := r.controllers[key]; ok {
		return ctrl, false
	}
	ctrl = build()
	r.controllers[key] = ctrl
	return ctrl, true
}

// adopt records a root controller under its own key so cycles that loop
// back to the root resolve against the root instance.
func (r *Registry) adopt(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.controllers[c.Key()]; !ok {
		r.controllers[c.Key()] = c
	}
}

// Lookup returns the controller registered under key, if any.
func (r *Registry) Lookup(key Key) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctrl, ok := r.controllers[key]
	return ctrl, ok
}

// Len returns the number of registered controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// resolveImports resolves parent's import list into initialized child
// controllers. Siblings progress as independent concurrent branches with no
// ordering guarantee; the caller only relies on every import having reached
// loaded (or the first failure) when this returns.
func resolveImports(ctx context.Context, reg *Registry, parent *Controller, path []reflect.Type) ([]*Controller, error) {
	imports := parent.module.Imports()
	if len(imports) == 0 {
		return nil, nil
	}

	controllers := make([]*Controller, len(imports))
	g, ctx := errgroup.WithContext(ctx)
	for i, imp := range imports {
		g.Go(func() error {
			ctrl, err := resolveOne(ctx, reg, parent, imp, path)
			if err != nil {
				return err
			}
			controllers[i] = ctrl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return controllers, nil
}

// resolveOne looks up or creates the controller for one import and drives
// it to loaded.
//
// The branch path is value-copied at every step down: sibling branches must
// not see each other's partial paths, or a diamond would be misreported as
// a cycle.
func resolveOne(ctx context.Context, reg *Registry, parent *Controller, m Module, path []reflect.Type) (*Controller, error) {
	mt := moduleType(m)
	childScope := parent.scope.ChildFor(mt)
	key := Key{Module: mt, Scope: childScope}

	ctrl, created := reg.lookupOrCreate(key, func() *Controller {
		opts := parent.opts
		opts.Overrides = childScope
		return NewController(m, opts)
	})

	if created {
		branch := append(slices.Clone(path), mt)
		if err := ctrl.initialize(ctx, reg, branch); err != nil {
			return nil, wrapImportFailure(parent, m, err)
		}
		return ctrl, nil
	}

	switch ctrl.Status() {
	case StatusLoaded:
		return ctrl, nil
	case StatusError:
		return nil, wrapImportFailure(parent, m, ctrl.Err())
	default:
		// Another branch is initializing this controller. If its type is
		// on our own branch path, the graph loops back on itself.
		if slices.Contains(path, mt) {
			return nil, &moderrors.CycleError{Chain: moderrors.TypeNames(append(slices.Clone(path), mt))}
		}
		if err := ctrl.waitLoaded(ctx); err != nil {
			return nil, wrapImportFailure(parent, m, err)
		}
		return ctrl, nil
	}
}

// wrapImportFailure names the dependent module when an import fails, except
// for cycle errors which already carry the full chain.
func wrapImportFailure(parent *Controller, m Module, err error) error {
	var cycle *moderrors.CycleError
	if errors.As(err, &cycle) {
		return err
	}
	return moderrors.Wrap(moderrors.ErrCodeImportFailed, err,
		"import %s of %s failed to load", moduleName(m), moduleName(parent.module))
}
