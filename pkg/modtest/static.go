package modtest

import (
	"context"
	"reflect"

	"github.com/modkit-go/modkit/pkg/binder"
	"github.com/modkit-go/modkit/pkg/modular"
)

// Static is a module assembled from closures, for tests that need a module
// shape without declaring a new type.
//
// Module identity is the runtime type, so every Static shares one identity:
// use at most one Static per import graph, or declare real types when the
// test needs several distinct modules.
type Static struct {
	ImportList  []modular.Module
	ExpectList  []reflect.Type
	BindsFunc   func(binder.Binder) error
	ExportsFunc func(binder.Binder) error
	InitFunc    func(context.Context) error
	DisposeFunc func() error
}

var _ modular.Module = (*Static)(nil)

func (s *Static) Imports() []modular.Module { return s.ImportList }
func (s *Static) Expects() []reflect.Type   { return s.ExpectList }

func (s *Static) Binds(b binder.Binder) error {
	if s.BindsFunc == nil {
		return nil
	}
	return s.BindsFunc(b)
}

func (s *Static) Exports(b binder.Binder) error {
	if s.ExportsFunc == nil {
		return nil
	}
	return s.ExportsFunc(b)
}

func (s *Static) OnInit(ctx context.Context) error {
	if s.InitFunc == nil {
		return nil
	}
	return s.InitFunc(ctx)
}

func (s *Static) OnDispose() error {
	if s.DisposeFunc == nil {
		return nil
	}
	return s.DisposeFunc()
}

func (s *Static) HotReload() {}
