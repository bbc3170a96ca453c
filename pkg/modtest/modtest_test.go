package modtest

import (
	"context"
	"testing"

	"github.com/modkit-go/modkit/pkg/binder"
	"github.com/modkit-go/modkit/pkg/modular"
)

type registry struct{ entries []string }

func TestInitAndGet(t *testing.T) {
	m := &Static{
		BindsFunc: func(b binder.Binder) error {
			return binder.RegisterLazySingleton(b, func(binder.Binder) (*registry, error) {
				return &registry{entries: []string{"a"}}, nil
			})
		},
	}

	ctrl := Init(t, m, modular.Options{})
	if ctrl.Status() != modular.StatusLoaded {
		t.Fatalf("status = %v", ctrl.Status())
	}

	r := Get[*registry](t, ctrl)
	if len(r.entries) != 1 {
		t.Errorf("entries = %v", r.entries)
	}
}

func TestStaticHooks(t *testing.T) {
	inited := false
	m := &Static{
		InitFunc: func(context.Context) error {
			inited = true
			return nil
		},
	}

	Init(t, m, modular.Options{})
	if !inited {
		t.Error("init hook did not run")
	}
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	m := &Static{}

	ctrl := Init(t, m, modular.Options{
		Interceptors: []modular.Interceptor{rec},
	})

	if !rec.Has("init", "Static") || !rec.Has("loaded", "Static") {
		t.Errorf("events = %v", rec.Events())
	}

	if err := ctrl.Dispose(); err != nil {
		t.Fatal(err)
	}
	if !rec.Has("dispose", "Static") {
		t.Errorf("events = %v", rec.Events())
	}
}
