// Package modtest provides helpers for testing modules: a one-call
// initializer with cleanup, an interceptor that records transitions, and a
// builder for throwaway modules assembled from closures.
package modtest

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/modkit-go/modkit/pkg/binder"
	"github.com/modkit-go/modkit/pkg/modular"
)

// Init initializes module and registers disposal as a test cleanup. It
// fails the test immediately when initialization does not succeed.
func Init(t testing.TB, module modular.Module, opts modular.Options) *modular.Controller {
	t.Helper()
	ctrl, err := modular.Start(context.Background(), module, opts)
	if err != nil {
		t.Fatalf("initialize %T: %v", module, err)
	}
	t.Cleanup(func() {
		if err := ctrl.Dispose(); err != nil {
			t.Errorf("dispose %T: %v", module, err)
		}
	})
	return ctrl
}

// Get resolves a dependency from the controller's binder, failing the test
// when it cannot be built.
func Get[T any](t testing.TB, ctrl *modular.Controller) T {
	t.Helper()
	v, err := binder.Get[T](ctrl.Binder())
	if err != nil {
		t.Fatalf("get %v: %v", binder.TypeOf[T](), err)
	}
	return v
}

// Event is one recorded lifecycle transition.
type Event struct {
	Kind   string // "init", "loaded", "error", "dispose"
	Module string
	Err    error
}

// Recorder is an interceptor that captures every lifecycle transition in
// order. Safe for concurrent use: import graphs initialize in parallel.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ modular.Interceptor = (*Recorder)(nil)

func (r *Recorder) OnInit(m modular.Module)   { r.record("init", m, nil) }
func (r *Recorder) OnLoaded(m modular.Module) { r.record("loaded", m, nil) }
func (r *Recorder) OnError(m modular.Module, err error) {
	r.record("error", m, err)
}
func (r *Recorder) OnDispose(m modular.Module) { r.record("dispose", m, nil) }

func (r *Recorder) record(kind string, m modular.Module, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Module: typeName(m), Err: err})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Has reports whether a transition of the given kind was recorded for the
// named module type.
func (r *Recorder) Has(kind, module string) bool {
	for _, e := range r.Events() {
		if e.Kind == kind && e.Module == module {
			return true
		}
	}
	return false
}

func typeName(m modular.Module) string {
	t := reflect.TypeOf(m)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
