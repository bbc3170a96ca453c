package graph

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/modkit-go/modkit/pkg/binder"
	moderrors "github.com/modkit-go/modkit/pkg/errors"
	"github.com/modkit-go/modkit/pkg/modular"
)

// Fixture graph: appModule imports authModule and storeModule, and
// authModule also imports storeModule (a diamond). storeModule expects a
// database handle from the environment.

type database struct{}

type storeModule struct{ modular.BaseModule }

func (m *storeModule) Expects() []reflect.Type {
	return []reflect.Type{binder.TypeOf[*database]()}
}

type authModule struct{ modular.BaseModule }

func (m *authModule) Imports() []modular.Module {
	return []modular.Module{&storeModule{}}
}

type appModule struct{ modular.BaseModule }

func (m *appModule) Imports() []modular.Module {
	return []modular.Module{&authModule{}, &storeModule{}}
}

// Cyclic fixtures.

type cycleM struct{ modular.BaseModule }
type cycleN struct{ modular.BaseModule }

func (m *cycleM) Imports() []modular.Module { return []modular.Module{&cycleN{}} }
func (m *cycleN) Imports() []modular.Module { return []modular.Module{&cycleM{}} }

func TestBuild(t *testing.T) {
	g, err := Build(&appModule{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.Root() != "appModule" {
		t.Errorf("root = %q", g.Root())
	}
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3 (diamond deduplicates)", g.NodeCount())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", g.EdgeCount())
	}

	root, ok := g.Node("appModule")
	if !ok || !root.Root || root.Depth != 0 {
		t.Errorf("root node = %+v", root)
	}

	// storeModule is reachable at depths 1 and 2: shortest wins.
	store, ok := g.Node("storeModule")
	if !ok {
		t.Fatal("storeModule missing")
	}
	if store.Depth != 1 {
		t.Errorf("store depth = %d, want 1", store.Depth)
	}
	if len(store.Expects) != 1 {
		t.Errorf("store expects = %v", store.Expects)
	}

	if g.MaxDepth() != 1 {
		t.Errorf("max depth = %d, want 1", g.MaxDepth())
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	_, err := Build(&cycleM{})
	var cycle *moderrors.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want CycleError", err)
	}
	if len(cycle.Chain) != 3 {
		t.Errorf("chain = %v, want M -> N -> M", cycle.Chain)
	}
}

func TestFromDeclarations(t *testing.T) {
	decls := []Declaration{
		{Name: "app", Imports: []string{"auth", "store"}},
		{Name: "auth", Imports: []string{"store"}, Exports: []string{"TokenService"}},
		{Name: "store", Expects: []string{"Database"}, Exports: []string{"ProductRepo"}},
		{Name: "orphan"},
	}

	g, err := FromDeclarations("app", decls)
	if err != nil {
		t.Fatalf("FromDeclarations: %v", err)
	}

	// Orphan is unreachable from the root and dropped.
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", g.NodeCount())
	}
	store, ok := g.Node("store")
	if !ok {
		t.Fatal("store missing")
	}
	if store.Depth != 1 {
		t.Errorf("store depth = %d, want 1", store.Depth)
	}
	if len(store.Exports) != 1 || store.Exports[0] != "ProductRepo" {
		t.Errorf("store exports = %v", store.Exports)
	}
}

func TestFromDeclarationsValidation(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		decls []Declaration
		want  error
	}{
		{
			name:  "empty name",
			root:  "a",
			decls: []Declaration{{Name: ""}},
			want:  ErrEmptyModuleName,
		},
		{
			name:  "duplicate name",
			root:  "a",
			decls: []Declaration{{Name: "a"}, {Name: "a"}},
			want:  ErrDuplicateModule,
		},
		{
			name:  "unknown import",
			root:  "a",
			decls: []Declaration{{Name: "a", Imports: []string{"ghost"}}},
			want:  ErrUnknownImport,
		},
		{
			name:  "unknown root",
			root:  "ghost",
			decls: []Declaration{{Name: "a"}},
			want:  ErrUnknownRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDeclarations(tt.root, tt.decls)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromDeclarationsRejectsCycle(t *testing.T) {
	decls := []Declaration{
		{Name: "a", Imports: []string{"b"}},
		{Name: "b", Imports: []string{"a"}},
	}

	_, err := FromDeclarations("a", decls)
	var cycle *moderrors.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want CycleError", err)
	}
	if got := cycle.Error(); !strings.Contains(got, "a -> b -> a") {
		t.Errorf("chain = %q", got)
	}
}

func TestToDOT(t *testing.T) {
	g, err := Build(&appModule{})
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, RenderOptions{})
	for _, want := range []string{
		"digraph modules {",
		`"appModule"`,
		`"appModule" -> "authModule";`,
		`"authModule" -> "storeModule";`,
		"fillcolor=lightblue",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Modules with environment contracts render dashed.
	if !strings.Contains(dot, "dashed") {
		t.Error("storeModule should render dashed")
	}
}

func TestToDOTDetailed(t *testing.T) {
	g, err := Build(&appModule{})
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, RenderOptions{Detailed: true})
	if !strings.Contains(dot, "depth: 1") {
		t.Error("detailed labels should carry depth")
	}
	if !strings.Contains(dot, "expects: *graph.database") {
		t.Errorf("detailed labels should carry contracts:\n%s", dot)
	}
}

func TestTree(t *testing.T) {
	g, err := Build(&appModule{})
	if err != nil {
		t.Fatal(err)
	}

	tree := Tree(g)
	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("tree = %q, want 4 lines", tree)
	}
	if lines[0] != "appModule" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(tree, "storeModule [expects 1]") {
		t.Errorf("tree should annotate contracts:\n%s", tree)
	}
	if !strings.Contains(tree, "storeModule (shared)") {
		t.Errorf("second occurrence should be marked shared:\n%s", tree)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="100pt" height="50pt" viewBox="0.00 0.00 144.00 72.00" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 144.00 72.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="144" height="72"`) {
		t.Errorf("size not normalized: %s", out)
	}

	// SVGs without a view box pass through untouched.
	plain := []byte("<svg>")
	if got := normalizeViewBox(plain); string(got) != "<svg>" {
		t.Errorf("passthrough = %s", got)
	}
}
