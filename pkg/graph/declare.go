package graph

import (
	"errors"
	"slices"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
)

var (
	// ErrEmptyModuleName is returned by FromDeclarations when a declared
	// module has no name.
	ErrEmptyModuleName = errors.New("module name must not be empty")

	// ErrDuplicateModule is returned by FromDeclarations when two
	// declarations share a name.
	ErrDuplicateModule = errors.New("duplicate module name")

	// ErrUnknownImport is returned by FromDeclarations when a declaration
	// imports a module that is not declared.
	ErrUnknownImport = errors.New("unknown import")

	// ErrUnknownRoot is returned by FromDeclarations when the named root is
	// not declared.
	ErrUnknownRoot = errors.New("unknown root module")
)

// Declaration describes one module of an externally-declared graph, such as
// a manifest file. Names play the role runtime types play for live modules.
type Declaration struct {
	Name    string
	Imports []string
	Expects []string
	Exports []string
}

// FromDeclarations builds a graph from declarations rooted at root. Modules
// unreachable from the root are dropped. Cycles fail with the same
// CIRCULAR_DEPENDENCY error Build raises for live modules.
func FromDeclarations(root string, decls []Declaration) (*Graph, error) {
	byName := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			return nil, ErrEmptyModuleName
		}
		if _, dup := byName[d.Name]; dup {
			return nil, ErrDuplicateModule
		}
		byName[d.Name] = d
	}
	for _, d := range decls {
		for _, imp := range d.Imports {
			if _, ok := byName[imp]; !ok {
				return nil, ErrUnknownImport
			}
		}
	}
	if _, ok := byName[root]; !ok {
		return nil, ErrUnknownRoot
	}

	if chain := findCycle(root, byName); chain != nil {
		return nil, &moderrors.CycleError{Chain: chain}
	}

	g := &Graph{
		root:     root,
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
	}

	// Breadth-first from the root: depth is the shortest import distance.
	queue := []string{root}
	g.nodes[root] = &Node{
		Name:    root,
		Expects: byName[root].Expects,
		Exports: byName[root].Exports,
		Root:    true,
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		depth := g.nodes[name].Depth

		for _, imp := range byName[name].Imports {
			if !slices.Contains(g.outgoing[name], imp) {
				g.edges = append(g.edges, Edge{From: name, To: imp})
				g.outgoing[name] = append(g.outgoing[name], imp)
			}
			if _, seen := g.nodes[imp]; seen {
				continue
			}
			g.nodes[imp] = &Node{
				Name:    imp,
				Depth:   depth + 1,
				Expects: byName[imp].Expects,
				Exports: byName[imp].Exports,
			}
			queue = append(queue, imp)
		}
	}

	return g, nil
}

// findCycle runs a depth-first search with white/gray/black coloring and
// returns the looping chain, or nil when the graph is acyclic.
func findCycle(root string, byName map[string]Declaration) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(byName))
	var chain []string

	var dfs func(name string, path []string) []string
	dfs = func(name string, path []string) []string {
		color[name] = gray
		path = append(path, name)
		for _, imp := range byName[name].Imports {
			switch color[imp] {
			case white:
				if c := dfs(imp, path); c != nil {
					return c
				}
			case gray:
				return append(slices.Clone(path), imp)
			}
		}
		color[name] = black
		return nil
	}

	chain = dfs(root, nil)
	return chain
}
