package graph

import (
	"maps"
	"reflect"
	"slices"

	"github.com/modkit-go/modkit/pkg/errors"
	"github.com/modkit-go/modkit/pkg/modular"
)

// Node describes one module in the import graph.
type Node struct {
	// Name is the module's type name, used as the node identity.
	Name string
	// Depth is the shortest import distance from the root (root == 0).
	Depth int
	// Expects names contract types the module requires from its environment.
	Expects []string
	// Exports names contract types the module publishes to dependents.
	// Populated only for declaration-built graphs: a live module's exports
	// are not known until its export phase runs.
	Exports []string
	// Root marks the module the graph was built from.
	Root bool
}

// Edge is a directed import: From imports To.
type Edge struct {
	From string
	To   string
}

// Graph is a module import graph keyed by module type name. Modules are
// deduplicated by runtime type, matching how the lifecycle engine shares
// controllers across import branches.
//
// The zero value is not usable. Build is the only constructor.
type Graph struct {
	root  string
	nodes map[string]*Node
	edges []Edge

	outgoing map[string][]string
}

// Build walks the import declarations reachable from root and returns the
// resulting graph. No module hook runs during the walk.
//
// A graph that loops back on itself fails with a CIRCULAR_DEPENDENCY error
// carrying the offending chain, exactly as initialization would.
func Build(root modular.Module) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*Node),
		edges:    nil,
		outgoing: make(map[string][]string),
	}

	if err := g.walk(root, 0, nil); err != nil {
		return nil, err
	}
	g.root = nodeName(root)
	g.nodes[g.root].Root = true
	return g, nil
}

func (g *Graph) walk(m modular.Module, depth int, path []reflect.Type) error {
	mt := reflect.TypeOf(m)
	name := nodeName(m)

	if slices.Contains(path, mt) {
		return &errors.CycleError{Chain: errors.TypeNames(append(slices.Clone(path), mt))}
	}

	if n, seen := g.nodes[name]; seen {
		if depth < n.Depth {
			n.Depth = depth
		}
		// Already expanded, but the subtree below may still cycle back into
		// the current path, so keep walking.
	} else {
		g.nodes[name] = &Node{
			Name:    name,
			Depth:   depth,
			Expects: typeNames(m.Expects()),
		}
	}

	branch := append(slices.Clone(path), mt)
	for _, imp := range m.Imports() {
		child := nodeName(imp)
		if !slices.Contains(g.outgoing[name], child) {
			g.edges = append(g.edges, Edge{From: name, To: child})
			g.outgoing[name] = append(g.outgoing[name], child)
		}
		if err := g.walk(imp, depth+1, branch); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the name of the module the graph was built from.
func (g *Graph) Root() string { return g.root }

// Node returns the node with the given name and whether it exists.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes sorted by name.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, name := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[name])
	}
	return out
}

// Edges returns all import edges in discovery order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Imports returns the names of modules the named module imports directly.
func (g *Graph) Imports(name string) []string { return g.outgoing[name] }

// NodeCount returns the number of distinct modules.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct import edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MaxDepth returns the deepest import distance from the root.
func (g *Graph) MaxDepth() int {
	max := 0
	for _, n := range g.nodes {
		if n.Depth > max {
			max = n.Depth
		}
	}
	return max
}

func nodeName(m modular.Module) string {
	t := reflect.TypeOf(m)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

func typeNames(types []reflect.Type) []string {
	if len(types) == 0 {
		return nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
