package graph

import (
	"fmt"
	"strings"
)

// Tree renders the graph as an indented text tree rooted at the root module.
// A module that appears on more than one branch is expanded once; later
// occurrences are marked shared and not expanded again.
func Tree(g *Graph) string {
	var b strings.Builder
	expanded := make(map[string]bool)
	writeTree(&b, g, g.Root(), "", true, expanded)
	return b.String()
}

func writeTree(b *strings.Builder, g *Graph, name, prefix string, last bool, expanded map[string]bool) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if last {
		connector = "└── "
		childPrefix = prefix + "    "
	}
	if prefix == "" && name == g.Root() {
		connector = ""
		childPrefix = ""
	}

	if expanded[name] {
		fmt.Fprintf(b, "%s%s%s (shared)\n", prefix, connector, name)
		return
	}
	expanded[name] = true

	suffix := ""
	if n, ok := g.Node(name); ok && len(n.Expects) > 0 {
		suffix = fmt.Sprintf(" [expects %d]", len(n.Expects))
	}
	fmt.Fprintf(b, "%s%s%s%s\n", prefix, connector, name, suffix)

	children := g.Imports(name)
	for i, child := range children {
		writeTree(b, g, child, childPrefix, i == len(children)-1, expanded)
	}
}
