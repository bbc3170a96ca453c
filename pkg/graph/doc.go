// Package graph builds a static view of a module import graph without
// initializing any module. It walks Imports() declarations, assigns each
// module a depth, and rejects cyclic graphs with the same error class the
// lifecycle engine raises at load time.
//
// The resulting graph can be rendered as Graphviz DOT, as SVG, or as an
// indented text tree for terminal output.
package graph
