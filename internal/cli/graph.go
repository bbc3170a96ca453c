package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modkit-go/modkit/pkg/graph"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file path; stdout when empty
	format   string // "dot" or "svg"
	detailed bool   // include depth and contracts in node labels
}

// graphCommand creates the graph command, rendering the import graph
// declared by a manifest as Graphviz DOT or SVG.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Render the module import graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runGraph(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include depth and contracts in labels")

	return cmd
}

func (c *CLI) runGraph(path string, opts *graphOpts) error {
	p := newProgress(c.Logger)

	g, err := loadManifest(path)
	if err != nil {
		printError("%v", err)
		return err
	}
	c.Logger.Debug("manifest loaded", "modules", g.NodeCount(), "imports", g.EdgeCount())

	dot := graph.ToDOT(g, graph.RenderOptions{Detailed: opts.detailed})

	out := []byte(dot)
	if opts.format == formatSVG {
		out, err = graph.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render SVG: %w", err)
		}
	}

	if opts.output == "" {
		fmt.Print(string(out))
		return nil
	}

	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	p.done(fmt.Sprintf("Rendered %d modules", g.NodeCount()))
	printFile(opts.output)
	return nil
}

func validateFormat(f string) error {
	switch f {
	case formatDOT, formatSVG:
		return nil
	}
	return fmt.Errorf("unknown format %q (valid: %s)", f, strings.Join([]string{formatDOT, formatSVG}, ", "))
}
