package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/modkit-go/modkit/pkg/graph"
)

// validateCommand creates the validate command. It checks a manifest for
// structural problems (duplicates, unknown imports, cycles) and warns about
// expected contracts that no reachable import exports.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate a module manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadManifest(args[0])
			if err != nil {
				printError("%v", err)
				return err
			}

			unsatisfied := unsatisfiedContracts(g)
			for _, u := range unsatisfied {
				printWarning("%s expects %s, which nothing it imports exports", u.module, u.contract)
			}

			if len(unsatisfied) > 0 {
				if strict {
					return fmt.Errorf("%d unsatisfied contract(s)", len(unsatisfied))
				}
				printSuccess("%s is structurally valid (%d contract warning(s))", args[0], len(unsatisfied))
				printStats(g.NodeCount(), g.EdgeCount(), g.MaxDepth())
				return nil
			}

			printSuccess("%s is valid", args[0])
			printStats(g.NodeCount(), g.EdgeCount(), g.MaxDepth())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat unsatisfied contracts as errors")

	return cmd
}

type contractGap struct {
	module   string
	contract string
}

// unsatisfiedContracts reports expected contracts with no exporter among
// the module's transitive imports. The environment binder can still satisfy
// these at runtime, which is why they are warnings rather than errors.
func unsatisfiedContracts(g *graph.Graph) []contractGap {
	var gaps []contractGap
	for _, n := range g.Nodes() {
		reachable := transitiveImports(g, n.Name)
		for _, want := range n.Expects {
			satisfied := false
			for _, impName := range reachable {
				imp, ok := g.Node(impName)
				if ok && slices.Contains(imp.Exports, want) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				gaps = append(gaps, contractGap{module: n.Name, contract: want})
			}
		}
	}
	return gaps
}

func transitiveImports(g *graph.Graph, name string) []string {
	var out []string
	queue := slices.Clone(g.Imports(name))
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if slices.Contains(out, next) {
			continue
		}
		out = append(out, next)
		queue = append(queue, g.Imports(next)...)
	}
	return out
}
