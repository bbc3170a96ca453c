package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modkit-go/modkit/pkg/graph"
)

// treeCommand creates the tree command, printing the import graph as an
// indented tree rooted at the manifest's root module.
func (c *CLI) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [manifest]",
		Short: "Print the module import tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadManifest(args[0])
			if err != nil {
				printError("%v", err)
				return err
			}

			fmt.Println(StyleTitle.Render(appName) + StyleDim.Render(" · "+args[0]))
			fmt.Print(graph.Tree(g))
			printStats(g.NodeCount(), g.EdgeCount(), g.MaxDepth())
			return nil
		},
	}
}
