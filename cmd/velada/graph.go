package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veladahq/velada/internal/presentation/graph"
	"github.com/veladahq/velada/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [create|edit]",
	Short: "Export the wizard flow visualization",
	Long:  `Outputs a Mermaid diagram representing the section order of the create or edit flow.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind := domain.FlowCreate
		if len(args) > 0 {
			switch args[0] {
			case "create":
				kind = domain.FlowCreate
			case "edit":
				kind = domain.FlowEdit
			default:
				fmt.Printf("Unknown flow %q (want create or edit)\n", args[0])
				os.Exit(1)
			}
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(domain.Sections(kind), nil)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
