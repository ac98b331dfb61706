package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veladahq/velada"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of velada",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("velada version %s\n", strings.TrimSpace(velada.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
