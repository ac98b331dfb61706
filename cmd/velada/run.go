package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veladahq/velada/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive event wizard",
	Long:  `Walks through the event sections in the terminal, one prompt at a time. Pass --event to edit an existing event instead of creating one.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		eventID, _ := cmd.Flags().GetInt("event")

		opts := cli.RunOptions{
			ConfigPath: configPath,
			EventID:    eventID,
			Debug:      debug,
		}
		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("event", "e", 0, "Edit the event with this id instead of creating a new one")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}
