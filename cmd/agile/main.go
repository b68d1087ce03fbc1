// Command agile runs the batch side of the pricing assistant: the daily
// incremental archive update, statistics regeneration, and archive
// validation.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "agile",
		Short: "Batch tooling for the Agile pricing assistant",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	root.AddCommand(updateCmd(), statsCmd(), validateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
