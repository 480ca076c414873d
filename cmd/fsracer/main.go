// Command fsracer analyzes an offline execution trace for
// file-system data races between concurrent tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fsracer",
		Short: "Detect file-system data races in event-driven program traces",
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}
