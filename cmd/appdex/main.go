// Command appdex runs the app-catalog search service and its
// maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appgrid/appdex/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:          "appdex",
		Short:        "App catalog search service",
		Version:      fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date),
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newReindexCmd())
	root.AddCommand(newLoadCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
