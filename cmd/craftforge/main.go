// Command craftforge runs crafting guides and action catalogs from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/craftforge/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "craftforge: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
