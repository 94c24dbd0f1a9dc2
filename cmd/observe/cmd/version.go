package cmd

import (
	"io"

	"github.com/spf13/pflag"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the observe CLI version and build time.",
		Usage: "observe version",
		Run: func(_ *pflag.FlagSet, _ []string, out io.Writer) error {
			printVersion(out)
			return nil
		},
	})
}
