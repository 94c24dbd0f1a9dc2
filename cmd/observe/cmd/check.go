package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/go-drift/observe/pkg/errors"
	"github.com/go-drift/observe/pkg/manifest"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate a component manifest",
		Long: `Validate observe.yaml and list the observed properties of every component.

Without --file, the manifest is looked up in the root of the Go module
containing the current directory.`,
		Usage: "observe check [--file PATH] [--verbose]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			flagSet.StringP("file", "f", "", "path to the manifest (default: <module root>/observe.yaml)")
			flagSet.Bool("verbose", false, "list unobserved properties and detail validation errors")
			return flagSet
		},
		Run: runCheck,
	})
}

func runCheck(flags *pflag.FlagSet, args []string, out io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}
	path, _ := flags.GetString("file")
	verbose, _ := flags.GetBool("verbose")

	var modulePath string
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, err := manifest.FindProjectRoot(cwd)
		if err != nil {
			return fmt.Errorf("not in a Go module (no go.mod found); use --file")
		}
		modulePath, err = manifest.ModulePath(root)
		if err != nil {
			return err
		}
		path = filepath.Join(root, manifest.FileName)
	}

	m, err := manifest.Load(path)
	if err != nil {
		var invalid *errors.ObserveError
		if verbose && stderrors.As(err, &invalid) {
			(&errors.LogHandler{Verbose: true, Out: out}).HandleError(invalid)
		}
		return err
	}

	if modulePath != "" {
		fmt.Fprintf(out, "module %s\n", modulePath)
	}
	names := m.ComponentNames()
	fmt.Fprintf(out, "%s: manifest %s, %d components\n", path, m.Version, len(names))
	for _, name := range names {
		observed := m.ObservedProperties(name)
		fmt.Fprintf(out, "  %s\n", name)
		if len(observed) > 0 {
			fmt.Fprintf(out, "    observed: %s\n", strings.Join(observed, ", "))
		}
		if subjects := m.Components[name].Observing; len(subjects) > 0 {
			fmt.Fprintf(out, "    observing: %s\n", strings.Join(subjects, ", "))
		}
		if verbose {
			if plain := plainProperties(m, name); len(plain) > 0 {
				fmt.Fprintf(out, "    plain: %s\n", strings.Join(plain, ", "))
			}
		}
	}
	return nil
}

// plainProperties returns the sorted names of name's properties that are not
// observed.
func plainProperties(m *manifest.Manifest, name string) []string {
	var plain []string
	for prop, p := range m.Components[name].Properties {
		if !p.Observe {
			plain = append(plain, prop)
		}
	}
	slices.Sort(plain)
	return plain
}
