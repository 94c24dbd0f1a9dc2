// Package cmd implements the observe CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (check, version).
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	// Flags builds the command's flag set. Nil means the command takes no flags.
	Flags func() *pflag.FlagSet
	Run   func(flags *pflag.FlagSet, args []string, out io.Writer) error
}

var rootCmd = struct {
	Long        string
	Usage       string
	SubCommands []*Command
}{
	Long: `observe inspects the component manifests (observe.yaml) that declare
which component properties are bound to observable subjects.

Use "observe <command> --help" for more information about a command.`,
	Usage: "observe <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments, writing results to out.
func Execute(args []string, out io.Writer) error {
	if len(args) == 0 {
		printHelp(out)
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp(out)
		return nil
	case "-v", "--version":
		printVersion(out)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printHelp(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	flagSet := pflag.NewFlagSet(cmd.Name, pflag.ContinueOnError)
	if cmd.Flags != nil {
		flagSet = cmd.Flags()
	}
	flagSet.SetOutput(io.Discard)
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printCommandHelp(out, cmd, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printCommandHelp(out, cmd, flagSet)
		return nil
	}

	return cmd.Run(flagSet, flagSet.Args(), out)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, rootCmd.Long)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, sub := range rootCmd.SubCommands {
		fmt.Fprintf(out, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintln(out, "  -h, --help           Show help for a command")
	fmt.Fprintln(out, "  -v, --version        Show version information")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  observe check                     Check ./observe.yaml of the current module")
	fmt.Fprintln(out, "  observe check --file app.yaml     Check a specific manifest")
}

func printCommandHelp(out io.Writer, cmd *Command, flagSet *pflag.FlagSet) {
	fmt.Fprintln(out, cmd.Long)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s\n", cmd.Usage)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, flagSet.FlagUsages())
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "observe version %s (built %s)\n", Version, BuildTime)
}
