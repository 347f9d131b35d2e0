package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/cmd/entries"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/watch"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/why"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// verbose enables debug logging for every subcommand
var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkgtrace",
		Short: "Find the source files a TypeScript package really ships",
		Long: `pkgtrace follows imports from a package's entry points and lists every
project source file they reach. Third-party modules, type declarations and
tests are left out.

Use 'pkgtrace --help' to see all available commands, or 'pkgtrace <command> --help'
for detailed information about a specific command.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(trace.NewCommand())
	cmd.AddCommand(entries.NewCommand())
	cmd.AddCommand(why.NewCommand())
	cmd.AddCommand(watch.NewCommand())

	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations["buildDate"] = buildDate
	cmd.Annotations["commit"] = commit

	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log resolution details to stderr")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the command context, which stops running git reads.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
