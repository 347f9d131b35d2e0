package watch

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace/formatters"
)

type watchOptions struct {
	project      trace.ProjectOptions
	outputFormat string
	manifestPath string
}

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [entries...]",
		Short: "Retrace the project whenever a source or config file changes.",
		Long: `Watch a project directory and print the reachable file set again every
time a source file, tsconfig.json, package.json or .pkgtrace.yaml changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args)
		},
	}

	opts.project.AddFlags(cmd)
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "",
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "package.json whose published entries are traced (default: <root>/package.json)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions, entries []string) error {
	if opts.project.Commit != "" {
		return fmt.Errorf("--commit cannot be used with watch")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The first trace validates the flags and resolves the root.
	project, err := opts.project.Open(cmd)
	if err != nil {
		return err
	}
	r := &retracer{cmd: cmd, opts: opts, entries: entries}
	if err := r.run(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", project.RootDir)
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRetrace(ctx, project.RootDir, r.retrace, cmd.ErrOrStderr())
}

// retracer rebuilds the analyzer on every run so configuration edits and
// cached resolutions never go stale.
type retracer struct {
	mu      sync.Mutex
	cmd     *cobra.Command
	opts    *watchOptions
	entries []string
}

func (r *retracer) run() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, err := r.opts.project.Open(r.cmd)
	if err != nil {
		return err
	}
	formatter, err := formatters.NewFormatter(project.Format(r.opts.outputFormat))
	if err != nil {
		return err
	}

	result := project.Trace(r.entries, r.opts.manifestPath)
	output, err := formatter.Format(result, formatters.FormatOptions{RootDir: project.RootDir})
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(r.cmd.OutOrStdout(), output)
	return nil
}

func (r *retracer) retrace() {
	if err := r.run(); err != nil {
		fmt.Fprintf(r.cmd.ErrOrStderr(), "retrace error: %v\n", err)
	}
}
