package trace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace/formatters"
	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

// ErrAnalysisReportedErrors is returned with --fail-on-error when the
// result carries errors.
var ErrAnalysisReportedErrors = errors.New("analysis reported errors")

type traceOptions struct {
	project      ProjectOptions
	outputFormat string
	manifestPath string
	failOnError  bool
}

// NewCommand returns a new trace command instance.
func NewCommand() *cobra.Command {
	opts := &traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace [entries...]",
		Short: "List the project files reachable from entry points.",
		Long: `List every project source file reachable from the given entry points,
following static imports, re-exports, dynamic imports and require calls.
Third-party packages, declaration files and test files are left out.

Without entry arguments, the entry points published by package.json are traced.

Examples:
  pkgtrace trace src/index.ts                 # one entry
  pkgtrace trace src/cli.ts src/index.ts      # several entries
  pkgtrace trace                              # entries from package.json
  pkgtrace trace -m packages/core/package.json
  pkgtrace trace -f dot src/index.ts          # Graphviz output
  pkgtrace trace -c HEAD~1 src/index.ts       # project as of a commit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args)
		},
	}

	opts.project.AddFlags(cmd)
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "",
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "package.json whose published entries are traced (default: <root>/package.json)")
	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, "Exit with an error when the analysis reports any error")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *traceOptions, entries []string) error {
	if len(entries) > 0 && opts.manifestPath != "" {
		return fmt.Errorf("--manifest cannot be used with explicit entries")
	}

	project, err := opts.project.Open(cmd)
	if err != nil {
		return err
	}

	formatter, err := formatters.NewFormatter(project.Format(opts.outputFormat))
	if err != nil {
		return err
	}

	result := project.Trace(entries, opts.manifestPath)

	output, err := formatter.Format(result, formatters.FormatOptions{
		RootDir: project.RootDir,
		Label:   label(project.RootDir, opts.project.Commit),
	})
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	if opts.failOnError && result.HasErrors() {
		return fmt.Errorf("%w: %s", ErrAnalysisReportedErrors, errorSummary(result))
	}
	return nil
}

// errorSummary counts the recorded errors per type, e.g.
// "2 entry_not_found, 1 file_read_error".
func errorSummary(result depgraph.ImportGraphResult) string {
	var parts []string
	for _, errorType := range depgraph.ErrorTypes() {
		if n := len(result.ErrorsOfType(errorType)); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, errorType))
		}
	}
	return strings.Join(parts, ", ")
}

// label names the project, and the commit when one was analyzed.
func label(rootDir, commit string) string {
	if commit == "" {
		return ""
	}
	return fmt.Sprintf("%s • %s", filepath.Base(rootDir), commit)
}

// FatalError returns the first fatal error in result, if any.
func FatalError(result depgraph.ImportGraphResult) (depgraph.ImportGraphError, bool) {
	for _, e := range result.Errors {
		if e.Type.IsFatal() {
			return e, true
		}
	}
	return depgraph.ImportGraphError{}, false
}
