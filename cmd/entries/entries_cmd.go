package entries

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace/formatters"
	"github.com/LegacyCodeHQ/pkgtrace/depgraph/manifest"
)

type entriesOptions struct {
	project      trace.ProjectOptions
	outputFormat string
	manifestPath string
}

// NewCommand returns a new entries command instance.
func NewCommand() *cobra.Command {
	opts := &entriesOptions{}

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Show the source entry points published by package.json.",
		Long: `Show how the exports, main, module and bin fields of package.json map
back to source files. These are the entries traced by 'pkgtrace trace' when
no entry arguments are given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntries(cmd, opts)
		},
	}

	opts.project.AddFlags(cmd)
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "package.json to read (default: <root>/package.json)")

	return cmd
}

func runEntries(cmd *cobra.Command, opts *entriesOptions) error {
	project, err := opts.project.Open(cmd)
	if err != nil {
		return err
	}

	manifestPath := opts.manifestPath
	if manifestPath == "" {
		manifestPath = project.Config.Manifest
	}
	set, err := project.Analyzer.LoadEntrySet(manifestPath)
	if err != nil {
		return err
	}

	var output string
	switch format := project.Format(opts.outputFormat); format {
	case formatters.OutputFormatJSON.String():
		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to generate JSON: %w", err)
		}
		output = string(data)
	case formatters.OutputFormatText.String():
		output = formatText(project.RootDir, set)
	default:
		return fmt.Errorf("unknown format: %s (valid options: text, json)", format)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatText(rootDir string, set manifest.EntrySet) string {
	if len(set.Entries) == 0 {
		return "No entry points published."
	}

	width := 0
	for _, e := range set.Entries {
		width = max(width, len(e.Name))
	}

	var sb strings.Builder
	for _, e := range set.Entries {
		fmt.Fprintf(&sb, "%-*s  %s\n", width, e.Name, formatters.DisplayPath(rootDir, e.SourcePath))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
