package why

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace"
	"github.com/LegacyCodeHQ/pkgtrace/cmd/trace/formatters"
	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type whyOptions struct {
	project      trace.ProjectOptions
	outputFormat string
	manifestPath string
}

type chainOutput struct {
	Target    string   `json:"target"`
	Reachable bool     `json:"reachable"`
	Chain     []string `json:"chain"`
}

// NewCommand returns a new why command instance.
func NewCommand() *cobra.Command {
	opts := &whyOptions{}

	cmd := &cobra.Command{
		Use:   "why <file> [entries...]",
		Short: "Show the shortest import chain from an entry point to a file.",
		Long: `Show why a file is part of the traced set: the shortest chain of imports
leading from an entry point to it. Without entry arguments, the entries
published by package.json are used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhy(cmd, opts, args[0], args[1:])
		},
	}

	opts.project.AddFlags(cmd)
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", formatText,
		fmt.Sprintf("Output format (%s)", supportedFormats()))
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "package.json whose published entries are used (default: <root>/package.json)")

	return cmd
}

func runWhy(cmd *cobra.Command, opts *whyOptions, fileArg string, entries []string) error {
	if !isSupportedFormat(opts.outputFormat) {
		return fmt.Errorf("unknown format: %s (valid options: %s)", opts.outputFormat, supportedFormats())
	}

	project, err := opts.project.Open(cmd)
	if err != nil {
		return err
	}

	result := project.Trace(entries, opts.manifestPath)
	if fatal, ok := trace.FatalError(result); ok {
		return fatal
	}

	pathResolver, err := trace.NewPathResolver(project.RootDir, false)
	if err != nil {
		return fmt.Errorf("failed to create path resolver: %w", err)
	}
	targetPath, err := pathResolver.Resolve(trace.RawPath(fileArg))
	if err != nil {
		return fmt.Errorf("failed to resolve file %q: %w", fileArg, err)
	}

	target := targetPath.String()
	chain, err := result.Chain(target)
	if err != nil && !errors.Is(err, depgraph.ErrNoChain) {
		return err
	}

	out := chainOutput{
		Target:    target,
		Reachable: err == nil,
		Chain:     chain,
	}
	if out.Chain == nil {
		out.Chain = []string{}
	}

	output, err := formatOutput(opts.outputFormat, project.RootDir, out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatOutput(format, rootDir string, out chainOutput) (string, error) {
	switch strings.ToLower(format) {
	case formatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to generate JSON: %w", err)
		}
		return string(data), nil
	default:
		return formatChainText(rootDir, out), nil
	}
}

func formatChainText(rootDir string, out chainOutput) string {
	target := formatters.DisplayPath(rootDir, out.Target)
	if !out.Reachable {
		return fmt.Sprintf("%s is not reachable from the entry points.", target)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s is reachable from %s:\n", target, formatters.DisplayPath(rootDir, out.Chain[0]))
	for i, file := range out.Chain {
		if i == 0 {
			fmt.Fprintf(&sb, "  %s\n", formatters.DisplayPath(rootDir, file))
			continue
		}
		fmt.Fprintf(&sb, "  %s-> %s\n", strings.Repeat("  ", i-1), formatters.DisplayPath(rootDir, file))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case formatText, formatJSON:
		return true
	default:
		return false
	}
}

func supportedFormats() string {
	return strings.Join([]string{formatText, formatJSON}, ", ")
}
