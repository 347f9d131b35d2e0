package formatters

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

// TextFormatter lists entries, files, cycles and errors for a terminal.
type TextFormatter struct{}

// Format renders the result with paths relative to opts.RootDir.
func (f *TextFormatter) Format(result depgraph.ImportGraphResult, opts FormatOptions) (string, error) {
	var sb strings.Builder

	if opts.Label != "" {
		fmt.Fprintf(&sb, "%s\n\n", opts.Label)
	}

	fmt.Fprintf(&sb, "Entries (%d)\n", len(result.Entries))
	for _, entry := range result.Entries {
		fmt.Fprintf(&sb, "  %s\n", DisplayPath(opts.RootDir, entry))
	}

	fmt.Fprintf(&sb, "\nFiles (%d)\n", len(result.Files))
	for _, file := range result.Files {
		fmt.Fprintf(&sb, "  %s\n", DisplayPath(opts.RootDir, file))
	}

	if len(result.Cycles) > 0 {
		fmt.Fprintf(&sb, "\nCycles (%d)\n", len(result.Cycles))
		for _, cycle := range result.Cycles {
			members := make([]string, 0, len(cycle))
			for _, member := range cycle {
				members = append(members, DisplayPath(opts.RootDir, member))
			}
			fmt.Fprintf(&sb, "  %s\n", strings.Join(members, ", "))
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(&sb, "\nErrors (%d)\n", len(result.Errors))
		for _, e := range result.Errors {
			if e.Path != "" {
				fmt.Fprintf(&sb, "  %s %s: %s\n", e.Type, DisplayPath(opts.RootDir, e.Path), e.Message)
			} else {
				fmt.Fprintf(&sb, "  %s: %s\n", e.Type, e.Message)
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "\n"), nil
}
