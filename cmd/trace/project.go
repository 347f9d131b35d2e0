package trace

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
	"github.com/LegacyCodeHQ/pkgtrace/internal/config"
	"github.com/LegacyCodeHQ/pkgtrace/internal/logging"
	"github.com/LegacyCodeHQ/pkgtrace/vcs"
	"github.com/LegacyCodeHQ/pkgtrace/vcs/git"
)

// ProjectOptions are the flags shared by every command that analyzes a project.
type ProjectOptions struct {
	RootDir    string
	TSConfig   string
	ConfigFile string
	Commit     string
	Excludes   []string
}

// AddFlags registers the project flags on cmd.
func (o *ProjectOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.RootDir, "root", "r", "", "Project root directory (default: current directory)")
	cmd.Flags().StringVarP(&o.TSConfig, "tsconfig", "p", "", "Path to tsconfig.json (default: nearest tsconfig.json at or above the root)")
	cmd.Flags().StringVar(&o.ConfigFile, "config", "", "Path to a .pkgtrace.yaml config file")
	cmd.Flags().StringVarP(&o.Commit, "commit", "c", "", "Analyze the tree of a git commit instead of the working directory")
	cmd.Flags().StringSliceVarP(&o.Excludes, "exclude", "x", nil, "Exclude files whose path contains any of these substrings (comma-separated)")
}

// Project is an analyzer configured from flags, the config file and the
// environment.
type Project struct {
	RootDir  string
	Config   *config.Config
	Analyzer *depgraph.Analyzer
}

// Open resolves the root, loads configuration and creates the analyzer.
// Flag values take precedence over the config file.
func (o *ProjectOptions) Open(cmd *cobra.Command) (*Project, error) {
	rootDir := o.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}

	cfg, err := config.LoadConfig(absRoot, o.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	tsconfigPath := cfg.TSConfig
	if o.TSConfig != "" {
		tsconfigPath = o.TSConfig
	}
	excludes := append(append([]string(nil), cfg.Exclude...), o.Excludes...)

	fs := vcs.NewOSFileSystem()
	if o.Commit != "" {
		fs, err = git.NewCommitFileSystem(cmd.Context(), absRoot, o.Commit)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", o.Commit, err)
		}
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.New(cmd.ErrOrStderr(), verbose)

	analyzer, err := depgraph.NewAnalyzer(depgraph.Options{
		RootDir:         absRoot,
		TSConfigPath:    tsconfigPath,
		ExcludePatterns: excludes,
		FileSystem:      fs,
		Logger:          logger,
		CacheSize:       cfg.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	return &Project{
		RootDir:  analyzer.RootDir(),
		Config:   cfg,
		Analyzer: analyzer,
	}, nil
}

// Trace traces explicit entries, or the manifest's published entries when
// none are given. An empty manifestPath falls back to the configured one.
func (p *Project) Trace(entries []string, manifestPath string) depgraph.ImportGraphResult {
	if len(entries) > 0 {
		return p.Analyzer.TraceFromEntries(entries)
	}
	if manifestPath == "" {
		manifestPath = p.Config.Manifest
	}
	return p.Analyzer.TraceFromManifest(manifestPath)
}

// Format returns flagValue when set, otherwise the configured format.
func (p *Project) Format(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return p.Config.Format
}
