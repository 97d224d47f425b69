package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/decomoji/manifestgen/internal/config"
	"github.com/decomoji/manifestgen/internal/generate"
	"github.com/decomoji/manifestgen/internal/git"
	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Overrides
	repoDir  string
	prefix   string
	baseline string
	outDir   string
	dryRun   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "manifestgen",
	Short: "Generate decomoji finder manifests from release tags",
	Long: `manifestgen walks the release tags of the decomoji repository, diffs each
version against the previous one, and writes a JSON manifest per version
describing which images were added, updated, removed or renamed.

The manifests are consumed by the decomoji finder.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write one manifest per version tag",
	Long: `Generate lists the tags matching the configured prefix, prepends the legacy
baseline tag, and diffs every consecutive pair of tags. Only image assets
are considered. Each version's manifest is written to <output.dir>/<tag>.json.

Generation stops at the first failure. Manifests written before the failure
are left in place.`,
	RunE: runGenerate,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Print the version pairs that would be diffed",
	RunE:  runTags,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("manifestgen %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (built-in defaults are used when omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", "", "git working tree to inspect (overrides repo.dir)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "tag prefix pattern (overrides tags.prefix)")
	rootCmd.PersistentFlags().StringVar(&baseline, "baseline", "", "legacy baseline tag (overrides tags.baseline)")

	// Generate command flags
	generateCmd.Flags().StringVar(&outDir, "out-dir", "", "manifest output directory (overrides output.dir)")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show manifest changes without writing files")

	// Add commands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	gitClient := git.NewShellClient(cfg.Repo.Dir)
	engine := generate.NewEngine(cfg, gitClient, logger, dryRun)

	result, err := engine.Run(ctx)
	if err != nil {
		logger.Error("generation failed", "error", err)
		return err
	}

	if result.DryRun {
		return nil
	}
	for _, tr := range result.Tags {
		logger.Info("saved", "path", tr.Path, "fixed", tr.Fixed, "upload", tr.Upload, "rename", tr.Rename, "entries", tr.Entries)
	}

	return nil
}

func runTags(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := generate.NewEngine(cfg, git.NewShellClient(cfg.Repo.Dir), logger, true)
	pairs, err := engine.Pairs(ctx)
	if err != nil {
		logger.Error("tag enumeration failed", "error", err)
		return err
	}

	if len(pairs) == 0 {
		logger.Info("no matching tags, nothing to process", "prefix", cfg.Tags.Prefix)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, p := range pairs {
		_, _ = fmt.Fprintf(out, "%s...%s\n", p.From, p.To)
	}
	return nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// loadConfig reads the config file when one is given, falls back to the
// built-in defaults otherwise, and applies command-line overrides.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	var cfg *config.Config
	if cfgFile == "" {
		logger.Debug("no config file given, using defaults")
		cfg = config.Default()
	} else {
		logger.Info("loading configuration", "path", cfgFile)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("configuration loaded",
		"repo", cfg.Repo.Dir,
		"prefix", cfg.Tags.Prefix,
		"baseline", cfg.Tags.Baseline,
		"order", cfg.Tags.Order,
		"assets", cfg.Assets.Dir+"/*"+cfg.Assets.Ext,
		"output_dir", cfg.Output.Dir)

	return cfg, nil
}

// applyOverrides copies non-empty command-line values over cfg
func applyOverrides(cfg *config.Config) {
	if repoDir != "" {
		cfg.Repo.Dir = repoDir
	}
	if prefix != "" {
		cfg.Tags.Prefix = prefix
	}
	if baseline != "" {
		cfg.Tags.Baseline = baseline
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
