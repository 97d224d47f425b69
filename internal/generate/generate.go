package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/decomoji/manifestgen/internal/asset"
	"github.com/decomoji/manifestgen/internal/collect"
	"github.com/decomoji/manifestgen/internal/config"
	"github.com/decomoji/manifestgen/internal/git"
	"github.com/decomoji/manifestgen/internal/manifest"
	"github.com/decomoji/manifestgen/internal/tags"
)

// Engine orchestrates manifest generation
type Engine struct {
	cfg       *config.Config
	git       git.Client
	matcher   *asset.Matcher
	collector *collect.Collector
	writer    *manifest.Writer
	logger    *slog.Logger
	dryRun    bool
}

// NewEngine creates a new generation engine
func NewEngine(cfg *config.Config, gitClient git.Client, logger *slog.Logger, dryRun bool) *Engine {
	matcher := asset.NewMatcher(cfg.Assets.Dir, cfg.Assets.Ext)
	return &Engine{
		cfg:       cfg,
		git:       gitClient,
		matcher:   matcher,
		collector: collect.NewCollector(gitClient, matcher, logger),
		writer:    manifest.NewWriter(cfg.Output.Dir, cfg.Output.Indent),
		logger:    logger,
		dryRun:    dryRun,
	}
}

// Pairs enumerates the version tags and returns consecutive pairs.
// An empty result means there is nothing to process.
func (e *Engine) Pairs(ctx context.Context) ([]tags.Pair, error) {
	tagList, err := tags.Enumerate(ctx, e.git, tags.Options{
		Prefix:   e.cfg.Tags.Prefix,
		Baseline: e.cfg.Tags.Baseline,
		Order:    e.cfg.Tags.Order,
	})
	if err != nil {
		return nil, err
	}
	return tags.Pairs(tagList), nil
}

// Run generates one manifest per version pair, in tag order. The first
// failure aborts the run; manifests already written stay on disk.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.logger.Info("starting generation",
		"repo", e.cfg.Repo.Dir,
		"prefix", e.cfg.Tags.Prefix,
		"baseline", e.cfg.Tags.Baseline,
		"output_dir", e.cfg.Output.Dir,
		"dry_run", e.dryRun)

	pairs, err := e.Pairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tags: %w", err)
	}

	result := &Result{DryRun: e.dryRun}
	if len(pairs) == 0 {
		e.logger.Info("no matching tags, nothing to process", "prefix", e.cfg.Tags.Prefix)
		return result, nil
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tr, err := e.processPair(ctx, pair)
		if err != nil {
			return result, fmt.Errorf("failed to generate manifest for %s: %w", pair.To, err)
		}
		result.Tags = append(result.Tags, *tr)
	}

	e.logger.Info("generation completed",
		"tags", len(result.Tags),
		"dry_run", e.dryRun)
	return result, nil
}

// processPair collects, builds and persists the manifest for pair.To
func (e *Engine) processPair(ctx context.Context, pair tags.Pair) (*TagResult, error) {
	log, err := e.collector.Collect(ctx, pair)
	if err != nil {
		return nil, err
	}
	if log.Empty() {
		e.logger.Info("no asset changes", "from", pair.From, "to", pair.To)
	}

	m := manifest.Build(pair.To, log, e.matcher)
	e.logManifest(pair.To, m)

	tr := &TagResult{
		Tag:     pair.To,
		From:    pair.From,
		Path:    e.writer.Path(pair.To),
		Fixed:   len(m.Fixed),
		Upload:  len(m.Upload),
		Rename:  len(m.Rename),
		Entries: m.Len(),
	}

	if e.dryRun {
		changed, err := e.preview(pair.To, m)
		if err != nil {
			return nil, err
		}
		tr.Changed = changed
		return tr, nil
	}

	path, err := e.writer.Write(pair.To, m)
	if err != nil {
		return nil, err
	}
	tr.Changed = true
	e.logger.Info("manifest saved", "path", path)
	return tr, nil
}

// preview logs the difference between the on-disk manifest and m.
// Returns true if writing m would change the file.
func (e *Engine) preview(tag string, m *manifest.Manifest) (bool, error) {
	prev, err := e.writer.Read(tag)
	if err != nil && !errors.Is(err, manifest.ErrNotExist) {
		e.logger.Warn("[dry-run] existing manifest unreadable, diffing against empty", "tag", tag, "error", err)
		prev = nil
	}

	diff, err := manifest.Diff(tag+".json", prev, m)
	if err != nil {
		return false, err
	}
	if diff == "" {
		e.logger.Info("[dry-run] manifest unchanged", "path", e.writer.Path(tag))
		return false, nil
	}

	e.logger.Info("[dry-run] would write manifest", "path", e.writer.Path(tag), "diff", diff)
	return true, nil
}

// logManifest logs every routed entry at debug level
func (e *Engine) logManifest(tag string, m *manifest.Manifest) {
	for _, entry := range m.Fixed {
		e.logger.Debug("fixed", "tag", tag, "name", entry.Name, "path", entry.Path)
	}
	for _, entry := range m.Upload {
		e.logger.Debug("upload", "tag", tag, "name", entry.Name, "path", entry.Path)
	}
	for _, alias := range m.Rename {
		e.logger.Debug("rename", "tag", tag, "name", alias.Name, "alias_for", alias.AliasFor)
	}
	e.logger.Info("manifest built",
		"tag", tag,
		"fixed", len(m.Fixed),
		"upload", len(m.Upload),
		"rename", len(m.Rename),
		"entries", m.Len())
}
