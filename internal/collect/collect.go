package collect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/decomoji/manifestgen/internal/asset"
	"github.com/decomoji/manifestgen/internal/git"
	"github.com/decomoji/manifestgen/internal/tags"
)

// exactRename is the similarity score of a rename without content changes.
// Lower scores are still routed as renames but logged.
const exactRename = 100

// Log holds the asset paths changed between two versions, keyed by change type.
// A nil field means the query returned no asset paths.
type Log struct {
	Upload []string
	Modify []string
	Rename []git.Rename
	Delete []string
}

// Empty returns true if no asset changed
func (l *Log) Empty() bool {
	return len(l.Upload) == 0 && len(l.Modify) == 0 && len(l.Rename) == 0 && len(l.Delete) == 0
}

// Collector runs the per-version diff queries
type Collector struct {
	git     git.Client
	matcher *asset.Matcher
	logger  *slog.Logger
}

// NewCollector creates a new diff collector
func NewCollector(gitClient git.Client, matcher *asset.Matcher, logger *slog.Logger) *Collector {
	return &Collector{
		git:     gitClient,
		matcher: matcher,
		logger:  logger,
	}
}

// Collect queries additions, modifications, renames and deletions between
// pair.From and pair.To, keeping only asset paths. The first failing query
// aborts collection.
func (c *Collector) Collect(ctx context.Context, pair tags.Pair) (*Log, error) {
	log := &Log{}

	for _, q := range []struct {
		name   string
		filter git.Filter
		dst    *[]string
	}{
		{name: "upload", filter: git.FilterAdded, dst: &log.Upload},
		{name: "modify", filter: git.FilterModified, dst: &log.Modify},
		{name: "rename", filter: git.FilterRenamed},
		{name: "delete", filter: git.FilterDeleted, dst: &log.Delete},
	} {
		c.logger.Info("diff", "mode", string(q.filter), "from", pair.From, "to", pair.To)

		if q.filter == git.FilterRenamed {
			renames, err := c.git.DiffRenames(ctx, pair.From, pair.To)
			if err != nil {
				return nil, fmt.Errorf("%s diff %s...%s failed: %w", q.name, pair.From, pair.To, err)
			}
			c.routeRenames(log, renames)
			continue
		}

		paths, err := c.git.DiffNames(ctx, pair.From, pair.To, q.filter)
		if err != nil {
			return nil, fmt.Errorf("%s diff %s...%s failed: %w", q.name, pair.From, pair.To, err)
		}
		*q.dst = append(*q.dst, c.matcher.Filter(paths)...)
	}

	return log, nil
}

// routeRenames files each rename by which of its sides is an asset path.
// A rename within the asset directory stays a rename. A rename out of it
// retires the old asset like a deletion, and a rename into it publishes the
// new asset like an addition. Non-asset paths never reach the log.
func (c *Collector) routeRenames(log *Log, renames []git.Rename) {
	for _, r := range renames {
		fromAsset, toAsset := c.matcher.Match(r.From), c.matcher.Match(r.To)
		if (fromAsset || toAsset) && r.Score != exactRename {
			c.logger.Warn("partial rename", "from", r.From, "to", r.To, "score", r.Score)
		}

		switch {
		case fromAsset && toAsset:
			log.Rename = append(log.Rename, r)
		case fromAsset:
			c.logger.Info("asset moved out of asset directory", "from", r.From, "to", r.To)
			log.Delete = append(log.Delete, r.From)
		case toAsset:
			c.logger.Info("asset moved into asset directory", "from", r.From, "to", r.To)
			log.Upload = append(log.Upload, r.To)
		}
	}
}
