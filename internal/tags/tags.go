// Package tags enumerates release tags and pairs consecutive versions.
package tags

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/decomoji/manifestgen/internal/config"
	"github.com/decomoji/manifestgen/internal/git"
)

// ErrInvalidPrefix is returned when the tag prefix is not a valid pattern
var ErrInvalidPrefix = errors.New("invalid tag prefix")

// Options controls tag enumeration
type Options struct {
	Prefix   string
	Baseline string
	Order    config.TagOrder
}

// Pair is two consecutive version tags
type Pair struct {
	From string
	To   string
}

// Enumerate lists the tags whose name starts with a match of opts.Prefix and prepends
// opts.Baseline. When no tag matches it returns an empty slice and no error;
// the baseline is only added when there is something to diff against it.
func Enumerate(ctx context.Context, client git.Client, opts Options) ([]string, error) {
	pattern, err := anchoredPrefix(opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPrefix, opts.Prefix, err)
	}

	all, err := client.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	matched := make([]string, 0, len(all))
	for _, tag := range all {
		if pattern.MatchString(tag) {
			matched = append(matched, tag)
		}
	}
	if len(matched) == 0 {
		return []string{}, nil
	}

	if opts.Order == config.OrderSemver {
		sortSemver(matched)
	}

	return append([]string{opts.Baseline}, matched...), nil
}

// anchoredPrefix compiles prefix so that every alternative must match at the
// start of the tag. The prefix must be a complete pattern on its own, so a
// stray ")" cannot close the anchoring group.
func anchoredPrefix(prefix string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(prefix); err != nil {
		return nil, err
	}
	return regexp.Compile("^(?:" + prefix + ")")
}

// Pairs pairs each tag with its successor. The last tag is never a From.
func Pairs(tags []string) []Pair {
	if len(tags) < 2 {
		return []Pair{}
	}
	pairs := make([]Pair, 0, len(tags)-1)
	for i := 0; i+1 < len(tags); i++ {
		pairs = append(pairs, Pair{From: tags[i], To: tags[i+1]})
	}
	return pairs
}

// sortSemver orders tags by semantic version. Tags that do not parse keep
// their relative order after every parsed tag.
func sortSemver(tags []string) {
	versions := make(map[string]*semver.Version, len(tags))
	for _, tag := range tags {
		if v, err := semver.NewVersion(tag); err == nil {
			versions[tag] = v
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		vi, iok := versions[tags[i]]
		vj, jok := versions[tags[j]]
		switch {
		case iok && jok:
			return vi.LessThan(vj)
		case iok:
			return true
		default:
			return false
		}
	})
}
