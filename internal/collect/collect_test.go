package collect

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/decomoji/manifestgen/internal/asset"
	"github.com/decomoji/manifestgen/internal/git"
	"github.com/decomoji/manifestgen/internal/tags"
)

// mockGitClient implements git.Client with canned responses per filter.
type mockGitClient struct {
	names   map[git.Filter][]string
	renames []git.Rename
	errs    map[git.Filter]error
	calls   []git.Filter
}

func (m *mockGitClient) ListTags(_ context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockGitClient) DiffNames(_ context.Context, _, _ string, filter git.Filter) ([]string, error) {
	m.calls = append(m.calls, filter)
	return m.names[filter], m.errs[filter]
}

func (m *mockGitClient) DiffRenames(_ context.Context, _, _ string) ([]git.Rename, error) {
	m.calls = append(m.calls, git.FilterRenamed)
	return m.renames, m.errs[git.FilterRenamed]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCollect(t *testing.T) {
	client := &mockGitClient{
		names: map[git.Filter][]string{
			git.FilterAdded:    {"README.md", "decomoji/basic/c.png"},
			git.FilterModified: {"package.json", "decomoji/basic/m.png"},
			git.FilterDeleted:  {"decomoji/basic/d.png", "docs/old.md"},
		},
		renames: []git.Rename{
			{From: "decomoji/basic/a.png", To: "decomoji/basic/b.png", Score: 100},
			{From: "docs/x.md", To: "docs/y.md", Score: 100},
			{From: "decomoji/basic/p.png", To: "decomoji/basic/q.png", Score: 92},
			{From: "decomoji/basic/out.png", To: "archive/out.png", Score: 100},
			{From: "staging/newcomer.png", To: "decomoji/basic/newcomer.png", Score: 100},
		},
	}

	c := NewCollector(client, asset.NewMatcher("decomoji", ".png"), testLogger())
	log, err := c.Collect(context.Background(), tags.Pair{From: "v5.0.0", To: "v5.1.0"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := &Log{
		Upload: []string{"decomoji/basic/c.png", "decomoji/basic/newcomer.png"},
		Modify: []string{"decomoji/basic/m.png"},
		Rename: []git.Rename{
			{From: "decomoji/basic/a.png", To: "decomoji/basic/b.png", Score: 100},
			{From: "decomoji/basic/p.png", To: "decomoji/basic/q.png", Score: 92},
		},
		Delete: []string{"decomoji/basic/out.png", "decomoji/basic/d.png"},
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("Collect() = %+v, want %+v", log, want)
	}

	wantCalls := []git.Filter{git.FilterAdded, git.FilterModified, git.FilterRenamed, git.FilterDeleted}
	if !reflect.DeepEqual(client.calls, wantCalls) {
		t.Errorf("query order = %v, want %v", client.calls, wantCalls)
	}
}

func TestCollect_RenamesAcrossAssetDirectory(t *testing.T) {
	tests := []struct {
		name   string
		rename git.Rename
		want   *Log
	}{
		{
			name:   "moved out of the asset directory retires the asset",
			rename: git.Rename{From: "decomoji/retired.png", To: "archive/retired.png", Score: 100},
			want:   &Log{Delete: []string{"decomoji/retired.png"}},
		},
		{
			name:   "moved into the asset directory publishes the asset",
			rename: git.Rename{From: "staging/newcomer.png", To: "decomoji/newcomer.png", Score: 100},
			want:   &Log{Upload: []string{"decomoji/newcomer.png"}},
		},
		{
			name:   "partial rename within the asset directory stays a rename",
			rename: git.Rename{From: "decomoji/old.png", To: "decomoji/new.png", Score: 75},
			want:   &Log{Rename: []git.Rename{{From: "decomoji/old.png", To: "decomoji/new.png", Score: 75}}},
		},
		{
			name:   "rename outside the asset directory is ignored",
			rename: git.Rename{From: "docs/a.md", To: "docs/b.md", Score: 100},
			want:   &Log{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockGitClient{renames: []git.Rename{tt.rename}}

			c := NewCollector(client, asset.NewMatcher("decomoji", ".png"), testLogger())
			log, err := c.Collect(context.Background(), tags.Pair{From: "4.27.0", To: "v5.0.0"})
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if !reflect.DeepEqual(log, tt.want) {
				t.Errorf("Collect() = %+v, want %+v", log, tt.want)
			}
		})
	}
}

func TestCollect_NoAssetChanges(t *testing.T) {
	client := &mockGitClient{
		names: map[git.Filter][]string{
			git.FilterModified: {"README.md"},
		},
	}

	c := NewCollector(client, asset.NewMatcher("decomoji", ".png"), testLogger())
	log, err := c.Collect(context.Background(), tags.Pair{From: "v5.0.0", To: "v5.1.0"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if log.Upload != nil || log.Modify != nil || log.Rename != nil || log.Delete != nil {
		t.Errorf("expected absent categories, got %+v", log)
	}
	if !log.Empty() {
		t.Error("expected Empty() to be true")
	}
}

func TestCollect_ErrorAbortsRemainingQueries(t *testing.T) {
	queryErr := &git.CommandError{Args: []string{"diff"}, Err: errors.New("exit status 128")}
	client := &mockGitClient{
		errs: map[git.Filter]error{git.FilterModified: queryErr},
	}

	c := NewCollector(client, asset.NewMatcher("decomoji", ".png"), testLogger())
	_, err := c.Collect(context.Background(), tags.Pair{From: "v5.0.0", To: "v5.1.0"})
	if err == nil {
		t.Fatal("expected error")
	}

	var cmdErr *git.CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("expected *git.CommandError in chain, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Errorf("expected collection to stop after the failing query, got calls %v", client.calls)
	}
}

func TestCollect_RenameError(t *testing.T) {
	client := &mockGitClient{
		errs: map[git.Filter]error{git.FilterRenamed: errors.New("boom")},
	}

	c := NewCollector(client, asset.NewMatcher("decomoji", ".png"), testLogger())
	if _, err := c.Collect(context.Background(), tags.Pair{From: "a", To: "b"}); err == nil {
		t.Fatal("expected error from rename query")
	}
}

func TestLogEmpty(t *testing.T) {
	if !(&Log{}).Empty() {
		t.Error("zero Log should be empty")
	}
	if (&Log{Delete: []string{"decomoji/a.png"}}).Empty() {
		t.Error("Log with a deletion should not be empty")
	}
}
