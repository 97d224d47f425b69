package asset

import (
	"reflect"
	"testing"
)

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher("decomoji", ".png")

	tests := []struct {
		path string
		want bool
	}{
		{path: "decomoji/a.png", want: true},
		{path: "decomoji/basic/a.png", want: true},
		{path: "public/decomoji/extra/b.png", want: true},
		{path: "README.md", want: false},
		{path: "decomoji/a.gif", want: false},
		{path: "Decomoji/a.png", want: false},
		{path: "decomojis.png", want: false},
		{path: "scripts/decomoji.png", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMatcher_TrailingSlashDir(t *testing.T) {
	m := NewMatcher("decomoji/", ".png")
	if !m.Match("decomoji/a.png") {
		t.Error("expected trailing slash in dir to be ignored")
	}
}

func TestMatcher_Filter(t *testing.T) {
	m := NewMatcher("decomoji", ".png")

	got := m.Filter([]string{"README.md", "decomoji/b.png", "package.json", "decomoji/a.png"})
	want := []string{"decomoji/b.png", "decomoji/a.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}

	if got := m.Filter([]string{"README.md"}); got != nil {
		t.Errorf("expected nil when nothing matches, got %v", got)
	}
}

func TestMatcher_Stem(t *testing.T) {
	m := NewMatcher("decomoji", ".png")

	tests := []struct {
		path string
		want string
	}{
		{path: "decomoji/a.png", want: "a"},
		{path: "decomoji/basic/ok-desu.png", want: "ok-desu"},
		{path: "decomoji/extra/a.png.png", want: "a"},
		{path: "decomoji/noext", want: "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Stem(tt.path); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRelPath(t *testing.T) {
	if got := RelPath("decomoji/a.png"); got != "./decomoji/a.png" {
		t.Errorf("RelPath() = %q", got)
	}
}
