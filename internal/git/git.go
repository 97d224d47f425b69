package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Filter selects a class of path change for diff queries
type Filter string

const (
	FilterAdded    Filter = "A"
	FilterModified Filter = "M"
	FilterDeleted  Filter = "D"
	FilterRenamed  Filter = "R"
)

// Rename is a single renamed path between two revisions
type Rename struct {
	From  string
	To    string
	Score int // similarity percentage reported by git
}

// Client provides the history queries needed to build manifests
type Client interface {
	// ListTags returns every tag in the repository
	ListTags(ctx context.Context) ([]string, error)
	// DiffNames returns the paths changed between from and to that match filter
	DiffNames(ctx context.Context, from, to string, filter Filter) ([]string, error)
	// DiffRenames returns the renames detected between from and to
	DiffRenames(ctx context.Context, from, to string) ([]Rename, error)
}

// CommandError reports a failed git invocation
type CommandError struct {
	Args   []string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ShellClient implements Client by shelling out to the git command
type ShellClient struct {
	dir string
}

// NewShellClient creates a new git client operating on the working tree at dir
func NewShellClient(dir string) *ShellClient {
	return &ShellClient{dir: dir}
}

// ListTags runs git tag --list
func (c *ShellClient) ListTags(ctx context.Context) ([]string, error) {
	out, err := c.output(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DiffNames runs git diff --name-only restricted to filter
func (c *ShellClient) DiffNames(ctx context.Context, from, to string, filter Filter) ([]string, error) {
	switch filter {
	case FilterAdded, FilterModified, FilterDeleted:
	default:
		return nil, fmt.Errorf("unsupported name-only diff filter %q", filter)
	}

	out, err := c.output(ctx, "diff", revRange(from, to), "--name-only", "--diff-filter="+string(filter))
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DiffRenames runs git diff --name-status restricted to renames
func (c *ShellClient) DiffRenames(ctx context.Context, from, to string) ([]Rename, error) {
	out, err := c.output(ctx, "diff", revRange(from, to), "--name-status", "--diff-filter="+string(FilterRenamed))
	if err != nil {
		return nil, err
	}
	return ParseRenames(out)
}

// ParseRenames parses git --name-status output consisting of rename records
// of the form "R<score>\t<old>\t<new>".
func ParseRenames(out string) ([]Rename, error) {
	var renames []Rename
	for _, line := range splitLines(out) {
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || !strings.HasPrefix(fields[0], string(FilterRenamed)) {
			return nil, fmt.Errorf("malformed rename record %q", line)
		}

		score := 0
		if raw := strings.TrimPrefix(fields[0], string(FilterRenamed)); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("malformed rename score in %q: %w", line, err)
			}
			score = n
		}

		renames = append(renames, Rename{From: fields[1], To: fields[2], Score: score})
	}
	return renames, nil
}

// revRange builds the symmetric-difference range used for all diff queries
func revRange(from, to string) string {
	return from + "..." + to
}

// splitLines splits line-oriented output, dropping empty records.
// Returns nil when there are no records.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// output executes git with args and returns stdout, or a *CommandError with stderr on failure
func (c *ShellClient) output(ctx context.Context, args ...string) (string, error) {
	// core.quotePath=false keeps non-ASCII asset names unescaped in the output
	fullArgs := append([]string{"-C", c.dir, "-c", "core.quotePath=false"}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   fullArgs,
			Err:    err,
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}
	return stdout.String(), nil
}
