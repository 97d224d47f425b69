package manifest

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the indented forms of prev and next.
// A nil prev is treated as a missing file. Returns an empty string when
// both encode identically.
func Diff(name string, prev, next *Manifest) (string, error) {
	var a []string
	fromFile := "/dev/null"
	if prev != nil {
		data, err := Encode(prev, true)
		if err != nil {
			return "", err
		}
		a = difflib.SplitLines(string(data) + "\n")
		fromFile = "a/" + name
	}

	data, err := Encode(next, true)
	if err != nil {
		return "", err
	}
	b := difflib.SplitLines(string(data) + "\n")

	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: fromFile,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff manifest %s: %w", name, err)
	}
	return s, nil
}
