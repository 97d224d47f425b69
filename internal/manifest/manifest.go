// Package manifest converts per-version asset changes into the finder's
// JSON manifest format.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/decomoji/manifestgen/internal/asset"
	"github.com/decomoji/manifestgen/internal/collect"
)

// Entry describes one asset as the finder sees it. Exactly one of
// CreatedVer and UpdateVer is set.
type Entry struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	CreatedVer string `json:"created_ver,omitempty"`
	UpdateVer  string `json:"update_ver,omitempty"`
}

// Alias records that an asset path was renamed
type Alias struct {
	Name     string `json:"name"`      // old path
	AliasFor string `json:"alias_for"` // new path
}

// Manifest is the per-version document consumed by the finder
type Manifest struct {
	Fixed  []Entry `json:"fixed"`
	Upload []Entry `json:"upload"`
	Rename []Alias `json:"rename"`
}

// New returns a manifest whose lists are empty but non-nil
func New() *Manifest {
	return &Manifest{
		Fixed:  []Entry{},
		Upload: []Entry{},
		Rename: []Alias{},
	}
}

// Build routes the changes in log into a manifest for tag.
//
//	added    -> upload (created_ver)
//	modified -> fixed + upload (update_ver)
//	renamed  -> fixed(old) + upload(new) (update_ver), rename alias
//	deleted  -> fixed (update_ver)
func Build(tag string, log *collect.Log, matcher *asset.Matcher) *Manifest {
	m := New()
	if log == nil {
		return m
	}

	created := func(p string) Entry {
		return Entry{Name: matcher.Stem(p), Path: asset.RelPath(p), CreatedVer: tag}
	}
	updated := func(p string) Entry {
		return Entry{Name: matcher.Stem(p), Path: asset.RelPath(p), UpdateVer: tag}
	}

	for _, p := range log.Upload {
		m.Upload = append(m.Upload, created(p))
	}
	for _, p := range log.Modify {
		m.Fixed = append(m.Fixed, updated(p))
		m.Upload = append(m.Upload, updated(p))
	}
	for _, r := range log.Rename {
		m.Fixed = append(m.Fixed, updated(r.From))
		m.Upload = append(m.Upload, updated(r.To))
		m.Rename = append(m.Rename, Alias{Name: r.From, AliasFor: r.To})
	}
	for _, p := range log.Delete {
		m.Fixed = append(m.Fixed, updated(p))
	}

	return m
}

// Len returns the total number of entries across all lists
func (m *Manifest) Len() int {
	return len(m.Fixed) + len(m.Upload) + len(m.Rename)
}

// Encode serializes m as compact JSON, or two-space indented JSON when indent is set.
// HTML characters are not escaped so asset names round-trip verbatim.
func Encode(m *Manifest, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(normalize(m)); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a manifest document
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return normalize(&m), nil
}

// normalize replaces nil lists with empty ones so they encode as []
func normalize(m *Manifest) *Manifest {
	out := *m
	if out.Fixed == nil {
		out.Fixed = []Entry{}
	}
	if out.Upload == nil {
		out.Upload = []Entry{}
	}
	if out.Rename == nil {
		out.Rename = []Alias{}
	}
	return &out
}
