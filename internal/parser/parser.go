// Package parser extracts ADR front-matter and bodies from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// idRe matches decision-record identifiers of the form PREFIX-NNNN.
var idRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]*-\d{3,})\b`)

// Result holds the output of parsing one decision record.
type Result struct {
	ID          string
	Title       string
	Status      string
	DependsOn   []string
	DependedBy  []string
	ImpactScope []string
	TechTags    []string
	Frontmatter map[string]any
	Body        string
}

// ErrNoFrontmatter is returned when a document has no --- delimited block.
var ErrNoFrontmatter = fmt.Errorf("parser: no frontmatter block")

// Parse extracts the front-matter block and maps the known keys onto a typed
// Result. path is used only to derive an id when the front-matter lacks one.
func Parse(data []byte, path string) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Frontmatter: fm,
		Body:        body,
		ID:          deriveID(fm, path),
		Title:       stringField(fm, "title"),
		Status:      stringField(fm, "status"),
		DependsOn:   listField(fm, "depends-on"),
		DependedBy:  listField(fm, "depended-by"),
		ImpactScope: listField(fm, "impact-scope"),
		TechTags:    listField(fm, "tech-tags"),
	}
	if r.Title == "" {
		r.Title = firstHeading(body)
	}
	if r.ID == "" {
		return nil, fmt.Errorf("parser: no id in frontmatter or filename %q", path)
	}
	return r, nil
}

// splitFrontmatter separates the YAML front-matter (between leading ---
// delimiters) from the Markdown body. A document without a block, or with a
// block that is not valid YAML, is rejected rather than silently degraded:
// the loader skips such files with a warning.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", ErrNoFrontmatter
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", ErrNoFrontmatter
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, "", fmt.Errorf("parser: invalid frontmatter: %w", err)
	}
	return fm, body, nil
}

// deriveID returns the record id from front-matter, falling back to a
// PREFIX-NNNN match in the filename.
func deriveID(fm map[string]any, path string) string {
	if id := stringField(fm, "id"); id != "" {
		return id
	}
	if m := idRe.FindString(filepath.Base(path)); m != "" {
		return m
	}
	return ""
}

// stringField returns a scalar front-matter value as a trimmed string, or ""
// when the key is absent or not a scalar.
func stringField(fm map[string]any, key string) string {
	if fm == nil {
		return ""
	}
	switch v := fm[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

// listField returns a list front-matter value as a slice of trimmed strings.
// A scalar value is treated as a one-element list; anything else is empty.
func listField(fm map[string]any, key string) []string {
	if fm == nil {
		return nil
	}
	var out []string
	switch v := fm[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		s := strings.TrimSpace(v)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstHeading returns the first H1 heading of the body, or "".
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
