// Package replay feeds recorded form entries through the journal, exactly as
// the web form would submit them.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"trenerka/internal/core"
)

// Entry is one submitted form: draft field name to raw value.
type Entry struct {
	Line   int
	Fields map[string]string
}

// Journal is the part of the journal a replay drives.
type Journal interface {
	UpdateDraftField(ctx context.Context, field, value string) error
	AddSession(ctx context.Context) (core.Session, error)
}

// Parse reads a YAML sequence of field maps. Scalars are taken verbatim, so
// `paid: 1000` and `date: 2024-06-03` arrive as the text the user typed.
func Parse(r io.Reader) ([]Entry, error) {
	var doc []map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	entries := make([]Entry, 0, len(doc))
	for i, raw := range doc {
		e := Entry{Fields: make(map[string]string, len(raw))}
		for key, node := range raw {
			if e.Line == 0 || (node.Line > 0 && node.Line < e.Line) {
				e.Line = node.Line
			}
			if node.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("entry %d: field %q: expected a scalar value (line %d)", i+1, key, node.Line)
			}
			if node.Tag == "!!null" {
				e.Fields[key] = ""
				continue
			}
			e.Fields[key] = node.Value
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Run applies each entry's fields to the draft and adds a session per entry.
// Fields are applied in form order; unknown fields abort the replay.
func Run(ctx context.Context, j Journal, entries []Entry) ([]core.Session, error) {
	added := make([]core.Session, 0, len(entries))
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		for _, key := range orderedKeys(e.Fields) {
			if err := j.UpdateDraftField(ctx, key, e.Fields[key]); err != nil {
				return added, fmt.Errorf("entry %d (line %d): field %q: %w", i+1, e.Line, key, err)
			}
		}
		s, err := j.AddSession(ctx)
		if err != nil {
			return added, fmt.Errorf("entry %d (line %d): add session: %w", i+1, e.Line, err)
		}
		added = append(added, s)
	}
	return added, nil
}

// orderedKeys lists known draft fields in form order, then anything else
// sorted so unknown-field errors are deterministic.
func orderedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	known := make(map[string]bool, len(core.DraftFields))
	for _, f := range core.DraftFields {
		known[string(f)] = true
		if _, ok := fields[string(f)]; ok {
			keys = append(keys, string(f))
		}
	}
	var rest []string
	for k := range fields {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
