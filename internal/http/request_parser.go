// Package http provides the web UI and export endpoints of the journal.
//
// This file holds the form parsing shared by the draft and session handlers.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"trenerka/internal/core"
)

// maxFormBytes bounds POST bodies; the form is a handful of short fields.
const maxFormBytes = 64 << 10

var (
	ErrNoDraftField    = errors.New("no draft field in request")
	ErrAmbiguousUpdate = errors.New("draft update must carry exactly one field")
)

// DraftUpdate is one field assignment posted by the form.
type DraftUpdate struct {
	Field string
	Value string
}

// parseForm limits the body size and parses it.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// ParseDraftUpdate accepts explicit field/value pairs (field=name&value=Иван)
// or an input posting itself. For the latter htmx sends the whole enclosing
// form, so triggerName (the HX-Trigger-Name header) picks the edited field;
// without it the form must hold exactly one key. The field name is not
// validated here.
func ParseDraftUpdate(form url.Values, triggerName string) (DraftUpdate, error) {
	if form.Has("field") {
		return DraftUpdate{
			Field: strings.TrimSpace(form.Get("field")),
			Value: sanitizeInput(form.Get("value")),
		}, nil
	}

	if triggerName != "" {
		if !form.Has(triggerName) {
			return DraftUpdate{}, ErrNoDraftField
		}
		return DraftUpdate{Field: triggerName, Value: sanitizeInput(form.Get(triggerName))}, nil
	}

	switch len(form) {
	case 0:
		return DraftUpdate{}, ErrNoDraftField
	case 1:
		for k := range form {
			return DraftUpdate{Field: k, Value: sanitizeInput(form.Get(k))}, nil
		}
	}
	return DraftUpdate{}, ErrAmbiguousUpdate
}

// ParseSessionForm returns the posted draft fields in form order. Keys that
// are not draft fields are ignored.
func ParseSessionForm(form url.Values) []DraftUpdate {
	updates := make([]DraftUpdate, 0, len(core.DraftFields))
	for _, f := range core.DraftFields {
		key := string(f)
		if !form.Has(key) {
			continue
		}
		updates = append(updates, DraftUpdate{Field: key, Value: sanitizeInput(form.Get(key))})
	}
	return updates
}

// ParseFilter returns the name filter from the query. Only control
// characters are removed so the substring match sees what the user typed.
func ParseFilter(query url.Values) string {
	return stripControl(query.Get("name"))
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return. Whitespace is kept: draft values are stored as typed.
func sanitizeInput(s string) string {
	return stripControl(s)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}
