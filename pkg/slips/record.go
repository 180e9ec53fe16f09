package slips

import (
	"strings"

	"github.com/matzehuels/slipmap/pkg/errors"
)

// Key is the categorical dimension records are grouped by.
type Key string

// Built-in aggregation keys. Any other column name read from a slip table is
// also a valid key and is looked up in Record.Extra.
const (
	KeyTask    Key = "task"
	KeyProject Key = "project"
)

// DefaultKeys are the keys aggregated when none are requested explicitly.
var DefaultKeys = []Key{KeyTask, KeyProject}

// ParseKey normalizes a user-supplied key name. Key names (not labels) are
// case-insensitive, so "Task" and "task" select the same column.
func ParseKey(s string) (Key, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "" {
		return "", errors.New(errors.ErrCodeInvalidKey, "aggregation key cannot be empty")
	}
	if k == "duration" {
		return "", errors.New(errors.ErrCodeInvalidKey, "cannot aggregate by the duration column")
	}
	return Key(k), nil
}

// Record is a single time-slip entry.
//
// Duration is kept as the raw "H:MM:SS" text; an empty Duration means the
// value is absent. Columns other than task, project and duration are kept in
// Extra under their lower-cased header name.
type Record struct {
	Task     string            `json:"task"`
	Project  string            `json:"project"`
	Duration string            `json:"duration,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Field returns the value of the column selected by key.
// The boolean is false when the record has no value for that column.
func (r Record) Field(key Key) (string, bool) {
	var v string
	switch key {
	case KeyTask:
		v = r.Task
	case KeyProject:
		v = r.Project
	default:
		v = r.Extra[string(key)]
	}
	return v, v != ""
}
