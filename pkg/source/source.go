// Package source defines where time-slip datasets come from.
//
// A [Source] yields named [Dataset]s: one per CSV file for [local], one per
// tagged note for [joplin]. A dataset whose table cannot be read carries the
// failure in Err and does not stop the others.
//
// [local]: github.com/matzehuels/slipmap/pkg/source/local
// [joplin]: github.com/matzehuels/slipmap/pkg/source/joplin
package source

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/slipmap/pkg/slips"
)

// Source lists datasets.
type Source interface {
	// Name identifies the source kind in logs ("local", "joplin").
	Name() string
	Datasets(ctx context.Context) ([]Dataset, error)
}

// Dataset is one table of time slips.
type Dataset struct {
	Title   string         `json:"title"`
	Source  string         `json:"source"`
	Records []slips.Record `json:"records"`
	// Err is set when the table could not be read; Records is then nil.
	Err error `json:"-"`
}

// Fingerprint returns a stable encoding of the records for content
// hashing.
func (d Dataset) Fingerprint() []byte {
	data, _ := json.Marshal(d.Records)
	return data
}
