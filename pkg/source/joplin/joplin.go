// Package joplin reads time-slip tables from Joplin notes.
package joplin

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/slipmap/pkg/integrations/joplin"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
)

// Name is the source name recorded on datasets.
const Name = "joplin"

// Searcher finds notes by tag. *joplin.Client implements it.
type Searcher interface {
	SearchTag(ctx context.Context, tag string, refresh bool) ([]joplin.Note, error)
}

// Source turns every note carrying Tag into a dataset titled with the note
// title. The note body must be the CSV table itself.
type Source struct {
	client  Searcher
	tag     string
	refresh bool
}

// New returns a Source. An empty tag means joplin.DefaultTag.
func New(client Searcher, tag string, refresh bool) *Source {
	if tag == "" {
		tag = joplin.DefaultTag
	}
	return &Source{client: client, tag: tag, refresh: refresh}
}

func (s *Source) Name() string { return Name }

// Tag returns the tag notes are selected by.
func (s *Source) Tag() string { return s.tag }

// Datasets fetches the tagged notes. An API failure fails the call; a note
// whose body is not a slip table fails only its own dataset.
func (s *Source) Datasets(ctx context.Context) ([]source.Dataset, error) {
	notes, err := s.client.SearchTag(ctx, s.tag, s.refresh)
	if err != nil {
		return nil, fmt.Errorf("search notes tagged %q: %w", s.tag, err)
	}

	out := make([]source.Dataset, 0, len(notes))
	for _, n := range notes {
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = n.ID
		}
		ds := source.Dataset{Title: title, Source: Name}
		ds.Records, ds.Err = slips.ReadCSV(strings.NewReader(n.Body))
		if ds.Err != nil {
			ds.Err = fmt.Errorf("note %s: %w", n.ID, ds.Err)
		}
		out = append(out, ds)
	}
	return out, nil
}
