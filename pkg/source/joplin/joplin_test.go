package joplin

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/slipmap/pkg/integrations/joplin"
)

type fakeSearcher struct {
	notes   []joplin.Note
	err     error
	gotTag  string
	refresh bool
}

func (f *fakeSearcher) SearchTag(_ context.Context, tag string, refresh bool) ([]joplin.Note, error) {
	f.gotTag, f.refresh = tag, refresh
	return f.notes, f.err
}

func TestDatasets(t *testing.T) {
	fake := &fakeSearcher{notes: []joplin.Note{
		{ID: "a1", Title: "week 1", Body: "Project,Task,Start Date,Start Time,End Date,End Time,Duration\n" +
			"docs,write,2024-01-01,09:00,2024-01-01,09:30,0:30:00\n"},
		{ID: "b2", Title: "", Body: "Task,Duration\nplan,0:05:00\n"},
		{ID: "c3", Title: "broken", Body: "just some prose"},
	}}

	got, err := New(fake, "", true).Datasets(context.Background())
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if fake.gotTag != joplin.DefaultTag || !fake.refresh {
		t.Errorf("search tag = %q refresh = %v", fake.gotTag, fake.refresh)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if got[0].Title != "week 1" || got[0].Err != nil || got[0].Records[0].Project != "docs" {
		t.Errorf("week 1 = %+v", got[0])
	}
	if got[0].Records[0].Extra["start date"] != "2024-01-01" {
		t.Errorf("extra columns not kept: %v", got[0].Records[0].Extra)
	}
	if got[1].Title != "b2" {
		t.Errorf("untitled note title = %q, want its id", got[1].Title)
	}
	if got[2].Err == nil {
		t.Error("prose body should fail its dataset")
	}
}

func TestDatasetsSearchError(t *testing.T) {
	want := errors.New("connection refused")
	_, err := New(&fakeSearcher{err: want}, "billable", false).Datasets(context.Background())
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
