package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/slipmap/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDatasetsFromFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-week.csv", "Task,Project,Duration\nreview,api,0:15:00\n")
	writeFile(t, dir, "a-week.csv", "Task,Project,Duration\nwrite,docs,1:00:00\n")
	writeFile(t, dir, "notes.txt", "ignored")
	single := writeFile(t, t.TempDir(), "sprint 4.csv", "Task,Duration\nplan,0:30:00\n")

	got, err := New(dir, single).Datasets(context.Background())
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}

	titles := make([]string, len(got))
	for i, ds := range got {
		titles[i] = ds.Title
		if ds.Err != nil {
			t.Errorf("%s: unexpected error %v", ds.Title, ds.Err)
		}
		if ds.Source != Name {
			t.Errorf("%s: Source = %q", ds.Title, ds.Source)
		}
	}
	want := []string{"a-week", "b-week", "sprint 4"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
	if got[0].Records[0].Task != "write" {
		t.Errorf("a-week first task = %q", got[0].Records[0].Task)
	}
}

func TestDatasetsBadFileFailsOnlyItself(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.csv", "Task,Duration\nwrite,0:10:00\n")
	writeFile(t, dir, "bad.csv", "Task,Project\nno,duration\n")

	got, err := New(dir).Datasets(context.Background())
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "bad" || got[0].Err == nil {
		t.Errorf("bad dataset = %+v, want an error", got[0])
	}
	if got[1].Err != nil || len(got[1].Records) != 1 {
		t.Errorf("good dataset = %+v", got[1])
	}
}

func TestDatasetsErrors(t *testing.T) {
	if _, err := New().Datasets(context.Background()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no paths: err = %v, want INVALID_INPUT", err)
	}
	missing := filepath.Join(t.TempDir(), "nope.csv")
	if _, err := New(missing).Datasets(context.Background()); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"/tmp/week 12.csv":   "week 12",
		"slips.tar.csv":      "slips.tar",
		"no-extension":       "no-extension",
		"dir/sub/Q1 log.CSV": "Q1 log",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}
