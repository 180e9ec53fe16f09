// Package local reads time-slip tables from CSV files on disk.
package local

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
)

// Name is the source name recorded on datasets.
const Name = "local"

// Source reads CSV files. A directory contributes every *.csv file directly
// inside it, in name order. Each file becomes one dataset titled with its
// file name minus the extension.
type Source struct {
	paths []string
}

// New returns a Source over the given files and directories.
func New(paths ...string) *Source {
	return &Source{paths: paths}
}

func (s *Source) Name() string { return Name }

// Datasets reads every file. A missing path fails the whole call; a file
// that is not a valid slip table fails only its own dataset.
func (s *Source) Datasets(ctx context.Context) ([]source.Dataset, error) {
	if len(s.paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input files given")
	}

	files, err := s.files()
	if err != nil {
		return nil, err
	}

	out := make([]source.Dataset, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds := source.Dataset{Title: Title(f), Source: Name}
		ds.Records, ds.Err = ReadFile(f)
		out = append(out, ds)
	}
	return out, nil
}

func (s *Source) files() ([]string, error) {
	var files []string
	for _, p := range s.paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "input not found: %s", p)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.csv"))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "list %s", p)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// ReadFile parses one CSV file into records.
func ReadFile(path string) ([]slips.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "input not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return slips.ReadCSV(f)
}

// Title derives a dataset title from a file path.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
