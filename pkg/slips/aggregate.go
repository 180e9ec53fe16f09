package slips

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
)

// Entry is one aggregated category.
type Entry struct {
	Label   string `json:"label" bson:"label"`
	Seconds int64  `json:"seconds" bson:"seconds"`
}

// Values is an ordered mapping from label to total seconds.
//
// Every total is strictly positive. Iteration order is the order in which
// labels first appeared in the aggregated input. The zero Values is empty and
// ready to use. Values is immutable once built and safe for concurrent reads.
type Values struct {
	entries []Entry
	index   map[string]int
}

// NewValues builds Values from entries in order. Entries with a repeated
// label are summed into the first occurrence, and labels whose total is not
// positive are dropped.
func NewValues(entries ...Entry) Values {
	var b builder
	for _, e := range entries {
		b.add(e.Label, e.Seconds)
	}
	return b.build()
}

// Len returns the number of labels.
func (v Values) Len() int { return len(v.entries) }

// Get returns the total for label.
func (v Values) Get(label string) (int64, bool) {
	i, ok := v.index[label]
	if !ok {
		return 0, false
	}
	return v.entries[i].Seconds, true
}

// Labels returns the labels in first-appearance order.
func (v Values) Labels() []string {
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of the label/total pairs in order.
func (v Values) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// All iterates label/total pairs in order.
func (v Values) All() iter.Seq2[string, int64] {
	return func(yield func(string, int64) bool) {
		for _, e := range v.entries {
			if !yield(e.Label, e.Seconds) {
				return
			}
		}
	}
}

// Total returns the sum of all totals.
func (v Values) Total() int64 {
	var sum int64
	for _, e := range v.entries {
		sum += e.Seconds
	}
	return sum
}

// MarshalJSON encodes Values as an ordered array of entries.
func (v Values) MarshalJSON() ([]byte, error) {
	entries := v.entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes an array of entries, applying the same rules as
// NewValues.
func (v *Values) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*v = NewValues(entries...)
	return nil
}

// Aggregate groups records by key and sums their durations.
//
// Records whose key column is empty are ignored. Records whose duration fails
// to parse are skipped and reported in the returned errors (each a
// *ParseError with Row and Label set); the remaining records still count.
// A record that would push its group past math.MaxInt64 seconds is skipped
// and reported the same way. Groups whose sum is not positive are omitted. The result preserves the
// first-appearance order of labels.
func Aggregate(records []Record, key Key) (Values, []error) {
	var (
		b       builder
		skipped []error
	)
	for i, r := range records {
		label, ok := r.Field(key)
		if !ok {
			continue
		}
		secs, err := ParseDuration(r.Duration)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Row = i
				pe.Label = label
			}
			skipped = append(skipped, err)
			continue
		}
		if !b.add(label, secs) {
			skipped = append(skipped, &ParseError{
				Input:  r.Duration,
				Reason: fmt.Sprintf("group total exceeds %d seconds", int64(math.MaxInt64)),
				Row:    i,
				Label:  label,
			})
		}
	}
	return b.build(), skipped
}

// builder accumulates totals while remembering first-appearance order.
type builder struct {
	order  []string
	totals map[string]int64
}

// add reports false, leaving the total unchanged, when secs would overflow
// the label's running total.
func (b *builder) add(label string, secs int64) bool {
	if b.totals == nil {
		b.totals = make(map[string]int64)
	}
	total, seen := b.totals[label]
	if !seen {
		b.order = append(b.order, label)
	}
	sum := total + secs
	if (secs > 0 && sum < total) || (secs < 0 && sum > total) {
		return false
	}
	b.totals[label] = sum
	return true
}

func (b *builder) build() Values {
	v := Values{index: make(map[string]int, len(b.order))}
	for _, label := range b.order {
		total := b.totals[label]
		if total <= 0 {
			continue
		}
		v.index[label] = len(v.entries)
		v.entries = append(v.entries, Entry{Label: label, Seconds: total})
	}
	return v
}
