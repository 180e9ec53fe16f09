package slips

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestAggregateEndToEnd(t *testing.T) {
	records := []Record{
		{Task: "A", Duration: "0:30:00"},
		{Task: "A", Duration: "0:30:00"},
		{Task: "B", Duration: "0:00:00"},
	}

	got, skipped := Aggregate(records, KeyTask)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped records: %v", skipped)
	}

	want := []Entry{{Label: "A", Seconds: 3600}}
	if !reflect.DeepEqual(got.Entries(), want) {
		t.Errorf("Aggregate() = %v, want %v", got.Entries(), want)
	}
	if _, ok := got.Get("B"); ok {
		t.Error("zero total label B should be excluded")
	}
}

func TestAggregateByProject(t *testing.T) {
	records := []Record{
		{Task: "write", Project: "docs", Duration: "1:00:00"},
		{Task: "review", Project: "api", Duration: "0:15:00"},
		{Task: "write", Project: "api", Duration: "0:45:00"},
		{Task: "edit", Project: "docs", Duration: ""},
	}

	got, _ := Aggregate(records, KeyProject)
	want := []Entry{{Label: "docs", Seconds: 3600}, {Label: "api", Seconds: 3600}}
	if !reflect.DeepEqual(got.Entries(), want) {
		t.Errorf("Aggregate() = %v, want %v", got.Entries(), want)
	}
	if got.Total() != 7200 {
		t.Errorf("Total() = %d, want 7200", got.Total())
	}
}

func TestAggregateOrderIsFirstAppearance(t *testing.T) {
	records := []Record{
		{Task: "c", Duration: "0:00:01"},
		{Task: "a", Duration: "0:00:01"},
		{Task: "b", Duration: "0:00:01"},
		{Task: "a", Duration: "0:00:01"},
	}

	got, _ := Aggregate(records, KeyTask)
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got.Labels(), want) {
		t.Errorf("Labels() = %v, want %v", got.Labels(), want)
	}
}

func TestAggregateExactGrouping(t *testing.T) {
	records := []Record{
		{Task: "Review", Duration: "0:10:00"},
		{Task: "review", Duration: "0:10:00"},
		{Task: "Review ", Duration: "0:10:00"},
	}

	got, _ := Aggregate(records, KeyTask)
	if got.Len() != 3 {
		t.Errorf("Len() = %d, want 3 distinct labels", got.Len())
	}
}

func TestAggregateSkipsMalformed(t *testing.T) {
	records := []Record{
		{Task: "A", Duration: "0:10:00"},
		{Task: "A", Duration: "1:2"},
		{Task: "B", Duration: "oops"},
		{Task: "A", Duration: "0:05:00"},
	}

	got, skipped := Aggregate(records, KeyTask)
	if len(skipped) != 2 {
		t.Fatalf("len(skipped) = %d, want 2", len(skipped))
	}

	var pe *ParseError
	if !errors.As(skipped[0], &pe) {
		t.Fatalf("skipped[0] type = %T, want *ParseError", skipped[0])
	}
	if pe.Row != 1 || pe.Label != "A" {
		t.Errorf("skipped[0] = row %d label %q, want row 1 label A", pe.Row, pe.Label)
	}

	if v, _ := got.Get("A"); v != 900 {
		t.Errorf("A = %d, want 900", v)
	}
	if _, ok := got.Get("B"); ok {
		t.Error("B has no valid durations and should be absent")
	}
}

func TestAggregateReportsTotalOverflow(t *testing.T) {
	big := FormatClock(MaxHours * 3600)
	records := []Record{
		{Task: "A", Duration: big},
		{Task: "B", Duration: "0:10:00"},
		{Task: "A", Duration: big},
		{Task: "A", Duration: "0:00:01"},
	}

	got, skipped := Aggregate(records, KeyTask)

	if v, ok := got.Get("A"); !ok || v != MaxHours*3600+1 {
		t.Errorf("A = %d (present %v), want %d", v, ok, MaxHours*3600+1)
	}
	if v, _ := got.Get("B"); v != 600 {
		t.Errorf("B = %d, want 600", v)
	}
	if len(skipped) != 1 {
		t.Fatalf("len(skipped) = %d, want 1", len(skipped))
	}
	var pe *ParseError
	if !errors.As(skipped[0], &pe) || pe.Row != 2 || pe.Label != "A" {
		t.Errorf("skipped[0] = %v, want the third record of A", skipped[0])
	}
}

func TestAggregateIgnoresMissingKey(t *testing.T) {
	records := []Record{
		{Task: "", Duration: "1:00:00"},
		{Task: "A", Duration: "1:00:00"},
	}

	got, _ := Aggregate(records, KeyTask)
	if got.Len() != 1 {
		t.Errorf("Len() = %d, want 1", got.Len())
	}
}

func TestAggregateExtraKey(t *testing.T) {
	records := []Record{
		{Task: "a", Duration: "0:01:00", Extra: map[string]string{"client": "acme"}},
		{Task: "b", Duration: "0:02:00", Extra: map[string]string{"client": "acme"}},
		{Task: "c", Duration: "0:03:00"},
	}

	got, _ := Aggregate(records, Key("client"))
	if v, _ := got.Get("acme"); v != 180 || got.Len() != 1 {
		t.Errorf("Aggregate(client) = %v, want acme=180 only", got.Entries())
	}
}

func TestAggregateNeverKeepsNonPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	labels := []string{"a", "b", "c", "d", "e"}

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(20)
		records := make([]Record, n)
		for i := range records {
			dur := ""
			switch rng.Intn(4) {
			case 0:
				dur = "0:00:00"
			case 1:
				dur = FormatClock(int64(rng.Intn(7200)))
			case 2:
				dur = "bad"
			}
			records[i] = Record{Task: labels[rng.Intn(len(labels))], Duration: dur}
		}

		got, _ := Aggregate(records, KeyTask)
		for label, secs := range got.All() {
			if secs <= 0 {
				t.Fatalf("trial %d: label %q has non-positive total %d", trial, label, secs)
			}
		}
	}
}

func TestNewValues(t *testing.T) {
	v := NewValues(
		Entry{Label: "x", Seconds: 10},
		Entry{Label: "y", Seconds: 0},
		Entry{Label: "x", Seconds: 5},
		Entry{Label: "z", Seconds: -3},
	)

	want := []Entry{{Label: "x", Seconds: 15}}
	if !reflect.DeepEqual(v.Entries(), want) {
		t.Errorf("NewValues() = %v, want %v", v.Entries(), want)
	}

	var zero Values
	if zero.Len() != 0 {
		t.Error("zero Values should be empty")
	}
	if _, ok := zero.Get("x"); ok {
		t.Error("zero Values Get should miss")
	}
}

func TestValuesJSON(t *testing.T) {
	v := NewValues(Entry{Label: "b", Seconds: 2}, Entry{Label: "a", Seconds: 1})

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `[{"label":"b","seconds":2},{"label":"a","seconds":1}]` {
		t.Errorf("Marshal = %s", data)
	}

	var back Values
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Labels(), []string{"b", "a"}) {
		t.Errorf("Unmarshal labels = %v", back.Labels())
	}

	empty, _ := json.Marshal(Values{})
	if string(empty) != "[]" {
		t.Errorf("empty Marshal = %s, want []", empty)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"task", KeyTask, false},
		{"Project", KeyProject, false},
		{" Client ", Key("client"), false},
		{"", "", true},
		{"Duration", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
