package slips

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/slipmap/pkg/errors"
)

// naMarkers are cell values treated as an absent duration, compared
// case-insensitively after trimming.
var naMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// ParseError reports a duration string that is not "H:MM:SS".
//
// Row and Label are filled in by Aggregate so that skipped records can be
// traced back to the input; ParseDuration leaves Row at -1.
type ParseError struct {
	Input  string // Raw duration text
	Reason string // What was wrong with it
	Row    int    // Zero-based record index, or -1 when unknown
	Label  string // Group label of the offending record, if known
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("record %d (%q): invalid duration %q: %s", e.Row, e.Label, e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid duration %q: %s", e.Input, e.Reason)
}

// Unwrap exposes the PARSE_ERROR code to errors.Is and errors.GetCode.
func (e *ParseError) Unwrap() error {
	return errors.New(errors.ErrCodeParse, "%s", e.Reason)
}

// IsAbsent reports whether s denotes a missing duration.
func IsAbsent(s string) bool {
	return naMarkers[strings.ToLower(strings.TrimSpace(s))]
}

// MaxHours is the largest hour count whose "H:59:59" still fits in int64
// seconds.
const MaxHours = (math.MaxInt64 - 3599) / 3600

// ParseDuration converts "H:MM:SS" to whole seconds.
//
// Hours are limited only by MaxHours; minutes and seconds must be in
// [0, 59]. An absent value (see IsAbsent) yields 0 and no error. Anything
// else that does not have exactly three unsigned integer components, or
// that exceeds MaxHours, fails with *ParseError.
func ParseDuration(s string) (int64, error) {
	if IsAbsent(s) {
		return 0, nil
	}
	text := strings.TrimSpace(s)

	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("want 3 components, got %d", len(parts)), Row: -1}
	}

	var n [3]int64
	for i, p := range parts {
		v, err := parseComponent(p)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: err.Error(), Row: -1}
		}
		n[i] = v
	}
	if n[1] > 59 {
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("minutes out of range: %d", n[1]), Row: -1}
	}
	if n[2] > 59 {
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("seconds out of range: %d", n[2]), Row: -1}
	}
	if n[0] > MaxHours {
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("hours out of range: %d (max %d)", n[0], MaxHours), Row: -1}
	}
	return n[0]*3600 + n[1]*60 + n[2], nil
}

// parseComponent accepts only ASCII digits, so signs ("-1", "+1") and
// embedded spaces are rejected.
func parseComponent(p string) (int64, error) {
	if p == "" {
		return 0, fmt.Errorf("empty component")
	}
	if strings.HasPrefix(p, "-") {
		return 0, fmt.Errorf("negative component %q", p)
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-integer component %q", p)
		}
	}
	return strconv.ParseInt(p, 10, 64)
}

// FormatDuration renders seconds as "XhYm", the compact form used in
// treemap labels. Seconds are truncated.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
}

// FormatClock renders seconds as "H:MM:SS", the inverse of ParseDuration.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
