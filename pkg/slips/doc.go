// Package slips aggregates time-slip records into per-category totals.
//
// A time slip is one logged interval: a task, the project it belongs to, and
// an elapsed duration formatted "H:MM:SS". This package parses those
// durations, groups records by a categorical key, and sums them:
//
//	records, err := slips.ReadCSV(r)
//	values, skipped := slips.Aggregate(records, slips.KeyTask)
//	for _, err := range skipped {
//	    logger.Warn("skipped record", "err", err)
//	}
//	for label, seconds := range values.All() {
//	    fmt.Println(label, slips.FormatDuration(seconds))
//	}
//
// # Grouping
//
// Labels are compared by exact string equality. No case folding or
// whitespace trimming is applied to labels; "Review" and "review " are two
// different groups.
//
// # Missing and malformed durations
//
// A missing duration (empty cell or an NA marker such as "nan") counts as
// zero. A malformed duration is reported as a *ParseError and the record is
// skipped; aggregation continues with the remaining records. Groups whose
// total is not positive are dropped from the result entirely.
//
// # Purity
//
// Aggregate and ParseDuration have no side effects and keep no state, so
// they are safe to call concurrently on different inputs.
package slips
