// Package validate checks a single record against the project rules and
// produces a RecordReport.
//
// Validation never modifies the record and never fails with a Go error:
// every problem becomes a diagnostic, and the worst severity seen decides
// the record's Verdict. Whether a mismatch is fatal or merely corrected
// later depends on the project's fix policies.
package validate
