// Package diag defines the diagnostic model shared by every stage of a
// submission run.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the normalizer, the per-record validator, the aggregator and the output
//     stage.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting beyond the single-line short form,
// IO, or CLI integration. Rendering lives in internal/diagfmt; deciding what a
// finding means for a record lives with the caller (see PolicyFor).
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Info, Warning, Error, Critical, Fatal (severity.go).
//   - Code – category x subcode (codes.go). Each Category owns the subcode
//     range category*100 .. category*100+99. IDs render as
//     ERR_<CATEGORY>_<Name>; a code without a registered name renders its
//     numeric subcode instead, so producers may emit codes this package does
//     not know yet.
//   - Message – human oriented text; keep it short and actionable.
//   - Where – file and record the finding belongs to.
//   - Notes – optional secondary locations (e.g. "first seen here").
//
// Diagnostics are never mutated after emission.
//
// # Emitting diagnostics
//
// Stages receive a diag.Reporter. Record-level stages are usually handed a
// LocatedReporter that stamps file and record, wrapped in a Tally so the
// caller can read back the worst severity and derive the record verdict.
// BagReporter aggregates everything into the run Bag, which supports sorting,
// deduplication and filtering.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json/short formats.
//   - internal/driver: collects the run bag and decides the exit status.
package diag
