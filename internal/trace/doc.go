// Package trace records what a run is doing while it does it.
//
// Spans mark the boundaries of the run, of its passes (scan, plan,
// process, master), of each input file and of each record. File and
// record spans carry the same diag.Location the report uses; record
// spans also carry notes for corrections made to the record, such as a
// forced submission date. A stuck run shows up as heartbeats with
// events=0.
//
// # Usage
//
//	wgsmaster process --trace=- --trace-level=detail
//
// # Tracers
//
//   - Nop: disabled tracing, no overhead
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: ring dumps only
//   - LevelPhase: run and pass spans
//   - LevelDetail: file spans
//   - LevelDebug: record spans and notes
//
// Tracers travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "scan", trace.ParentID(ctx))
//	defer span.End("")
//	fspan := trace.BeginFile(tracer, "scan", path, span.ID())
package trace
