// Package trace records what the compiler did and how long it took.
//
// Passes open spans with Begin and close them with End; the tracer decides
// by level which scopes are kept. A stream tracer writes events as they
// arrive, a ring tracer keeps the last few thousand for a dump after a
// crash. Every event carries the session id of the run that emitted it.
//
//	tr, _ := trace.New(trace.Config{Level: trace.LevelPhase, Mode: trace.ModeStream})
//	ctx := trace.WithTracer(context.Background(), tr)
//	span := trace.Begin(tr, trace.ScopePass, "sema", 0)
//	defer span.End("")
package trace
