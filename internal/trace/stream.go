package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each event to w as it arrives. Write errors are
// dropped; tracing never fails a compile.
type StreamTracer struct {
	mu      sync.Mutex
	w       io.Writer
	level   Level
	format  Format
	session string
}

func NewStreamTracer(w io.Writer, level Level, format Format, session string) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format, session: session}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	out := *ev
	out.Seq = nextSeq()
	out.Session = t.session
	data := FormatEvent(&out, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.w.Write(data) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes w unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
