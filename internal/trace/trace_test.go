package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText, "s1")
	pass := Begin(tr, ScopePass, "sema", 0)
	if fn := Begin(tr, ScopeNode, "sema.fn:main", pass.ID()); fn != nil {
		t.Fatalf("node spans should be filtered at phase level")
	}
	pass.WithExtra("funcs", "3").End("")
	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected begin and end, got %q", out)
	}
	if !strings.Contains(out, "<- sema {dur=") || !strings.Contains(out, "funcs=3") {
		t.Fatalf("end line missing extras: %q", out)
	}
}

func TestNilSpanIsSafe(t *testing.T) {
	var s *Span
	s.WithExtra("k", "v").End("done")
	if s.ID() != 0 {
		t.Fatalf("nil span id should be 0")
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(2, LevelDebug, "s2")
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, 0, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap[0].Session != "s2" {
		t.Fatalf("session not stamped")
	}
}

func TestNDJSONCarriesSession(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopeUnit, "load", CurrentSpan(ctx).SpanID)
	span.End("")

	var ev jsonEvent
	line, _, _ := strings.Cut(buf.String(), "\n")
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("bad json %q: %v", line, err)
	}
	if ev.Session == "" || ev.Kind != "begin" || ev.Scope != "unit" {
		t.Fatalf("unexpected event %+v", ev)
	}
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring should hold both events")
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("got %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected an error")
	}
}
