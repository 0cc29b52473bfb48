package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	load := tm.Begin("load")
	clock = clock.Add(2 * time.Millisecond)
	tm.End(load, "3 files")
	sema := tm.Begin("sema")
	clock = clock.Add(500 * time.Microsecond)
	tm.End(sema, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].DurationMS != 2 || r.TotalMS != 2.5 {
		t.Fatalf("unexpected report %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "load") || !strings.Contains(s, "3 files") || !strings.Contains(s, "2.50 ms") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}
