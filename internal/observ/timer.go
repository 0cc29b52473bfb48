// Package observ collects per-phase timings of a compile.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step of the pipeline.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer measures a sequence of phases. It is not safe for concurrent use.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), now: time.Now}
}

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End stops the phase. Unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// Phases returns the recorded phases in start order.
func (t *Timer) Phases() []Phase { return t.phases }

// PhaseReport is the serializable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as aligned text.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-16s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-16s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
