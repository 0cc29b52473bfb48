package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Mode selects where events go.
type Mode uint8

const (
	// ModeStream writes every event as it arrives.
	ModeStream Mode = iota + 1
	// ModeRing keeps the last events in memory for a crash dump.
	ModeRing
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode accepts stream, ring or both.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeRing, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// Config describes a tracer.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format
	// Output wins over OutputPath. An empty path or "-" means stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int
	// Session is stamped on every event; New generates one when empty.
	Session string
}

// Nop discards everything.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// New builds a tracer for cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}
	if cfg.Session == "" {
		cfg.Session = uuid.NewString()
	}
	format := cfg.Format
	if format == 0 {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") {
			format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format, cfg.Session), nil
	case ModeRing, 0:
		return NewRingTracer(cfg.RingSize, cfg.Level, cfg.Session), nil
	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return &multiTracer{
			level: cfg.Level,
			list: []Tracer{
				NewStreamTracer(w, cfg.Level, format, cfg.Session),
				NewRingTracer(cfg.RingSize, cfg.Level, cfg.Session),
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}

// Ring returns the ring buffer behind t, if any.
func Ring(t Tracer) (*RingTracer, bool) {
	switch t := t.(type) {
	case *RingTracer:
		return t, true
	case *multiTracer:
		for _, inner := range t.list {
			if r, ok := inner.(*RingTracer); ok {
				return r, true
			}
		}
	}
	return nil, false
}

type multiTracer struct {
	level Level
	list  []Tracer
}

func (m *multiTracer) Emit(ev *Event) {
	for _, t := range m.list {
		t.Emit(ev)
	}
}

func (m *multiTracer) Flush() error {
	var errs []error
	for _, t := range m.list {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (m *multiTracer) Close() error {
	var errs []error
	for _, t := range m.list {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m *multiTracer) Level() Level  { return m.level }
func (m *multiTracer) Enabled() bool { return m.level > LevelOff }
