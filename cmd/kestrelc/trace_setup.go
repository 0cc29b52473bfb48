package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/trace"
)

var activeTracer trace.Tracer = trace.Nop

// setupTracing builds the tracer from kestrel.toml [trace] and the
// --trace* flags and stores it in the command context.
func setupTracing(cmd *cobra.Command, s *settings) error {
	tc := s.manifest.Trace
	flags := cmd.Root().PersistentFlags()
	for name, dst := range map[string]*string{
		"trace":        &tc.Output,
		"trace-level":  &tc.Level,
		"trace-mode":   &tc.Mode,
		"trace-format": &tc.Format,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	// an output without a level means the user wants phases
	if flags.Changed("trace") && !flags.Changed("trace-level") && (tc.Level == "" || tc.Level == "off") {
		tc.Level = "phase"
	}
	if tc.Level == "" {
		tc.Level = "off"
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	mode := trace.ModeStream
	if tc.Mode != "" {
		if mode, err = trace.ParseMode(tc.Mode); err != nil {
			return err
		}
	}
	format, err := trace.ParseFormat(tc.Format)
	if err != nil {
		return err
	}
	tr, err := trace.New(trace.Config{Level: level, Mode: mode, Format: format, OutputPath: tc.Output})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tr
	cmd.SetContext(trace.WithTracer(cmd.Context(), tr))
	return nil
}

func closeTracing() {
	if err := activeTracer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
	}
}

// dumpTraceOnPanic writes the ring buffer to stderr before re-panicking.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ring, ok := trace.Ring(activeTracer); ok {
		fmt.Fprintln(os.Stderr, "--- trace (most recent last) ---")
		_ = ring.Dump(os.Stderr, trace.FormatText) //nolint:errcheck
	}
	panic(r)
}
