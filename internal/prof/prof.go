// Package prof writes pprof profiles of a kestrelc run.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Options names the output files; empty paths disable a profile.
type Options struct {
	CPU string
	Mem string
}

// Session is an active profiling run.
type Session struct {
	opts Options
	cpu  *os.File
}

// Start begins CPU profiling when requested.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPU == "" {
		return s, nil
	}
	f, err := os.Create(opts.CPU)
	if err != nil {
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close() //nolint:errcheck
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	s.cpu = f
	return s, nil
}

// Stop ends the CPU profile and writes the heap profile.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpu.Close())
		s.cpu = nil
	}
	if s.opts.Mem != "" {
		errs = append(errs, writeHeap(s.opts.Mem))
	}
	return errors.Join(errs...)
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
