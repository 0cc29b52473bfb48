package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{CPU: filepath.Join(dir, "cpu.pprof"), Mem: filepath.Join(dir, "mem.pprof")}
	s, err := Start(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{opts.CPU, opts.Mem} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
}

func TestDisabledSession(t *testing.T) {
	s, err := Start(Options{})
	if err != nil || s.Stop() != nil {
		t.Fatalf("an empty session should be a no-op")
	}
}
