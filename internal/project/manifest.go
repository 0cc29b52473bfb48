// Package project reads kestrel.toml, the per-project build settings.
package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultCore           = "core"
	DefaultEntry          = "main"
	DefaultMaxDiagnostics = 100
	DefaultMaxInstances   = 4096
)

// Manifest is a decoded kestrel.toml. Root is empty when no manifest was
// found and the defaults are in effect.
type Manifest struct {
	Path  string      `toml:"-"`
	Root  string      `toml:"-"`
	Build BuildConfig `toml:"build"`
	Trace TraceConfig `toml:"trace"`
}

type BuildConfig struct {
	// Core is the unit every other unit imports implicitly. An explicit
	// empty string turns the implicit import off.
	Core           string   `toml:"core"`
	Entry          string   `toml:"entry"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	MaxInstances   int      `toml:"max_instances"`
	Inputs         []string `toml:"inputs"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Default returns the settings used without a manifest.
func Default() *Manifest {
	return &Manifest{
		Build: BuildConfig{
			Core:           DefaultCore,
			Entry:          DefaultEntry,
			MaxDiagnostics: DefaultMaxDiagnostics,
			MaxInstances:   DefaultMaxInstances,
		},
		Trace: TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Load finds kestrel.toml above startDir. Without one it returns Default
// and ok == false.
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	m, err = LoadFile(path)
	return m, true, err
}

// LoadFile decodes the manifest at path on top of the defaults.
func LoadFile(path string) (*Manifest, error) {
	m := Default()
	meta, err := toml.DecodeFile(path, m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%s: unknown keys %s", path, strings.Join(names, ", "))
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	if !meta.IsDefined("build", "entry") || strings.TrimSpace(m.Build.Entry) == "" {
		m.Build.Entry = DefaultEntry
	}
	if meta.IsDefined("build", "max_diagnostics") && m.Build.MaxDiagnostics <= 0 {
		return nil, fmt.Errorf("%s: [build].max_diagnostics must be positive", path)
	}
	if meta.IsDefined("build", "max_instances") && m.Build.MaxInstances <= 0 {
		return nil, fmt.Errorf("%s: [build].max_instances must be positive", path)
	}
	return m, nil
}

// InputFiles expands [build].inputs relative to the project root.
func (m *Manifest) InputFiles() ([]string, error) {
	var out []string
	for _, pattern := range m.Build.Inputs {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(m.Root, filepath.FromSlash(pattern))
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: bad input pattern: %w", m.Path, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}
