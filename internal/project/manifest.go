// Package project locates and parses the strata.toml manifest: the
// project name, the execution target the analyses size scratch memory
// for, and analysis limits.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"strata/internal/layout"
)

// Manifest is a located and validated strata.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package       PackageConfig  `toml:"package"`
	TargetSection TargetConfig   `toml:"target"`
	Analysis      AnalysisConfig `toml:"analysis"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type TargetConfig struct {
	Name              string `toml:"name"`
	WarpSize          int    `toml:"warp_size"`
	NumWarps          int    `toml:"num_warps"`
	SharedMemoryBytes int    `toml:"shared_memory_bytes"`
}

type AnalysisConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Target converts the manifest's target section to the layout model,
// filling defaults for anything left unset.
func (c Config) Target() layout.Target {
	t := layout.DefaultTarget()
	if c.TargetSection.Name != "" {
		t.Name = c.TargetSection.Name
	}
	if c.TargetSection.WarpSize > 0 {
		t.WarpSize = c.TargetSection.WarpSize
	}
	if c.TargetSection.NumWarps > 0 {
		t.NumWarps = c.TargetSection.NumWarps
	}
	if c.TargetSection.SharedMemoryBytes > 0 {
		t.SharedMemoryBytes = c.TargetSection.SharedMemoryBytes
	}
	return t
}

// MaxDiagnostics returns the configured diagnostic cap, defaulting to 100.
func (c Config) MaxDiagnostics() int {
	if c.Analysis.MaxDiagnostics > 0 {
		return c.Analysis.MaxDiagnostics
	}
	return 100
}

// Find walks from startDir toward the filesystem root looking for
// strata.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "strata.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and parses the manifest for startDir. The second result
// reports whether a manifest exists at all.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("target", "warp_size") && cfg.TargetSection.WarpSize <= 0 {
		return Config{}, fmt.Errorf("%s: [target].warp_size must be positive", path)
	}
	if meta.IsDefined("target", "num_warps") && cfg.TargetSection.NumWarps <= 0 {
		return Config{}, fmt.Errorf("%s: [target].num_warps must be positive", path)
	}
	return cfg, nil
}
