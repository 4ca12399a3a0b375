package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// ErrInvalidTable is returned when the lab table breaks one of its invariants.
var ErrInvalidTable = errors.New("invalid lab table")

// LabEntry is one row of the lab table: a named bundle served from Dir on Port.
type LabEntry struct {
	Name string `toml:"name"`
	Port int    `toml:"port"`
	// Dir is relative to Config.BaseDir.
	Dir string `toml:"dir"`
}

// Config represents the launcher configuration
type Config struct {
	// BaseDir is the directory lab directories are resolved against.
	BaseDir string `toml:"base_dir"`
	// Host is the interface every lab binds on. Empty means all interfaces.
	Host string `toml:"host"`
	// LogFile receives the Info/Warning/Error logs.
	LogFile string `toml:"log_file"`
	// Labs is the fixed lab table.
	Labs []LabEntry `toml:"labs"`
}

// DefaultLabs returns the built-in lab table.
func DefaultLabs() []LabEntry {
	return []LabEntry{
		{Name: "webpack5-react", Port: 9001, Dir: "webpack5-react/dist"},
		{Name: "vite-vue", Port: 9002, Dir: "vite-vue/dist"},
		{Name: "parcel-react", Port: 9003, Dir: "parcel-react/dist"},
		{Name: "esbuild-app", Port: 9004, Dir: "esbuild-app/dist/browser"},
		{Name: "rollup-library", Port: 9005, Dir: "rollup-library/dist/browser"},
		{Name: "swc-app", Port: 9006, Dir: "swc-app/dist/browser"},
		{Name: "angular-app", Port: 9007, Dir: "angular-app/dist/angular-app/browser"},
		{Name: "obfuscated", Port: 9008, Dir: "obfuscated/dist"},
		{Name: "nextjs-app", Port: 9009, Dir: "nextjs-app/.next/static"},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = "."
	}
	return &Config{
		BaseDir: baseDir,
		LogFile: filepath.Join(os.TempDir(), "labserve.log"),
		Labs:    DefaultLabs(),
	}
}

// LoadConfig reads a TOML file on top of the defaults. Keys missing from the
// file keep their default value; a [[labs]] array replaces the whole table.
// Lab directories resolve against the file's own directory unless base_dir
// says otherwise. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&fileCfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := lo.Map(strict.Errors, func(e toml.DecodeError, _ int) string { return strings.Join(e.Key(), ".") })
			return nil, fmt.Errorf("failed to parse config file: unknown keys %s: %w", strings.Join(keys, ", "), err)
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.BaseDir = filepath.Dir(path)
	if fileCfg.BaseDir != "" {
		cfg.BaseDir = fileCfg.BaseDir
		if !filepath.IsAbs(cfg.BaseDir) {
			cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
		}
	}
	if fileCfg.Host != "" {
		cfg.Host = fileCfg.Host
	}
	if fileCfg.LogFile != "" {
		cfg.LogFile = fileCfg.LogFile
	}
	if len(fileCfg.Labs) > 0 {
		cfg.Labs = fileCfg.Labs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the lab table. Port 0 asks the kernel for a free port and is
// exempt from the duplicate check.
func (c *Config) Validate() error {
	if len(c.Labs) == 0 {
		return fmt.Errorf("%w: no labs configured", ErrInvalidTable)
	}
	for _, lab := range c.Labs {
		if lab.Name == "" {
			return fmt.Errorf("%w: lab with port %d has no name", ErrInvalidTable, lab.Port)
		}
		if lab.Dir == "" {
			return fmt.Errorf("%w: lab %s has no directory", ErrInvalidTable, lab.Name)
		}
		if lab.Port < 0 || lab.Port > 65535 {
			return fmt.Errorf("%w: lab %s has port %d out of range", ErrInvalidTable, lab.Name, lab.Port)
		}
	}

	if dups := lo.FindDuplicates(lo.Map(c.Labs, func(l LabEntry, _ int) string { return l.Name })); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate lab names %v", ErrInvalidTable, dups)
	}
	ports := lo.FilterMap(c.Labs, func(l LabEntry, _ int) (int, bool) { return l.Port, l.Port != 0 })
	if dups := lo.FindDuplicates(ports); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate ports %v", ErrInvalidTable, dups)
	}
	return nil
}

// Resolve returns the absolute directory for a lab.
func (c *Config) Resolve(lab LabEntry) (string, error) {
	full := filepath.Join(c.BaseDir, lab.Dir)
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", full, err)
	}
	return abs, nil
}
