package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/pattern"
	"github.com/bcomnes/scd/pkg/vcs"
)

// FileNames are the configuration names looked for in each directory during
// discovery, in order.
var FileNames = []string{
	".scd.json", "scd.json",
	".scd.yaml", "scd.yaml",
	".scd.yml", "scd.yml",
	".scd.toml", "scd.toml",
}

// Version is the version section of a configuration.
type Version struct {
	Scheme  string
	Number  string
	TagGlob string
}

// File is one target file and its rule entries in declared order.
type File struct {
	Name  string
	Rules []pattern.Entry
}

// Config is a validated configuration.
type Config struct {
	// Path is the absolute path of the configuration file.
	Path string
	// ProjectDir is the directory containing the configuration file; file
	// names are relative to it.
	ProjectDir string
	Format     Format

	Version             Version
	Files               []File
	SearchPatterns      map[string]string
	ReplacementPatterns map[string]string
	Defaults            pattern.Defaults
	Groups              map[string]string
	ExtraContext        map[string]any
}

// FileNamesSorted returns the names of all configured files, sorted.
func (c *Config) FileNamesSorted() []string {
	names := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// Discover looks for a configuration file in dir and each of its parents.
func Discover(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", scderrors.Wrap(scderrors.ErrCodeConfig, "cannot resolve working directory", err)
	}

	for current := abs; ; {
		for _, name := range FileNames {
			candidate := filepath.Join(current, name)
			info, err := os.Stat(candidate)
			if err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", scderrors.NewWithContext(scderrors.ErrCodeConfig,
		"no configuration file found in "+abs+" or its parents",
		map[string]any{"dir": abs, "names": FileNames})
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, scderrors.Wrap(scderrors.ErrCodeConfig, "cannot resolve config path", err)
	}

	data, err := os.ReadFile(filepath.Clean(abs))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, scderrors.WrapWithContext(scderrors.ErrCodeConfig, "config file does not exist", err,
				map[string]any{"path": abs})
		}
		return nil, scderrors.WrapWithContext(scderrors.ErrCodeConfig, "cannot read config file", err,
			map[string]any{"path": abs})
	}
	return Parse(data, abs, FormatFromPath(abs))
}

// Parse decodes and validates data. path is recorded in the result and
// determines ProjectDir.
func Parse(data []byte, path string, format Format) (*Config, error) {
	doc, detected, err := decode(data, format)
	if err != nil {
		return nil, scderrors.WrapWithContext(scderrors.ErrCodeConfig,
			fmt.Sprintf("cannot parse config %s", path), err,
			map[string]any{"path": path, "format": string(format)})
	}

	cfg, err := build(doc)
	if err != nil {
		return nil, scderrors.WrapWithContext(scderrors.ErrCodeConfig,
			fmt.Sprintf("invalid config %s", path), err,
			map[string]any{"path": path})
	}
	cfg.Path = path
	cfg.ProjectDir = filepath.Dir(path)
	cfg.Format = detected
	return cfg, nil
}

// TagGlobOrDefault returns the configured tag glob or vcs.DefaultTagGlob.
func (v Version) TagGlobOrDefault() string {
	if v.TagGlob == "" {
		return vcs.DefaultTagGlob
	}
	return v.TagGlob
}
