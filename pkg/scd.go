package scd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bcomnes/scd/pkg/config"
	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/pattern"
	"github.com/bcomnes/scd/pkg/scheme"
	"github.com/bcomnes/scd/pkg/substitute"
	"github.com/bcomnes/scd/pkg/vcs"
)

// Options controls a run.
type Options struct {
	// ConfigPath is the configuration file. When empty it is discovered
	// starting at WorkDir.
	ConfigPath string
	// WorkDir defaults to the process working directory. Relative Files are
	// resolved against it.
	WorkDir string
	// Files restricts the run to these paths. Every path must be a
	// configured file.
	Files []string
	// Groups restricts the run to files matching any of these configured
	// groups.
	Groups []string
	// ExtraContext is merged over the configuration's extra_context.
	ExtraContext map[string]any
	// VCS answers git queries; defaults to vcs.NewGit().
	VCS vcs.Querier
}

// RunMeta holds metadata about a run.
type RunMeta struct {
	ConfigPath   string               `json:"config" yaml:"config"`
	Scheme       string               `json:"scheme" yaml:"scheme"`
	BaseVersion  string               `json:"base_version" yaml:"base_version"`
	FullVersion  string               `json:"full_version" yaml:"full_version"`
	Context      *scheme.Context      `json:"context" yaml:"context"`
	UpdatedFiles []string             `json:"updated_files" yaml:"updated_files"` // Names of files written, or that would be written in a dry run.
	Results      []*substitute.Result `json:"results" yaml:"results"`
	DryRun       bool                 `json:"dry_run" yaml:"dry_run"`
}

// Plan is everything a run resolves before touching target files.
type Plan struct {
	Config  *config.Config
	Version scheme.Version
	// Context is the version context with extra context merged in.
	Context *scheme.Context
	// Files are the selected targets, sorted by name, with resolved rules.
	Files []*substitute.File
}

// Prepare loads the configuration, resolves the version and compiles the
// rules of every selected file. It reads no target file.
func Prepare(ctx context.Context, opts Options) (*Plan, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		found, err := config.Discover(workDir)
		if err != nil {
			return nil, err
		}
		configPath = found
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(workDir, configPath)
	}
	slog.Debug("using config", "path", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	q := opts.VCS
	if q == nil {
		q = vcs.NewGit()
	}

	version, err := scheme.NewResolver(q, cfg.ProjectDir, cfg.Version.TagGlobOrDefault()).
		Resolve(ctx, cfg.Version.Scheme, cfg.Version.Number)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved version", "scheme", version.Scheme(), "base", version.Base(), "full", version.Full())

	extra := make(map[string]any, len(cfg.ExtraContext)+len(opts.ExtraContext))
	for k, v := range cfg.ExtraContext {
		extra[k] = v
	}
	for k, v := range opts.ExtraContext {
		extra[k] = v
	}
	tplContext, err := version.Context().Merge(extra)
	if err != nil {
		return nil, err
	}

	registry, err := pattern.New(version, cfg.SearchPatterns, cfg.ReplacementPatterns, cfg.Defaults)
	if err != nil {
		return nil, err
	}

	selected, err := selectFiles(cfg, workDir, opts.Files, opts.Groups)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Config: cfg, Version: version, Context: tplContext}
	for _, f := range selected {
		rules, err := registry.ResolveAll(f.Rules)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", f.Name, err)
		}
		plan.Files = append(plan.Files, substitute.NewFile(cfg.ProjectDir, f.Name, rules))
	}
	return plan, nil
}

// Run substitutes the configured version into every selected file. Target
// files are checked for access first; if any check fails nothing is written.
func Run(ctx context.Context, opts Options) (RunMeta, error) {
	return run(ctx, opts, false)
}

// DryRun does everything Run does except write files. The returned RunMeta
// lists the files and lines that would change.
func DryRun(ctx context.Context, opts Options) (RunMeta, error) {
	return run(ctx, opts, true)
}

func run(ctx context.Context, opts Options, dryRun bool) (RunMeta, error) {
	meta := RunMeta{DryRun: dryRun}

	plan, err := Prepare(ctx, opts)
	if err != nil {
		return meta, err
	}
	meta.ConfigPath = plan.Config.Path
	meta.Scheme = plan.Version.Scheme()
	meta.BaseVersion = plan.Version.Base()
	meta.FullVersion = plan.Version.Full()
	meta.Context = plan.Context

	if err := substitute.Preflight(plan.Files); err != nil {
		return meta, err
	}

	engine := substitute.NewEngine(plan.Context, dryRun)
	for _, f := range plan.Files {
		if err := ctx.Err(); err != nil {
			return meta, err
		}
		res, err := engine.Apply(f)
		if err != nil {
			return meta, err
		}
		meta.Results = append(meta.Results, res)
		if res.Changed {
			meta.UpdatedFiles = append(meta.UpdatedFiles, res.Name)
		}
	}
	return meta, nil
}

// selectFiles returns the configured files to process, sorted by name.
func selectFiles(cfg *config.Config, workDir string, paths, groups []string) ([]config.File, error) {
	byName := make(map[string]config.File, len(cfg.Files))
	for _, f := range cfg.Files {
		byName[f.Name] = f
	}
	names := cfg.FileNamesSorted()

	if len(groups) > 0 {
		var globs []string
		for _, g := range groups {
			glob, ok := cfg.Groups[g]
			if !ok {
				return nil, scderrors.NewWithContext(scderrors.ErrCodeConfig,
					fmt.Sprintf("unknown group %q", g), map[string]any{"group": g})
			}
			globs = append(globs, glob)
		}
		var matched []string
		for _, name := range names {
			for _, glob := range globs {
				if ok, _ := doublestar.Match(glob, filepath.ToSlash(name)); ok {
					matched = append(matched, name)
					break
				}
			}
		}
		names = matched
	}

	if len(paths) > 0 {
		wanted := make(map[string]bool, len(paths))
		for _, p := range paths {
			abs := p
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(workDir, p)
			}
			wanted[filepath.Clean(abs)] = true
		}
		var matched []string
		for _, name := range names {
			path := substitute.NewFile(cfg.ProjectDir, name, nil).Path
			if wanted[path] {
				matched = append(matched, name)
				delete(wanted, path)
			}
		}
		if len(wanted) > 0 {
			missing := make([]string, 0, len(wanted))
			for p := range wanted {
				missing = append(missing, p)
			}
			sort.Strings(missing)
			return nil, scderrors.NewWithContext(scderrors.ErrCodeConfig,
				"not configured (or excluded by group filter): "+strings.Join(missing, ", "),
				map[string]any{"files": missing})
		}
		names = matched
	}

	out := make([]config.File, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}
