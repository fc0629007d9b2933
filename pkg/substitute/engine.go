package substitute

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/pattern"
	"github.com/bcomnes/scd/pkg/scheme"
)

// LineChange records one modified line. Line is 1-based; Before and After
// exclude the line terminator.
type LineChange struct {
	Line   int    `json:"line" yaml:"line"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// Result describes what Apply did, or would do in a dry run, to one file.
type Result struct {
	Name    string       `json:"name" yaml:"name"`
	Path    string       `json:"path" yaml:"path"`
	Changed bool         `json:"changed" yaml:"changed"`
	Changes []LineChange `json:"changes,omitempty" yaml:"changes,omitempty"`
	// Content is the full new content of the file.
	Content []byte `json:"-" yaml:"-"`
}

// Engine applies rules with one version context. Rendered replacements are
// cached per template for the lifetime of the Engine, which is one run.
type Engine struct {
	context  *scheme.Context
	dryRun   bool
	rendered map[*pattern.Template]string
}

// NewEngine returns an Engine rendering templates with ctx. With dryRun set
// files are never written.
func NewEngine(ctx *scheme.Context, dryRun bool) *Engine {
	return &Engine{
		context:  ctx,
		dryRun:   dryRun,
		rendered: make(map[*pattern.Template]string),
	}
}

// Apply reads f, runs its rules and rewrites it if anything changed.
func (e *Engine) Apply(f *File) (*Result, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", f.Path, err)
	}
	if err := checkEncoding(data); err != nil {
		return nil, scderrors.WrapWithContext(scderrors.ErrCodeAccess,
			fmt.Sprintf("%s cannot be processed", f.Name), err,
			map[string]any{"file": f.Name, "path": f.Path})
	}

	content, changes, err := e.Substitute(f.Rules, string(data))
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", f.Name, err)
	}

	result := &Result{
		Name:    f.Name,
		Path:    f.Path,
		Changed: len(changes) > 0,
		Changes: changes,
		Content: []byte(content),
	}
	for _, c := range changes {
		slog.Debug("line changed", "file", f.Name, "line", c.Line, "before", c.Before, "after", c.After)
	}

	if !result.Changed {
		slog.Debug("no changes", "file", f.Name)
		return result, nil
	}
	if e.dryRun {
		slog.Info("would update file", "file", f.Name, "lines", len(changes))
		return result, nil
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.WriteFile(f.Path, result.Content, 0o644); err != nil {
		return nil, fmt.Errorf("writing file %s: %w", f.Path, err)
	}
	slog.Info("updated file", "file", f.Name, "lines", len(changes))
	return result, nil
}

// Substitute runs rules over content and returns the new content together
// with the changed lines.
func (e *Engine) Substitute(rules []pattern.Rule, content string) (string, []LineChange, error) {
	var (
		out     strings.Builder
		changes []LineChange
	)
	out.Grow(len(content))

	for i, line := range splitLines(content) {
		body, eol := splitTerminator(line)
		updated := body
		for _, rule := range rules {
			repl, err := e.render(rule.Replace)
			if err != nil {
				return "", nil, err
			}
			if updated, err = rule.Search.ReplaceAll(updated, repl); err != nil {
				return "", nil, fmt.Errorf("line %d: search pattern %q: %w", i+1, rule.Search.Source, err)
			}
		}
		if updated != body {
			changes = append(changes, LineChange{Line: i + 1, Before: body, After: updated})
		}
		out.WriteString(updated)
		out.WriteString(eol)
	}
	return out.String(), changes, nil
}

func (e *Engine) render(t *pattern.Template) (string, error) {
	if s, ok := e.rendered[t]; ok {
		return s, nil
	}
	s, err := t.Render(e.context)
	if err != nil {
		return "", err
	}
	e.rendered[t] = s
	return s, nil
}

// splitLines splits s after every "\n". The last element has no terminator
// when s does not end with a newline; an empty s yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func splitTerminator(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}
