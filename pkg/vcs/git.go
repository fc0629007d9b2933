// Package vcs runs the two read-only git queries that git-aware version
// schemes need: commits since the best matching tag, and the short HEAD hash.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

// DefaultTagGlob is the tag pattern used when the configuration sets none.
const DefaultTagGlob = "v*"

// Querier answers VCS queries. A false second result means "unknown"; it is
// never an error.
type Querier interface {
	TagDistance(ctx context.Context, repo, glob string) (int, bool)
	CurrentCommit(ctx context.Context, repo string) (string, bool)
}

// Runner executes git with args inside dir and returns trimmed stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

type distanceKey struct {
	repo string
	glob string
}

type distanceResult struct {
	distance int
	ok       bool
}

type commitResult struct {
	commit string
	ok     bool
}

// Git is a Querier backed by the git binary. Results are memoized for the
// lifetime of the value, so one Git per run executes each query at most once.
// A Git is not safe for concurrent use.
type Git struct {
	binary    string
	run       Runner
	distances map[distanceKey]distanceResult
	commits   map[string]commitResult
}

// Option configures a Git.
type Option func(*Git)

// WithBinary overrides the git executable (default "git").
func WithBinary(path string) Option {
	return func(g *Git) {
		g.binary = path
	}
}

// WithRunner replaces command execution, mostly for tests.
func WithRunner(r Runner) Option {
	return func(g *Git) {
		g.run = r
	}
}

// NewGit returns a memoizing git Querier.
func NewGit(opts ...Option) *Git {
	g := &Git{
		binary:    "git",
		distances: make(map[distanceKey]distanceResult),
		commits:   make(map[string]commitResult),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.run == nil {
		g.run = g.exec
	}
	return g
}

func (g *Git) exec(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w, detail: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// TagDistance returns the number of commits between HEAD and the most recent
// tag matching glob. It is 0 when HEAD is tagged.
func (g *Git) TagDistance(ctx context.Context, repo, glob string) (int, bool) {
	if glob == "" {
		glob = DefaultTagGlob
	}
	key := distanceKey{repo: repo, glob: glob}
	if res, ok := g.distances[key]; ok {
		return res.distance, res.ok
	}

	var res distanceResult
	out, err := g.run(ctx, repo, "describe", "--tags", "--long", "--match", glob)
	if err != nil {
		warn("tag distance", repo, err)
	} else if d, perr := parseDescribe(out); perr != nil {
		warn("tag distance", repo, perr)
	} else {
		res = distanceResult{distance: d, ok: true}
	}

	g.distances[key] = res
	return res.distance, res.ok
}

// CurrentCommit returns the abbreviated hash of HEAD.
func (g *Git) CurrentCommit(ctx context.Context, repo string) (string, bool) {
	if res, ok := g.commits[repo]; ok {
		return res.commit, res.ok
	}

	var res commitResult
	out, err := g.run(ctx, repo, "rev-parse", "--short", "HEAD")
	switch {
	case err != nil:
		warn("current commit", repo, err)
	case out == "":
		warn("current commit", repo, fmt.Errorf("empty output"))
	default:
		res = commitResult{commit: out, ok: true}
	}

	g.commits[repo] = res
	return res.commit, res.ok
}

// parseDescribe extracts the distance from `git describe --long` output of
// the form <tag>-<distance>-g<hash>. Tags may contain dashes themselves.
func parseDescribe(out string) (int, error) {
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	hashIdx := strings.LastIndex(line, "-")
	if hashIdx <= 0 || !strings.HasPrefix(line[hashIdx+1:], "g") {
		return 0, fmt.Errorf("unexpected describe output %q", out)
	}
	rest := line[:hashIdx]
	distIdx := strings.LastIndex(rest, "-")
	if distIdx <= 0 {
		return 0, fmt.Errorf("unexpected describe output %q", out)
	}
	d, err := strconv.Atoi(rest[distIdx+1:])
	if err != nil || d < 0 {
		return 0, fmt.Errorf("cannot parse distance in %q", out)
	}
	return d, nil
}

func warn(query, repo string, cause error) {
	err := scderrors.WrapWithContext(scderrors.ErrCodeVCSUnavailable, "git query failed", cause,
		map[string]any{"query": query, "repo": repo})
	slog.Warn(err.Message, append(err.LogAttrs(), "error", cause)...)
}
