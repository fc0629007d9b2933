package scheme

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/vcs"
)

// Version is a parsed version number. Implementations are immutable.
type Version interface {
	// Scheme returns the registered scheme name.
	Scheme() string
	// Base returns the raw input string.
	Base() string
	// Full returns the canonical rendering.
	Full() string
	// Context returns a fresh copy of the named fields, in a stable order.
	Context() *Context
}

// ParseFunc builds a Version from a base number and a VCS overlay. Schemes
// that do not use VCS ignore the overlay.
type ParseFunc func(base string, overlay Overlay) (Version, error)

// Scheme describes a registered versioning scheme.
type Scheme struct {
	Name string
	// Grammar is a regular expression without capture groups that matches a
	// version of this scheme inside arbitrary text.
	Grammar string
	// UsesVCS makes the Resolver query git before parsing.
	UsesVCS bool
	Parse   ParseFunc
}

var (
	mu       sync.RWMutex
	registry = map[string]Scheme{
		"semver": {
			Name:    "semver",
			Grammar: SemVerGrammar,
			Parse: func(base string, _ Overlay) (Version, error) {
				return ParseSemVer(base)
			},
		},
		"pep440": {
			Name:    "pep440",
			Grammar: PEP440Grammar,
			Parse: func(base string, _ Overlay) (Version, error) {
				return ParsePEP440(base)
			},
		},
		"git_semver": {
			Name:    "git_semver",
			Grammar: SemVerGrammar,
			UsesVCS: true,
			Parse: func(base string, o Overlay) (Version, error) {
				v, err := ParseSemVer(base)
				if err != nil {
					return nil, err
				}
				return NewGitSemVer(v, o), nil
			},
		},
		"git_pep440": {
			Name:    "git_pep440",
			Grammar: PEP440Grammar,
			UsesVCS: true,
			Parse: func(base string, o Overlay) (Version, error) {
				v, err := ParsePEP440(base)
				if err != nil {
					return nil, err
				}
				return NewGitPEP440(v, o), nil
			},
		},
	}
)

// Register adds a scheme. Names must be unique and non-empty.
func Register(s Scheme) error {
	if s.Name == "" || s.Parse == nil || s.Grammar == "" {
		return scderrors.New(scderrors.ErrCodeConfig, "scheme needs a name, a grammar and a parse function")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[s.Name]; ok {
		return scderrors.Newf(scderrors.ErrCodeConfig, "scheme %q is already registered", s.Name)
	}
	registry[s.Name] = s
	return nil
}

// Lookup returns the scheme registered under name.
func Lookup(name string) (Scheme, error) {
	mu.RLock()
	s, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return Scheme{}, scderrors.NewWithContext(scderrors.ErrCodeConfig,
			fmt.Sprintf("unknown version scheme %q (expected one of: %s)", name, strings.Join(Names(), ", ")),
			map[string]any{"scheme": name})
	}
	return s, nil
}

// Names returns the registered scheme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Grammars returns every registered scheme name mapped to its grammar.
func Grammars() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(registry))
	for name, s := range registry {
		out[name] = s.Grammar
	}
	return out
}

// Parse parses base under the named scheme without consulting git. Git
// schemes get an empty overlay and fall back to the parsed fields.
func Parse(name, base string) (Version, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Parse(base, Overlay{})
}

type cacheKey struct {
	scheme   string
	base     string
	distance int
	hasDist  bool
	commit   string
}

// Resolver parses versions for one run, querying git for schemes that need
// it. Parsed versions are cached by scheme, base number and overlay.
type Resolver struct {
	vcs     vcs.Querier
	repo    string
	tagGlob string
	cache   map[cacheKey]Version
}

// NewResolver returns a Resolver that queries q in repo. A nil q means git is
// never consulted. An empty tagGlob means vcs.DefaultTagGlob.
func NewResolver(q vcs.Querier, repo, tagGlob string) *Resolver {
	if tagGlob == "" {
		tagGlob = vcs.DefaultTagGlob
	}
	return &Resolver{
		vcs:     q,
		repo:    repo,
		tagGlob: tagGlob,
		cache:   make(map[cacheKey]Version),
	}
}

// Resolve parses base under the named scheme.
func (r *Resolver) Resolve(ctx context.Context, name, base string) (Version, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	var o Overlay
	if s.UsesVCS && r.vcs != nil {
		o.Distance, o.HasDistance = r.vcs.TagDistance(ctx, r.repo, r.tagGlob)
		o.Commit, _ = r.vcs.CurrentCommit(ctx, r.repo)
	}

	key := cacheKey{scheme: name, base: base, distance: o.Distance, hasDist: o.HasDistance, commit: o.Commit}
	if v, ok := r.cache[key]; ok {
		return v, nil
	}
	v, err := s.Parse(base, o)
	if err != nil {
		return nil, err
	}
	r.cache[key] = v
	return v, nil
}
