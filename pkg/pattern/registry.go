package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/flosch/pongo2/v6"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/scheme"
)

const (
	digits          = `\d+`
	digitsPair      = `\d+\.\d+`
	digitsTriple    = `\d+\.\d+\.\d+`
	fullPlaceholder = "full"
)

// BuiltinReplacements are the replacement templates every configuration can
// use by name.
var BuiltinReplacements = map[string]string{
	"base":              "{{ base }}",
	"full":              "{{ full }}",
	"major_minor_patch": "{{ major }}.{{ minor }}.{{ patch }}",
	"major_minor":       "{{ major }}.{{ minor }}",
	"major":             "{{ major }}",
}

// BuiltinSearches returns the search patterns every configuration can use by
// name: one per registered scheme, plus full and the numeric shorthands.
func BuiltinSearches() map[string]string {
	out := map[string]string{
		fullPlaceholder:     "{{ full }}",
		"major_minor_patch": "{{ major_minor_patch }}",
		"major_minor":       "{{ major_minor }}",
		"major":             "{{ major }}",
	}
	for _, name := range scheme.Names() {
		out[name] = "{{ " + name + " }}"
	}
	return out
}

// SearchContext is the context search patterns are rendered with. full
// stands for the grammar of schemeName.
func SearchContext(schemeName string) pongo2.Context {
	ctx := pongo2.Context{
		"major":             digits,
		"minor":             digits,
		"patch":             digits,
		"major_minor":       digitsPair,
		"major_minor_patch": digitsTriple,
	}
	grammars := scheme.Grammars()
	for name, grammar := range grammars {
		ctx[name] = grammar
	}
	ctx[fullPlaceholder] = grammars[schemeName]
	return ctx
}

// Registry holds the named search patterns and replacement templates of one
// run, and caches everything it compiles.
type Registry struct {
	searchContext pongo2.Context
	searches      map[string]string
	replacements  map[string]string
	defaults      Defaults

	patternCache  map[string]*Pattern
	templateCache map[string]*Template
}

// New builds a registry for version. Config entries are added next to the
// built-ins; reusing a built-in name is an error. Every named entry is
// compiled up front so bad configuration fails before any file is read.
func New(version scheme.Version, searches, replacements map[string]string, defaults Defaults) (*Registry, error) {
	if defaults.Search == "" {
		defaults.Search = DefaultDefaults.Search
	}
	if defaults.Replacement == "" {
		defaults.Replacement = DefaultDefaults.Replacement
	}

	r := &Registry{
		searchContext: SearchContext(version.Scheme()),
		searches:      BuiltinSearches(),
		replacements:  make(map[string]string, len(BuiltinReplacements)+len(replacements)),
		defaults:      defaults,
		patternCache:  make(map[string]*Pattern),
		templateCache: make(map[string]*Template),
	}
	for name, source := range BuiltinReplacements {
		r.replacements[name] = source
	}

	var errs []error
	for _, name := range sortedKeys(searches) {
		if _, ok := r.searches[name]; ok {
			errs = append(errs, shadowError("search pattern", name))
			continue
		}
		r.searches[name] = searches[name]
	}
	for _, name := range sortedKeys(replacements) {
		if _, ok := r.replacements[name]; ok {
			errs = append(errs, shadowError("replacement pattern", name))
			continue
		}
		r.replacements[name] = replacements[name]
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if _, ok := r.searches[defaults.Search]; !ok {
		errs = append(errs, unknownError("search pattern", defaults.Search))
	}
	if _, ok := r.replacements[defaults.Replacement]; !ok {
		errs = append(errs, unknownError("replacement pattern", defaults.Replacement))
	}

	for _, name := range sortedKeys(r.searches) {
		if _, err := r.Search(name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range sortedKeys(r.replacements) {
		if _, err := r.Replacement(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Defaults returns the effective defaults.
func (r *Registry) Defaults() Defaults {
	return r.defaults
}

// Search returns the compiled named search pattern.
func (r *Registry) Search(name string) (*Pattern, error) {
	source, ok := r.searches[name]
	if !ok {
		return nil, unknownError("search pattern", name)
	}
	return r.CompileSearch(source)
}

// Replacement returns the compiled named replacement template.
func (r *Registry) Replacement(name string) (*Template, error) {
	source, ok := r.replacements[name]
	if !ok {
		return nil, unknownError("replacement pattern", name)
	}
	return r.CompileReplacement(source)
}

// CompileSearch renders and compiles raw search pattern text.
func (r *Registry) CompileSearch(source string) (*Pattern, error) {
	if p, ok := r.patternCache[source]; ok {
		return p, nil
	}
	p, err := compileSearch(source, r.searchContext)
	if err != nil {
		return nil, err
	}
	r.patternCache[source] = p
	return p, nil
}

// CompileReplacement compiles raw replacement template text.
func (r *Registry) CompileReplacement(source string) (*Template, error) {
	if t, ok := r.templateCache[source]; ok {
		return t, nil
	}
	t, err := compileTemplate(source)
	if err != nil {
		return nil, err
	}
	r.templateCache[source] = t
	return t, nil
}

// Resolve turns a rule entry into a compiled rule. The default marker picks
// both defaults. Otherwise each side is resolved on its own: raw text wins
// over a name, and a side with neither uses its default.
func (r *Registry) Resolve(entry Entry) (Rule, error) {
	if entry.Default {
		return r.defaultRule()
	}

	var (
		rule Rule
		err  error
	)
	switch {
	case entry.SearchRaw != "":
		rule.Search, err = r.CompileSearch(entry.SearchRaw)
	case entry.Search != "":
		rule.Search, err = r.Search(entry.Search)
	default:
		rule.Search, err = r.Search(r.defaults.Search)
	}
	if err != nil {
		return Rule{}, err
	}

	switch {
	case entry.ReplaceRaw != "":
		rule.Replace, err = r.CompileReplacement(entry.ReplaceRaw)
	case entry.Replace != "":
		rule.Replace, err = r.Replacement(entry.Replace)
	default:
		rule.Replace, err = r.Replacement(r.defaults.Replacement)
	}
	if err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// ResolveAll resolves entries in order.
func (r *Registry) ResolveAll(entries []Entry) ([]Rule, error) {
	rules := make([]Rule, 0, len(entries))
	for i, entry := range entries {
		rule, err := r.Resolve(entry)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *Registry) defaultRule() (Rule, error) {
	search, err := r.Search(r.defaults.Search)
	if err != nil {
		return Rule{}, err
	}
	replace, err := r.Replacement(r.defaults.Replacement)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Search: search, Replace: replace}, nil
}

func shadowError(kind, name string) error {
	return scderrors.NewWithContext(scderrors.ErrCodeConfig,
		fmt.Sprintf("%s %q is built in and cannot be redefined", kind, name),
		map[string]any{"name": name})
}

func unknownError(kind, name string) error {
	return scderrors.NewWithContext(scderrors.ErrCodeConfig,
		fmt.Sprintf("unknown %s %q", kind, name),
		map[string]any{"name": name})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
