package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bcomnes/scd/pkg/pattern"
	"github.com/bcomnes/scd/pkg/scheme"
	"github.com/bcomnes/scd/pkg/vcs"
)

// ValidationError is one problem found in a configuration document.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a document.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

var (
	topLevelKeys = map[string]bool{
		"version": true, "files": true, "search_patterns": true, "replacement_patterns": true,
		"defaults": true, "groups": true, "extra_context": true,
	}
	versionKeys  = map[string]bool{"scheme": true, "number": true, "tag_glob": true}
	defaultsKeys = map[string]bool{"search": true, "replacement": true}
	ruleKeys     = map[string]bool{"search": true, "search_raw": true, "replace": true, "replace_raw": true}
)

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func build(doc map[string]any) (*Config, error) {
	v := &validator{}
	cfg := &Config{
		Version:  Version{TagGlob: vcs.DefaultTagGlob},
		Defaults: pattern.DefaultDefaults,
	}

	v.unknownKeys("", doc, topLevelKeys)
	v.version(doc, cfg)
	v.files(doc, cfg)
	cfg.SearchPatterns = v.stringMap(doc, "search_patterns")
	cfg.ReplacementPatterns = v.stringMap(doc, "replacement_patterns")
	v.defaults(doc, cfg)
	v.groups(doc, cfg)
	v.extraContext(doc, cfg)

	if len(v.errs) > 0 {
		return nil, v.errs
	}
	return cfg, nil
}

func (v *validator) unknownKeys(prefix string, m map[string]any, allowed map[string]bool) {
	for _, k := range sortedAnyKeys(m) {
		if !allowed[k] {
			v.add(joinField(prefix, k), "unknown key")
		}
	}
}

func (v *validator) version(doc map[string]any, cfg *Config) {
	raw, ok := doc["version"]
	if !ok {
		v.add("version", "is required")
		return
	}
	section, ok := raw.(map[string]any)
	if !ok {
		v.add("version", "must be a mapping, got %s", typeName(raw))
		return
	}
	v.unknownKeys("version", section, versionKeys)

	if s, ok := section["scheme"]; !ok {
		v.add("version.scheme", "is required")
	} else {
		name, isString := s.(string)
		if !isString {
			v.add("version.scheme", "must be a string, got %s", typeName(s))
		} else {
			if _, err := scheme.Lookup(name); err != nil {
				v.add("version.scheme", "unknown scheme %q (expected one of: %s)", name, strings.Join(scheme.Names(), ", "))
			}
			cfg.Version.Scheme = name
		}
	}

	if n, ok := section["number"]; !ok {
		v.add("version.number", "is required")
	} else if number, ok := scalarString(n); !ok || number == "" {
		v.add("version.number", "must be a non-empty string or number, got %s", typeName(n))
	} else {
		cfg.Version.Number = number
	}

	if g, ok := section["tag_glob"]; ok {
		glob, isString := g.(string)
		if !isString || glob == "" {
			v.add("version.tag_glob", "must be a non-empty string")
		} else {
			cfg.Version.TagGlob = glob
		}
	}
}

// files accepts either a mapping of file name to rule list, or a list of
// {filename, replacements} objects.
func (v *validator) files(doc map[string]any, cfg *Config) {
	raw, ok := doc["files"]
	if !ok {
		v.add("files", "is required")
		return
	}

	switch files := raw.(type) {
	case map[string]any:
		for _, name := range sortedAnyKeys(files) {
			field := joinField("files", name)
			cfg.Files = append(cfg.Files, File{Name: name, Rules: v.rules(field, files[name])})
		}
	case []any:
		seen := make(map[string]bool)
		for i, item := range files {
			field := fmt.Sprintf("files[%d]", i)
			entry, ok := item.(map[string]any)
			if !ok {
				v.add(field, "must be a mapping, got %s", typeName(item))
				continue
			}
			v.unknownKeys(field, entry, map[string]bool{"filename": true, "replacements": true})
			name, _ := entry["filename"].(string)
			if name == "" {
				v.add(field+".filename", "must be a non-empty string")
				continue
			}
			if seen[name] {
				v.add(field+".filename", "duplicate file %q", name)
				continue
			}
			seen[name] = true
			cfg.Files = append(cfg.Files, File{Name: name, Rules: v.rules(field+".replacements", entry["replacements"])})
		}
	default:
		v.add("files", "must be a mapping or a list, got %s", typeName(raw))
	}
}

func (v *validator) rules(field string, raw any) []pattern.Entry {
	list, ok := raw.([]any)
	if !ok {
		v.add(field, "must be a list of rules, got %s", typeName(raw))
		return nil
	}

	entries := make([]pattern.Entry, 0, len(list))
	for i, item := range list {
		ruleField := fmt.Sprintf("%s[%d]", field, i)
		switch r := item.(type) {
		case string:
			if r != pattern.DefaultMarker {
				v.add(ruleField, "string rules must be %q, got %q", pattern.DefaultMarker, r)
				continue
			}
			entries = append(entries, pattern.Entry{Default: true})
		case map[string]any:
			v.unknownKeys(ruleField, r, ruleKeys)
			entry := pattern.Entry{
				Search:     v.optionalString(ruleField, r, "search"),
				SearchRaw:  v.optionalString(ruleField, r, "search_raw"),
				Replace:    v.optionalString(ruleField, r, "replace"),
				ReplaceRaw: v.optionalString(ruleField, r, "replace_raw"),
			}
			if entry.Search != "" && entry.SearchRaw != "" {
				v.add(ruleField, "search and search_raw are mutually exclusive")
			}
			if entry.Replace != "" && entry.ReplaceRaw != "" {
				v.add(ruleField, "replace and replace_raw are mutually exclusive")
			}
			entries = append(entries, entry)
		default:
			v.add(ruleField, "must be %q or a mapping, got %s", pattern.DefaultMarker, typeName(item))
		}
	}
	return entries
}

func (v *validator) optionalString(field string, m map[string]any, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	s, isString := raw.(string)
	if !isString || s == "" {
		v.add(joinField(field, key), "must be a non-empty string")
		return ""
	}
	return s
}

func (v *validator) stringMap(doc map[string]any, key string) map[string]string {
	raw, ok := doc[key]
	if !ok {
		return map[string]string{}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.add(key, "must be a mapping, got %s", typeName(raw))
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for _, name := range sortedAnyKeys(m) {
		s, isString := m[name].(string)
		if !isString || s == "" {
			v.add(joinField(key, name), "must be a non-empty string")
			continue
		}
		out[name] = s
	}
	return out
}

func (v *validator) defaults(doc map[string]any, cfg *Config) {
	raw, ok := doc["defaults"]
	if !ok {
		return
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.add("defaults", "must be a mapping, got %s", typeName(raw))
		return
	}
	v.unknownKeys("defaults", m, defaultsKeys)
	if s := v.optionalString("defaults", m, "search"); s != "" {
		cfg.Defaults.Search = s
	}
	if s := v.optionalString("defaults", m, "replacement"); s != "" {
		cfg.Defaults.Replacement = s
	}
}

func (v *validator) groups(doc map[string]any, cfg *Config) {
	cfg.Groups = v.stringMap(doc, "groups")
	for _, name := range sortedKeys(cfg.Groups) {
		if !doublestar.ValidatePattern(cfg.Groups[name]) {
			v.add(joinField("groups", name), "invalid glob %q", cfg.Groups[name])
		}
	}
}

func (v *validator) extraContext(doc map[string]any, cfg *Config) {
	cfg.ExtraContext = map[string]any{}
	raw, ok := doc["extra_context"]
	if !ok {
		return
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.add("extra_context", "must be a mapping, got %s", typeName(raw))
		return
	}
	for _, k := range sortedAnyKeys(m) {
		value, err := ContextValue(m[k])
		if err != nil {
			v.add(joinField("extra_context", k), "%v", err)
			continue
		}
		cfg.ExtraContext[k] = value
	}
}

// ContextValue normalizes a decoded scalar for use as a template value:
// integers become int, everything else that is a scalar becomes a string.
func ContextValue(raw any) (any, error) {
	switch x := raw.(type) {
	case string:
		return x, nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), nil
		}
		return x.String(), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return int(x), nil
		}
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return nil, fmt.Errorf("must be a string or number, got %s", typeName(raw))
	}
}

// scalarString coerces a string or number to its textual form.
func scalarString(raw any) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, true
	default:
		return "", false
	}
}

func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case map[string]any:
		return "mapping"
	case []any:
		return "list"
	case bool:
		return "boolean"
	case json.Number, int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", raw)
	}
}

func joinField(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
