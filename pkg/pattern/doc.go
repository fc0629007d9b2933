// Package pattern resolves the search patterns and replacement templates a
// file rule refers to.
//
// Both kinds of source text are Jinja-style templates (rendered with
// pongo2). A search pattern is rendered once against a search context in
// which every scheme name stands for that scheme's grammar, then compiled as
// a verbose regular expression with regexp2 so lookarounds work. A
// replacement template is rendered against the version context.
//
// Compiled objects are cached by source text within a Registry, so two
// rules with identical text share the same *Pattern or *Template.
package pattern
