package pattern

import (
	"strconv"

	"github.com/dlclark/regexp2"
	"github.com/flosch/pongo2/v6"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

// Pattern is a compiled search pattern.
type Pattern struct {
	// Source is the text as written in the configuration.
	Source string
	// Expr is Source rendered against the search context.
	Expr string
	re   *regexp2.Regexp
}

func compileSearch(source string, ctx pongo2.Context) (*Pattern, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, searchError(source, err)
	}
	expr, err := tpl.Execute(ctx)
	if err != nil {
		return nil, searchError(source, err)
	}
	re, err := regexp2.Compile(expr, regexp2.IgnorePatternWhitespace)
	if err != nil {
		return nil, searchError(source, err)
	}
	return &Pattern{Source: source, Expr: expr, re: re}, nil
}

func searchError(source string, cause error) error {
	return scderrors.WrapWithContext(scderrors.ErrCodePattern,
		"cannot compile search pattern "+quote(source), cause,
		map[string]any{"pattern": source})
}

// ReplaceAll replaces every match in s with repl. repl is literal text;
// no group references are expanded.
func (p *Pattern) ReplaceAll(s, repl string) (string, error) {
	return p.re.ReplaceFunc(s, func(regexp2.Match) string {
		return repl
	}, -1, -1)
}

func quote(s string) string {
	return strconv.Quote(s)
}
