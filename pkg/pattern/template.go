package pattern

import (
	"github.com/flosch/pongo2/v6"

	scderrors "github.com/bcomnes/scd/pkg/errors"
	"github.com/bcomnes/scd/pkg/scheme"
)

func init() {
	// Rendered values are version strings and regular expressions, never HTML.
	pongo2.SetAutoescape(false)
}

// Template is a compiled replacement template.
type Template struct {
	Source string
	tpl    *pongo2.Template
}

func compileTemplate(source string) (*Template, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, scderrors.WrapWithContext(scderrors.ErrCodePattern,
			"cannot compile replacement template "+quote(source), err,
			map[string]any{"template": source})
	}
	return &Template{Source: source, tpl: tpl}, nil
}

// Render executes the template with the version context.
func (t *Template) Render(ctx *scheme.Context) (string, error) {
	return t.render(pongo2.Context(ctx.Map()))
}

func (t *Template) render(ctx pongo2.Context) (string, error) {
	out, err := t.tpl.Execute(ctx)
	if err != nil {
		return "", scderrors.WrapWithContext(scderrors.ErrCodePattern,
			"cannot render template "+quote(t.Source), err,
			map[string]any{"template": t.Source})
	}
	return out, nil
}
