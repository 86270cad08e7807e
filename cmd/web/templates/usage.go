// Package templates holds the HTML components served by the web command.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5}pre,code{background:#f4f4f4}pre{padding:.75rem;overflow:auto}table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:.25rem .5rem}`

// Usage renders the page shell around an already sanitized HTML body.
func Usage(title string, body template.HTML) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(title)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</title><style>`+pageStyle+`</style></head><body>`); err != nil {
			return err
		}
		if err := templ.Raw(string(body)).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
