package markdown

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Markdown wraps markdown source and renders it to sanitized HTML once.
type Markdown struct {
	// Source is the markdown source code.
	Source string

	once         sync.Once
	renderedHTML template.HTML
}

var (
	bfRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank | blackfriday.Smartypants | blackfriday.SmartypantsDashes,
	})
	bfExtensions = blackfriday.NoIntraEmphasis | blackfriday.Tables | blackfriday.FencedCode | blackfriday.Autolink | blackfriday.Strikethrough | blackfriday.SpaceHeadings | blackfriday.HeadingIDs | blackfriday.AutoHeadingIDs
	policy       = bluemonday.UGCPolicy()
	strict       = bluemonday.StrictPolicy()
)

func NewMarkdown(source string) *Markdown {
	return &Markdown{Source: source}
}

// Render converts the Markdown Source into sanitized HTML. Safe for concurrent use.
func (m *Markdown) Render() template.HTML {
	m.once.Do(func() {
		if m.Source == "" {
			return
		}
		unsafe := blackfriday.Run([]byte(m.Source),
			blackfriday.WithRenderer(bfRenderer),
			blackfriday.WithExtensions(bfExtensions),
		)
		m.renderedHTML = template.HTML(bytes.TrimSpace(policy.SanitizeBytes(unsafe)))
	})
	return m.renderedHTML
}

// StripTags removes all markup from s and returns plain text. Used for
// messages that originate outside the service before they are echoed back.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	// StrictPolicy escapes what it keeps; the result is plain text, not HTML.
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
