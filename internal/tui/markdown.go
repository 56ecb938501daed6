package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownWrap is the column at which rendered markdown wraps.
const MarkdownWrap = 80

//nolint:gochecknoglobals // cached renderer, built once per process
var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

func getMarkdownRenderer() *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		style := glamour.WithAutoStyle()
		if !HasColorSupport() {
			style = glamour.WithStandardStyle("notty")
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(MarkdownWrap))
		if err == nil {
			markdownRenderer = r
		}
	})
	return markdownRenderer
}

// RenderMarkdown renders doc for the terminal. The raw text is returned when
// the renderer is unavailable or fails. The result always ends in a newline.
func RenderMarkdown(doc string) string {
	out := doc
	if r := getMarkdownRenderer(); r != nil {
		if rendered, err := r.Render(doc); err == nil {
			out = rendered
		}
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// Indent prefixes every non-empty line of s with prefix.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
