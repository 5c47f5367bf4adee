package conversation

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// RenderResultMarkdown formats a completed task result as markdown for
// chat clients.
func RenderResultMarkdown(r *Result) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	if r.Summary != "" {
		b.WriteString(r.Summary)
		b.WriteString("\n\n")
	}

	if len(r.Restaurants) > 0 {
		b.WriteString("## Recommended Restaurants\n\n")
		for i, rest := range r.Restaurants {
			fmt.Fprintf(&b, "%d. **%s** (%s, %s), rating %.1f\n", i+1, rest.Name, rest.Cuisine, rest.Price, rest.Rating)
			if rest.Location != "" {
				fmt.Fprintf(&b, "   - Location: %s\n", rest.Location)
			}
			if len(rest.Highlights) > 0 {
				fmt.Fprintf(&b, "   - Highlights: %s\n", strings.Join(rest.Highlights, ", "))
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Confidence: %.0f%%\n", r.Confidence*100)
	return b.String()
}

// RenderResultHTML converts the markdown rendering to sanitized HTML
// safe to embed in a web client.
func RenderResultHTML(r *Result) string {
	md := RenderResultMarkdown(r)
	if md == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags,
	})
	raw := markdown.ToHTML([]byte(md), p, renderer)

	return string(bluemonday.UGCPolicy().SanitizeBytes(raw))
}
