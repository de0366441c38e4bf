package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/dasdy/tapboard/model"
)

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
nav a { margin-right: 1em; }
nav a.active { font-weight: bold; }
svg { max-width: 100%%; }
.key text { text-anchor: middle; dominant-baseline: middle; pointer-events: none; }
.key .count { font-size: 12px; fill: #333; }
.key .label { font-size: 24px; }
.key.highlight rect { stroke: #000; stroke-width: 4; }
.connection { stroke: #222; stroke-opacity: 0.6; stroke-linecap: round; }
</style>
</head>
<body>
`

// HeatMap renders the keyboard with every key coloured by how often it was used.
func HeatMap(r *RenderContext) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		title := "Character usage"
		if r.Page == PageTypeNeighbors {
			title = fmt.Sprintf("Characters typed after %s", string(r.Highlight))
		}

		fmt.Fprintf(&b, page, templ.EscapeString(title))
		fmt.Fprintf(&b, "<h1>%s</h1>\n", templ.EscapeString(title))

		writeNav(&b, r)

		fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s">`+"\n", r.ViewBoxSize())

		for i := range r.Items {
			writeKey(&b, r, &r.Items[i])
		}

		writeConnections(&b, r)

		b.WriteString("</svg>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		if err != nil {
			return fmt.Errorf("could not write heatmap: %w", err)
		}

		return nil
	})
}

func writeNav(b *strings.Builder, r *RenderContext) {
	b.WriteString("<nav>")

	for _, l := range []model.Layout{model.Lowercase, model.Caps, model.Numeric} {
		class := ""
		if l == r.Layout {
			class = ` class="active"`
		}

		fmt.Fprintf(b, `<a href="%s"%s>%s</a>`,
			templ.EscapeString(getLayoutLink(l, r)), class, templ.EscapeString(l.String()))
	}

	if link := getSwitchModeLink(r.Highlight, r.Layout, r.Page); link != "" {
		fmt.Fprintf(b, `<a href="%s">%s</a>`,
			templ.EscapeString(link), templ.EscapeString(getSwitchModeButtonText(r.Page)))
	}

	b.WriteString("</nav>\n")
}

func writeKey(b *strings.Builder, r *RenderContext, item *Item) {
	class := "key"
	if item.Highlight {
		class += " highlight"
	}

	fmt.Fprintf(b, `<a href="%s"><g class="%s">`,
		templ.EscapeString(getLinkForKey(item.Char, r.Layout)), class)
	fmt.Fprintf(b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" fill="%s"/>`,
		item.X+2, item.Y+2, item.Width-4, item.Height-4, HeatColor(item.Count, r.MaxVal))
	fmt.Fprintf(b, `<text class="label" x="%.2f" y="%.2f">%s</text>`,
		item.CenterX(), item.CenterY()-6, templ.EscapeString(item.Label))
	fmt.Fprintf(b, `<text class="count" x="%.2f" y="%.2f">%d</text>`,
		item.CenterX(), item.Y+item.Height-14, item.Count)
	b.WriteString("</g></a>\n")
}

func writeConnections(b *strings.Builder, r *RenderContext) {
	for _, c := range r.Connections {
		from, ok := r.Find(c.From)
		if !ok {
			continue
		}

		to, ok := r.Find(c.To)
		if !ok || from == to {
			continue
		}

		width := 2.0
		if r.MaxVal > 0 {
			width += 8 * float64(c.PressCount) / float64(r.MaxVal)
		}

		fmt.Fprintf(b, `<line class="connection" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="%.2f"/>`+"\n",
			from.CenterX(), from.CenterY(), to.CenterX(), to.CenterY(), width)
	}
}
