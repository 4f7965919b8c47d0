package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# bandline

A terminal timeline viewer. Rows are resources, bars are events, diamonds are
milestones. Excluded (non-working) time takes no horizontal space.

## Moving around

- ` + "`h` / `l`" + ` scroll the time axis, ` + "`H` / `L`" + ` page
- ` + "`j` / `k`" + ` scroll rows
- ` + "`g`" + ` jump back to the origin

## Editing

- ` + "`a`" + ` add an event on the first row, ` + "`x`" + ` delete the last added
- ` + "`u`" + ` shift the last added event one hour later
- ` + "`b`" + ` shift every event on the first row (applied as one batch)
- ` + "`f`" + ` toggle a filter hiding events outside the first day
- ` + "`r`" + ` reload the dataset from disk

## Other

- ` + "`?`" + ` toggles this help, ` + "`q`" + ` quits
`

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. Creating a renderer with
	// WithAutoStyle can trigger terminal capability queries that may block on
	// some terminals, so the style is resolved once and reused.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderHelp(width int) string {
	return renderMarkdown(helpMarkdown, width)
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("BANDLINE_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
