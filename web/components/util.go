package components

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dasdy/tapboard/model"
)

// LayoutParam is how a layout is named in query strings.
func LayoutParam(l model.Layout) string {
	return strings.ToLower(l.String())
}

// ParseLayoutParam is the inverse of LayoutParam.
func ParseLayoutParam(s string) (model.Layout, bool) {
	for _, l := range []model.Layout{model.Caps, model.Lowercase, model.Numeric} {
		if LayoutParam(l) == s {
			return l, true
		}
	}

	return 0, false
}

// getLinkForKey returns where clicking a key leads.
func getLinkForKey(char rune, l model.Layout) string {
	return fmt.Sprintf("/neighbors?key=%s&layout=%s", url.QueryEscape(string(char)), LayoutParam(l))
}

// getSwitchModeLink returns the appropriate URL to switch between stats and neighbors modes.
func getSwitchModeLink(char rune, l model.Layout, currentPageType PageType) string {
	switch currentPageType {
	case PageTypeNeighbors:
		return "/?layout=" + LayoutParam(l)
	case PageTypeStats:
		if char != 0 {
			return getLinkForKey(char, l)
		}

		return ""
	default:
		return "/"
	}
}

// getSwitchModeButtonText returns the appropriate button text for switching modes.
func getSwitchModeButtonText(currentPageType PageType) string {
	switch currentPageType {
	case PageTypeNeighbors:
		return "View Totals"
	case PageTypeStats:
		return "View Neighbors"
	default:
		return ""
	}
}

func getLayoutLink(l model.Layout, r *RenderContext) string {
	if r.Page == PageTypeNeighbors && r.Highlight != 0 {
		return getLinkForKey(r.Highlight, l)
	}

	return "/?layout=" + LayoutParam(l)
}
