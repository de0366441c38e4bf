package components

import (
	"fmt"

	"github.com/dasdy/tapboard/model"
)

// KeyUnit is the side of one key cell in SVG user units.
const KeyUnit = 80.0

type PageType int

const (
	PageTypeStats PageType = iota
	PageTypeNeighbors
)

// Item is one key drawn on the heatmap. X and Y are the top-left corner of its cell.
type Item struct {
	Char      rune
	Label     string
	Count     int
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Highlight bool
}

func (i *Item) CenterX() float64 {
	return i.X + i.Width/2
}

func (i *Item) CenterY() float64 {
	return i.Y + i.Height/2
}

// Connection is drawn as a line from one key to another, thicker the more it was used.
type Connection struct {
	From       rune
	To         rune
	PressCount int
}

type RenderContext struct {
	Width       float64
	Height      float64
	Items       []Item
	MaxVal      int
	Highlight   rune
	Connections []Connection
	Layout      model.Layout
	Page        PageType
}

func (r *RenderContext) ViewBoxSize() string {
	return fmt.Sprintf("0 0 %.0f %.0f", r.Width, r.Height)
}

// Find returns the drawn key showing char.
func (r *RenderContext) Find(char rune) (*Item, bool) {
	for i := range r.Items {
		if r.Items[i].Char == char {
			return &r.Items[i], true
		}
	}

	return nil, false
}

// HeatColor maps count onto a colour between cold blue and hot red.
func HeatColor(count, maxVal int) string {
	if maxVal <= 0 || count <= 0 {
		return "hsl(220, 20%, 92%)"
	}

	ratio := float64(min(count, maxVal)) / float64(maxVal)
	hue := 220 - 220*ratio

	return fmt.Sprintf("hsl(%.0f, 80%%, %.0f%%)", hue, 85-35*ratio)
}
