package keyboard

import (
	"unicode/utf8"

	"github.com/dasdy/tapboard/layout"
)

// Popup is a PopupKeyboard showing its keys as a single row anchored at the press, moved left when
// it would stick out of the keyboard.
type Popup struct {
	keyWidth    float64
	keyHeight   float64
	boundsWidth float64

	showing  bool
	base     rune
	keys     string
	x0, y0   float64
	geometry *layout.Geometry
}

func NewPopup() *Popup {
	return &Popup{geometry: layout.Build(nil, 0, 0)}
}

// Resize sets the size of one popup key and the width the popup must fit in.
func (p *Popup) Resize(keyWidth, keyHeight, boundsWidth float64) {
	p.keyWidth = keyWidth
	p.keyHeight = keyHeight
	p.boundsWidth = boundsWidth
}

func (p *Popup) Show(base rune, keys string, x, y float64) {
	width := p.keyWidth * float64(utf8.RuneCountInString(keys))

	x0 := x
	if x0+width > p.boundsWidth {
		x0 = max(p.boundsWidth-width, 0)
	}

	p.showing = true
	p.base = base
	p.keys = keys
	p.x0 = x0
	p.y0 = y
	p.geometry = layout.Build([]string{keys}, width, p.keyHeight)
}

func (p *Popup) IsShowing() bool {
	return p.showing
}

func (p *Popup) KeyAt(x, y float64) rune {
	if !p.showing {
		return layout.NoKey
	}

	return p.geometry.Nearest(x-p.x0, y-p.y0)
}

func (p *Popup) Dismiss() {
	p.showing = false
}

// Origin is the top left corner of the popup in keyboard coordinates.
func (p *Popup) Origin() (x, y float64) {
	return p.x0, p.y0
}

func (p *Popup) Keys() string {
	return p.keys
}

func (p *Popup) Base() rune {
	return p.base
}

// Geometry returns the key centres relative to Origin.
func (p *Popup) Geometry() *layout.Geometry {
	return p.geometry
}
