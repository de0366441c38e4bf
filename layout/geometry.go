package layout

import (
	"github.com/dasdy/tapboard/model"
)

// NoKey is returned by Nearest when there are no keys at all.
const NoKey rune = 0

// Geometry holds the centre of every key of one keyboard at one size. It never changes once built.
type Geometry struct {
	keys   []model.KeyInfo
	rows   []string
	width  float64
	height float64
}

// Build divides width evenly between the glyphs of each row and height evenly between the rows,
// placing each key at the middle of its cell. Rows may have different lengths.
func Build(rows []string, width, height float64) *Geometry {
	g := &Geometry{
		rows:   rows,
		width:  width,
		height: height,
	}

	rowCount := float64(len(rows))

	for r, row := range rows {
		glyphs := []rune(row)
		colCount := float64(len(glyphs))

		y := float64(r+1)*height/rowCount - height/(2*rowCount)

		for c, char := range glyphs {
			x := float64(c+1)*width/colCount - width/(2*colCount)
			g.keys = append(g.keys, model.KeyInfo{Char: char, X: x, Y: y})
		}
	}

	return g
}

// Keys returns the key centres in row-major order.
func (g *Geometry) Keys() []model.KeyInfo {
	keys := make([]model.KeyInfo, len(g.keys))
	copy(keys, g.keys)

	return keys
}

func (g *Geometry) Rows() []string {
	return g.rows
}

func (g *Geometry) Size() (width, height float64) {
	return g.width, g.height
}

// Nearest returns the key whose centre is closest to (x, y). On a tie the key that comes first in
// row-major order wins.
func (g *Geometry) Nearest(x, y float64) rune {
	closest := NoKey
	bestDistance := 0.0

	for i, key := range g.keys {
		dx := key.X - x
		dy := key.Y - y
		distance := dx*dx + dy*dy

		if i == 0 || distance < bestDistance {
			closest = key.Char
			bestDistance = distance
		}
	}

	return closest
}

// Locate returns the centre of the first key showing char.
func (g *Geometry) Locate(char rune) (model.KeyInfo, bool) {
	for _, key := range g.keys {
		if key.Char == char {
			return key, true
		}
	}

	return model.KeyInfo{}, false
}

// TouchTolerance derives the movement budget of a press from the key pitch, so that small keys
// get a small tolerance. fraction is the share of the smaller key dimension to allow.
func TouchTolerance(rows []string, width, height, fraction float64) float64 {
	if len(rows) == 0 {
		return 0
	}

	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len([]rune(row)))
	}

	if maxCols == 0 {
		return 0
	}

	keyWidth := width / float64(maxCols)
	keyHeight := height / float64(len(rows))

	return fraction * min(keyWidth, keyHeight)
}
