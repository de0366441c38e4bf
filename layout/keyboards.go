package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dasdy/tapboard/model"
)

const (
	// SwitchMarker is the reserved glyph of the mode switch key.
	SwitchMarker = '♻'
	// Backspace is the reserved glyph of the backspace key.
	Backspace = '⌫'
)

var ErrReservedGlyph = errors.New("row contains a reserved glyph")

// Keyboards is the set of base keyboards plus popup alternatives. Rows are stored undecorated;
// Rows() appends the switch and backspace keys to the last row.
type Keyboards struct {
	Name      string
	Lowercase []string
	Caps      []string
	Numeric   []string
	PopupKeys map[rune]string
}

// Default returns the Swedish QWERTY keyboards.
func Default() Keyboards {
	return Keyboards{
		Name: "swedish",
		Lowercase: []string{
			"qwertyuiopå",
			"asdfghjklöä",
			"zxcvbnm",
		},
		Caps: []string{
			"QWERTYUIOPÅ",
			"ASDFGHJKLÖÄ",
			"ZXCVBNM",
		},
		Numeric: []string{
			"1234567890",
			"@&/:;()-+$",
			"'\"*%#?!,.",
		},
		// å and ä are on the base keyboard already, so they are not offered as popups for a.
		PopupKeys: map[rune]string{
			'a': "@áàa",
			'A': "@ÁÀA",
			'e': "éèëe",
			'E': "ÉÈË€E",
		},
	}
}

func (k Keyboards) base(l model.Layout) []string {
	switch l {
	case model.Caps:
		return k.Caps
	case model.Lowercase:
		return k.Lowercase
	case model.Numeric:
		return k.Numeric
	default:
		panic(fmt.Sprintf("no keyboard for layout %v", l))
	}
}

// Rows returns the rows of l with the switch key first and backspace last on the last row.
func (k Keyboards) Rows(l model.Layout) []string {
	return decorate(k.base(l))
}

func decorate(base []string) []string {
	decorated := make([]string, len(base))
	copy(decorated, base)

	last := len(decorated) - 1
	decorated[last] = string(SwitchMarker) + decorated[last] + string(Backspace)

	return decorated
}

// Popup returns the alternatives offered when long-long-pressing base, or "" if there are none.
func (k Keyboards) Popup(base rune) string {
	return k.PopupKeys[base]
}

// Validate checks that every keyboard has rows and that no row uses a reserved glyph.
func (k Keyboards) Validate() error {
	for _, l := range []model.Layout{model.Caps, model.Lowercase, model.Numeric} {
		rows := k.base(l)
		if len(rows) == 0 {
			return fmt.Errorf("keyboard %s has no rows", l)
		}

		for i, row := range rows {
			if strings.ContainsRune(row, SwitchMarker) || strings.ContainsRune(row, Backspace) {
				return fmt.Errorf("keyboard %s row %d: %w", l, i, ErrReservedGlyph)
			}
		}
	}

	return nil
}

// Label is what a renderer should draw for char.
func Label(char rune, switchKey model.SwitchKey) string {
	switch char {
	case Backspace:
		return "Bs"
	case SwitchMarker:
		return switchKey.Decoration()
	default:
		return string(char)
	}
}

func GetBinaryPath() string {
	//nolint:dogsled
	_, b, _, _ := runtime.Caller(0)

	// Root folder of this project
	fp := filepath.Join(filepath.Dir(b), "..")

	return fp
}

func OpenPath(path string) (*os.File, error) {
	var err error

	var file *os.File

	if _, statErr := os.Stat(path); filepath.IsAbs(path) || statErr == nil {
		slog.Info("Opening path", "path", path)
		file, err = os.Open(path)
	} else {
		slog.Info("Opening path relative to project root", "path", path)
		file, err = os.Open(filepath.Join(GetBinaryPath(), path))
	}

	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}

	return file, nil
}
