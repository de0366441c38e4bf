package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// KeyboardsFile is the on-disk form of Keyboards. The same field names are used for every format.
type KeyboardsFile struct {
	Name      string            `json:"name"       toml:"name"       yaml:"name"`
	Lowercase []string          `json:"lowercase"  toml:"lowercase"  yaml:"lowercase"`
	Caps      []string          `json:"caps"       toml:"caps"       yaml:"caps"`
	Numeric   []string          `json:"numeric"    toml:"numeric"    yaml:"numeric"`
	PopupKeys map[string]string `json:"popup_keys" toml:"popup_keys" yaml:"popup_keys"`
}

// Format is the encoding of a keyboards file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported keyboards file extension %q", filepath.Ext(path))
	}
}

// Load decodes keyboards from reader. Missing keyboards and popup keys fall back to Default().
func Load(reader io.Reader, format Format) (Keyboards, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return Keyboards{}, fmt.Errorf("could not read keyboards: %w", err)
	}

	var file KeyboardsFile

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatTOML:
		_, err = toml.Decode(string(data), &file)
	case FormatJSON:
		err = json.Unmarshal(data, &file)
	default:
		return Keyboards{}, fmt.Errorf("unsupported keyboards format %q", format)
	}

	if err != nil {
		return Keyboards{}, fmt.Errorf("could not decode %s keyboards: %w", format, err)
	}

	return file.toKeyboards()
}

// LoadFile opens path and decodes it according to its extension.
func LoadFile(path string) (Keyboards, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Keyboards{}, err
	}

	file, err := OpenPath(path)
	if err != nil {
		return Keyboards{}, err
	}
	defer file.Close()

	return Load(file, format)
}

func (f KeyboardsFile) toKeyboards() (Keyboards, error) {
	keyboards := Default()

	if f.Name != "" {
		keyboards.Name = f.Name
	}

	if len(f.Lowercase) > 0 {
		keyboards.Lowercase = f.Lowercase
	}

	if len(f.Caps) > 0 {
		keyboards.Caps = f.Caps
	}

	if len(f.Numeric) > 0 {
		keyboards.Numeric = f.Numeric
	}

	if len(f.PopupKeys) > 0 {
		keyboards.PopupKeys = make(map[rune]string, len(f.PopupKeys))

		for base, alternatives := range f.PopupKeys {
			if utf8.RuneCountInString(base) != 1 {
				return Keyboards{}, fmt.Errorf("popup key %q must be a single character", base)
			}

			r, _ := utf8.DecodeRuneInString(base)
			keyboards.PopupKeys[r] = alternatives
		}
	}

	if err := keyboards.Validate(); err != nil {
		return Keyboards{}, err
	}

	return keyboards, nil
}
