package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bnema/lacquer/assets"
	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/fonts"
)

// manifestDoc is the on-disk shape of the built-in skin manifest.
type manifestDoc struct {
	Skins []manifestSkin `json:"skins"`
}

type manifestSkin struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	Sources map[string]string `json:"sources"`
	Fonts   manifestFonts     `json:"fonts"`
	Swatch  entity.Swatch     `json:"swatch"`
	Radius  string            `json:"radius"`
}

type manifestFonts struct {
	Sans  string `json:"sans"`
	Serif string `json:"serif"`
	Mono  string `json:"mono"`
}

// loadManifest parses the built-in manifest: the file at overridePath when
// set, the embedded one otherwise.
func loadManifest(overridePath string) ([]*entity.Skin, error) {
	data := assets.Manifest
	if overridePath != "" {
		fileData, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read manifest override: %w", err)
		}
		data = fileData
	}

	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	skins := make([]*entity.Skin, 0, len(doc.Skins))
	for _, m := range doc.Skins {
		if m.ID == "" {
			return nil, fmt.Errorf("manifest skin with empty id")
		}

		sources := make(map[entity.Mode]string, len(m.Sources))
		for mode, source := range m.Sources {
			sources[entity.Mode(mode)] = source
		}

		assignment := entity.FontAssignment{Sans: m.Fonts.Sans, Serif: m.Fonts.Serif, Mono: m.Fonts.Mono}
		if assignment == (entity.FontAssignment{}) {
			assignment = fonts.DefaultAssignment()
		}

		skins = append(skins, &entity.Skin{
			ID:      m.ID,
			Label:   m.Label,
			Origin:  entity.OriginBuiltIn,
			Sources: sources,
			Fonts:   assignment,
			Swatch:  m.Swatch,
			Radius:  m.Radius,
		})
	}
	return skins, nil
}

// builtInVariables reads and parses the embedded sheets for a built-in skin.
func builtInVariables(skin *entity.Skin) (entity.VariableSet, error) {
	var set entity.VariableSet

	read := func(mode entity.Mode) (map[string]string, error) {
		source, ok := skin.Sources[mode]
		if !ok {
			return nil, nil
		}
		sheet, err := assets.Skins.ReadFile(source)
		if err != nil {
			// A manifest override may point outside the embedded set.
			sheet, err = os.ReadFile(source)
			if err != nil {
				return nil, fmt.Errorf("read %s sheet for %q: %w", mode, skin.ID, err)
			}
		}
		return ParseVariableBlock(string(sheet)), nil
	}

	light, err := read(entity.ModeLight)
	if err != nil {
		return set, err
	}
	dark, err := read(entity.ModeDark)
	if err != nil {
		return set, err
	}

	set.Light = light
	set.Dark = dark
	if set.Empty() {
		return set, fmt.Errorf("skin %q has no variables in any mode", skin.ID)
	}
	return set, nil
}
