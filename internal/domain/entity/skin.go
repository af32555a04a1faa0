// Package entity defines the core domain types for the skin engine.
package entity

import "time"

// Mode identifies a display variant for a skin.
type Mode string

const (
	// ModeLight is the primary display mode.
	ModeLight Mode = "light"
	// ModeDark is the secondary display mode.
	ModeDark Mode = "dark"
	// ModeAuto follows the platform color scheme preference. It is resolved
	// against the live platform signal at application time and never stored
	// in resolved form.
	ModeAuto Mode = "auto"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeLight, ModeDark, ModeAuto:
		return true
	}
	return false
}

// Resolve returns the concrete display mode, substituting prefersDark for auto.
func (m Mode) Resolve(prefersDark bool) Mode {
	if m != ModeAuto {
		return m
	}
	if prefersDark {
		return ModeDark
	}
	return ModeLight
}

// VariableSet maps style variable names to values, partitioned by mode.
// The Global partition applies in every mode. At least one partition must be
// non-empty for the set to be usable.
type VariableSet struct {
	Light  map[string]string `json:"light,omitempty"`
	Dark   map[string]string `json:"dark,omitempty"`
	Global map[string]string `json:"global,omitempty"`
}

// Empty reports whether every partition is empty.
func (v VariableSet) Empty() bool {
	return len(v.Light) == 0 && len(v.Dark) == 0 && len(v.Global) == 0
}

// ForMode returns the effective variables for a concrete display mode:
// the Global partition overlaid with the mode partition. Mode values win on
// name collision. The caller owns the returned map.
func (v VariableSet) ForMode(mode Mode) map[string]string {
	merged := make(map[string]string, len(v.Global)+len(v.Light)+len(v.Dark))
	for name, value := range v.Global {
		merged[name] = value
	}
	var part map[string]string
	switch mode {
	case ModeDark:
		part = v.Dark
	default:
		part = v.Light
	}
	for name, value := range part {
		merged[name] = value
	}
	return merged
}

// Origin distinguishes built-in skins from runtime-installed ones.
type Origin string

const (
	// OriginBuiltIn marks skins shipped in the static manifest.
	OriginBuiltIn Origin = "built-in"
	// OriginInstalled marks skins installed at runtime from fetched data.
	OriginInstalled Origin = "installed"
)

// FontRole names one of the three typeface slots a skin assigns.
type FontRole string

const (
	FontRoleSans  FontRole = "sans"
	FontRoleSerif FontRole = "serif"
	FontRoleMono  FontRole = "mono"
)

// FontAssignment maps the three font roles to font catalog ids.
type FontAssignment struct {
	Sans  string `json:"sans"`
	Serif string `json:"serif"`
	Mono  string `json:"mono"`
}

// ForRole returns the font id assigned to a role.
func (a FontAssignment) ForRole(role FontRole) string {
	switch role {
	case FontRoleSerif:
		return a.Serif
	case FontRoleMono:
		return a.Mono
	default:
		return a.Sans
	}
}

// Swatch holds the preview colors shown for a skin before it is applied.
type Swatch struct {
	Light string `json:"light"`
	Dark  string `json:"dark"`
}

// Skin is one selectable entry: a named collection of style variables with
// font assignments, addressable per mode.
type Skin struct {
	ID     string
	Label  string
	Origin Origin
	// Sources maps each concrete mode to the location of its variable set:
	// an embedded asset path or URL for built-in skins, a transient
	// process-local handle for installed ones.
	Sources map[Mode]string
	Fonts   FontAssignment
	Swatch  Swatch
	// Radius is the corner-radius token declared by the manifest.
	Radius string
	// SourceURL records where an installed skin came from. Empty for
	// built-in skins.
	SourceURL string
}

// BuiltIn reports whether the skin comes from the static manifest.
func (s *Skin) BuiltIn() bool {
	return s.Origin == OriginBuiltIn
}

// SkinRecord is the persisted form of a fetched or installed skin. The raw
// variable data is kept verbatim so process-local source handles can be
// regenerated deterministically on every registry rebuild.
type SkinRecord struct {
	ID         string    `json:"id"`
	OriginURL  string    `json:"origin_url"`
	RawVars    []byte    `json:"raw_vars"`
	Installed  bool      `json:"installed"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Selection is the process-wide current choice of skin and mode.
type Selection struct {
	SkinID string
	Mode   Mode
}

// DefaultSkinID is the skin applied when nothing is persisted or the
// persisted choice cannot be resolved.
const DefaultSkinID = "default"

// DefaultSelection returns the selection used on first run.
func DefaultSelection() Selection {
	return Selection{SkinID: DefaultSkinID, Mode: ModeAuto}
}

// FontOverride lets the user replace a skin's font assignment per role.
// Persisted independently of the selection.
type FontOverride struct {
	Enabled    bool                `json:"enabled"`
	Assignment map[FontRole]string `json:"assignment,omitempty"`
}
