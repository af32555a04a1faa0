// Package assets holds compile-time embedded resources.
package assets

import "embed"

// Manifest lists the built-in skins shipped with the engine.
//
//go:embed skins.json
var Manifest []byte

// Skins holds the per-mode variable sheets referenced by the manifest.
//
//go:embed skins/*.css
var Skins embed.FS
