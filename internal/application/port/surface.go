// Package port defines the interfaces the engine core depends on.
package port

import (
	"context"

	"github.com/bnema/lacquer/internal/domain/entity"
)

// Surface is the live rendering target the engine applies skins to.
// Implementations are presentation-specific (a webview, a CSS file consumed
// by one, a test fake); the engine only ever talks to this interface.
type Surface interface {
	// ApplyVariables sets style variables on the surface. Variables already
	// present on the surface but absent from vars are left untouched; skins
	// are expected to ship complete sets.
	ApplyVariables(ctx context.Context, vars map[string]string) error

	// SetAppliedSkin marks the surface with the skin id and resolved mode
	// that produced its current variables, for external inspection.
	SetAppliedSkin(skinID string, mode entity.Mode)
}
