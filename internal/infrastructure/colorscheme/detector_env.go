package colorscheme

import (
	"os"
	"strings"
)

const (
	detectorNameEnv = "env"
	priorityEnv     = 50
)

// EnvDetector detects the color scheme from environment variables. Checked
// first so users can pin a preference regardless of desktop state:
// LACQUER_COLOR_SCHEME=light|dark, falling back to a GTK_THEME name
// containing "dark".
type EnvDetector struct{}

// NewEnvDetector creates a new environment variable-based detector.
func NewEnvDetector() *EnvDetector {
	return &EnvDetector{}
}

// Name implements port.ColorSchemeDetector.
func (*EnvDetector) Name() string {
	return detectorNameEnv
}

// Priority implements port.ColorSchemeDetector.
func (*EnvDetector) Priority() int {
	return priorityEnv
}

// Available implements port.ColorSchemeDetector.
func (*EnvDetector) Available() bool {
	return os.Getenv("LACQUER_COLOR_SCHEME") != "" || os.Getenv("GTK_THEME") != ""
}

// Detect implements port.ColorSchemeDetector.
func (*EnvDetector) Detect() (prefersDark, ok bool) {
	switch strings.ToLower(os.Getenv("LACQUER_COLOR_SCHEME")) {
	case "dark":
		return true, true
	case "light":
		return false, true
	}

	gtkTheme := os.Getenv("GTK_THEME")
	if gtkTheme == "" {
		return false, false
	}
	// A GTK_THEME set without "dark" in the name is taken as light.
	return strings.Contains(strings.ToLower(gtkTheme), "dark"), true
}
