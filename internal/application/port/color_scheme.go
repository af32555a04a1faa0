package port

// ColorSchemePreference is the resolved platform light/dark preference.
type ColorSchemePreference struct {
	// PrefersDark indicates whether dark mode is preferred.
	PrefersDark bool

	// Source identifies which detector provided this preference.
	// Empty string means fallback was used.
	Source string
}

// ColorSchemeDetector detects the platform's color scheme preference.
// Multiple detectors can be registered with different priorities.
type ColorSchemeDetector interface {
	// Name returns a human-readable name for this detector.
	Name() string

	// Priority returns the detector's priority.
	// Higher values = higher priority (checked first).
	Priority() int

	// Available returns true if this detector can be used on this system.
	Available() bool

	// Detect returns the detected preference and whether detection
	// succeeded.
	Detect() (prefersDark bool, ok bool)
}

// ColorSchemeResolver resolves the effective platform preference and notifies
// subscribers when it changes. This is the live signal auto-mode selections
// are resolved against.
type ColorSchemeResolver interface {
	// Resolve returns the current preference, querying detectors by
	// priority. Defaults to dark if every detector fails.
	Resolve() ColorSchemePreference

	// RegisterDetector adds a detector. Safe to call at any time; the
	// resolver re-evaluates on the next Resolve.
	RegisterDetector(detector ColorSchemeDetector)

	// Refresh forces re-evaluation, invoking OnChange callbacks if the
	// preference flipped. Called by platform watchers on system changes.
	Refresh() ColorSchemePreference

	// OnChange registers a callback for preference changes. Returns an
	// unregister function.
	OnChange(callback func(ColorSchemePreference)) func()
}
