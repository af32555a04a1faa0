// Package surface provides the default rendering target: a generated style
// sheet consumed by whatever presentation layer embeds the engine.
package surface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/logging"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// CSSFile renders applied variables as a :root block written to one file.
// Variables accumulate across applications: a skin that omits a variable a
// previous skin set leaves the old value in place, matching the engine's
// no-clearing contract.
type CSSFile struct {
	path string

	mu      sync.Mutex
	vars    map[string]string
	skinID  string
	mode    entity.Mode
	written bool
}

// NewCSSFile creates a surface writing to path.
func NewCSSFile(path string) *CSSFile {
	return &CSSFile{
		path: path,
		vars: make(map[string]string),
	}
}

// ApplyVariables implements port.Surface.
func (s *CSSFile) ApplyVariables(ctx context.Context, vars map[string]string) error {
	s.mu.Lock()
	for name, value := range vars {
		s.vars[name] = value
	}
	err := s.writeLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().
		Int("vars", len(vars)).
		Str("path", s.path).
		Msg("surface updated")
	return nil
}

// SetAppliedSkin implements port.Surface.
func (s *CSSFile) SetAppliedSkin(skinID string, mode entity.Mode) {
	s.mu.Lock()
	s.skinID = skinID
	s.mode = mode
	_ = s.writeLocked()
	s.mu.Unlock()
}

// AppliedSkin returns the marker set by the last application.
func (s *CSSFile) AppliedSkin() (string, entity.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skinID, s.mode
}

// writeLocked renders and writes the sheet. Caller holds s.mu.
func (s *CSSFile) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create surface directory: %w", err)
	}

	var b strings.Builder
	if s.skinID != "" {
		fmt.Fprintf(&b, "/* lacquer: %s (%s) */\n", s.skinID, s.mode)
	}
	b.WriteString(":root {\n")

	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\t%s: %s;\n", name, s.vars[name])
	}
	b.WriteString("}\n")

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("write surface sheet: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace surface sheet: %w", err)
	}
	s.written = true
	return nil
}
