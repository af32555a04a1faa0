package registry

import (
	"regexp"
	"strings"
)

// varDeclPattern matches one custom-property declaration inside a root block.
var varDeclPattern = regexp.MustCompile(`(--[A-Za-z0-9_-]+)\s*:\s*([^;}]+)`)

// ParseVariableBlock extracts variable declarations from a style sheet
// scoped to a root declaration. Anything outside the first root block is
// ignored; a sheet without one yields no variables.
func ParseVariableBlock(sheet string) map[string]string {
	start := strings.Index(sheet, ":root")
	if start < 0 {
		return nil
	}
	open := strings.Index(sheet[start:], "{")
	if open < 0 {
		return nil
	}
	body := sheet[start+open+1:]
	if end := strings.Index(body, "}"); end >= 0 {
		body = body[:end]
	}

	vars := make(map[string]string)
	for _, match := range varDeclPattern.FindAllStringSubmatch(body, -1) {
		vars[match[1]] = strings.TrimSpace(match[2])
	}
	return vars
}
