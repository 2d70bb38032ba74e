package syntax

import (
	"path/filepath"
	"strings"
)

// Mode selects the grammar used by the lexer and parser.
type Mode int

const (
	JSON Mode = iota
	JavaScript
	TypeScript
)

func (m Mode) String() string {
	switch m {
	case JSON:
		return "json"
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	default:
		return "unknown"
	}
}

// ModeForPath picks a Mode from the file extension of path.
func ModeForPath(path string) (Mode, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return JSON, true
	case ".js", ".mjs", ".cjs":
		return JavaScript, true
	case ".ts", ".mts", ".cts":
		return TypeScript, true
	}
	return JSON, false
}

// ParseMode accepts the names returned by Mode.String and the short forms
// js and ts.
func ParseMode(name string) (Mode, bool) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, true
	case "javascript", "js":
		return JavaScript, true
	case "typescript", "ts":
		return TypeScript, true
	}
	return JSON, false
}
