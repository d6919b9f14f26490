package config

import (
	"fmt"
	"strings"
)

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Path     string   // Config file path, empty when none was read
	Problems []string // One entry per failing key
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ""
	}

	parts := []string{"validation failed:"}
	if e.Path != "" {
		parts[0] = fmt.Sprintf("%s: validation failed:", e.Path)
	}
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("  - %s", p))
	}
	return strings.Join(parts, "\n")
}
