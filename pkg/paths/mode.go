package paths

import (
	"fmt"
	"strings"
)

// Mode selects how backend paths are resolved
type Mode int

const (
	// ModeDevelopment resolves paths from the developer checkout (cwd parent)
	ModeDevelopment Mode = iota
	// ModePackaged resolves paths from the application resource directory
	ModePackaged
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	switch m {
	case ModeDevelopment:
		return "development"
	case ModePackaged:
		return "packaged"
	default:
		return "unknown"
	}
}

// ParseMode converts a configuration value into a Mode
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "development", "dev", "debug":
		return ModeDevelopment, nil
	case "packaged", "production", "prod", "release":
		return ModePackaged, nil
	default:
		return ModeDevelopment, fmt.Errorf("unknown mode %q (expected development or packaged)", value)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
