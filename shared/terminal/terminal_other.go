//go:build !windows

package terminal

import (
	"os"
	"strings"
)

// EnableANSI is a no-op on non-Windows; ANSI escape sequences are supported by default.
func EnableANSI() {
}

// IsBlueBackground returns true if the terminal background color is blue.
func IsBlueBackground() bool {
	return blueBackgroundFromEnv(os.Getenv("COLORFGBG"))
}

func blueBackgroundFromEnv(raw string) bool {
	parts := strings.Split(raw, ";")
	bg := strings.TrimSpace(parts[len(parts)-1])

	// ANSI 16-color backgrounds: 4 (blue) and 12 (bright blue).
	return bg == "4" || bg == "12"
}
