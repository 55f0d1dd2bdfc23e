//go:build !windows

package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlueBackgroundFromEnv(t *testing.T) {
	tests := map[string]bool{
		"":       false,
		"15;0":   false,
		"15;4":   true,
		"7;12":   true,
		"0;4;1":  false,
		"0;  4 ": true,
	}
	for raw, want := range tests {
		assert.Equal(t, want, blueBackgroundFromEnv(raw), raw)
	}
}
