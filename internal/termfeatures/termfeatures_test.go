package termfeatures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectNonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	t.Setenv("TERM", "xterm-256color")
	caps := Detect(f)

	assert.False(t, caps.IsTTY)
	assert.False(t, caps.IsDumb)
	assert.Equal(t, DefaultWidth, caps.Width)
	assert.Equal(t, "xterm-256color", caps.Term)

	_, err = Width(int(f.Fd()))
	assert.ErrorIs(t, err, ErrNotATerminal)
}

func TestDetectDumbTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	t.Setenv("TERM", "dumb")
	t.Setenv("CLICOLOR_FORCE", "1")
	caps := Detect(f)

	assert.True(t, caps.IsDumb)
	assert.Equal(t, termenv.Ascii, caps.Profile)
}

func TestColorProfile(t *testing.T) {
	tests := []struct {
		name     string
		caps     Capabilities
		mode     string
		expected termenv.Profile
	}{
		{name: "never", caps: Capabilities{IsTTY: true, Profile: termenv.TrueColor}, mode: "never", expected: termenv.Ascii},
		{name: "always without colors", caps: Capabilities{Profile: termenv.Ascii}, mode: "always", expected: termenv.ANSI},
		{name: "always keeps richer profile", caps: Capabilities{Profile: termenv.ANSI256}, mode: "always", expected: termenv.ANSI256},
		{name: "auto on terminal", caps: Capabilities{IsTTY: true, Profile: termenv.ANSI256}, mode: "auto", expected: termenv.ANSI256},
		{name: "auto off terminal", caps: Capabilities{Profile: termenv.ANSI256}, mode: "auto", expected: termenv.Ascii},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.caps.ColorProfile(tt.mode))
		})
	}
}
