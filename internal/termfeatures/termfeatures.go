// Package termfeatures detects what the output terminal supports: its width
// and how many colors it can show.
package termfeatures

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Capabilities describes the terminal's feature support.
type Capabilities struct {
	Term    string // TERM environment variable
	IsTTY   bool
	IsDumb  bool
	Width   int
	Profile termenv.Profile
}

// Detect inspects f and the environment.
func Detect(f *os.File) Capabilities {
	termName := os.Getenv("TERM")
	caps := Capabilities{
		Term:    termName,
		IsDumb:  termName == "dumb",
		Width:   DefaultWidth,
		Profile: termenv.Ascii,
	}

	fd := int(f.Fd())
	caps.IsTTY = term.IsTerminal(fd)
	if width, err := Width(fd); err == nil {
		caps.Width = width
	}

	// honours NO_COLOR and CLICOLOR_FORCE
	caps.Profile = termenv.NewOutput(f).EnvColorProfile()
	if caps.IsDumb {
		caps.Profile = termenv.Ascii
	}
	return caps
}

// Width returns the column count of the terminal behind fd.
func Width(fd int) (int, error) {
	if !term.IsTerminal(fd) {
		return 0, ErrNotATerminal
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0, err
	}
	if width <= 0 {
		return 0, ErrNotATerminal
	}
	return width, nil
}

// ColorProfile resolves a color mode ("auto", "always" or "never") against
// the detected profile.
func (c Capabilities) ColorProfile(mode string) termenv.Profile {
	switch mode {
	case "never":
		return termenv.Ascii
	case "always":
		if c.Profile == termenv.Ascii {
			return termenv.ANSI
		}
		return c.Profile
	}
	if !c.IsTTY {
		return termenv.Ascii
	}
	return c.Profile
}
