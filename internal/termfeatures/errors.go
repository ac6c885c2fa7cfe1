package termfeatures

import "errors"

// ErrNotATerminal indicates the output is not connected to a terminal.
var ErrNotATerminal = errors.New("not connected to a terminal")
