package completion

import (
	"github.com/robottwo/gcomp/pkg/shellargs"
)

// NoLimit means a provider may return every match it has.
const NoLimit = -1

// Page carries advisory pagination hints for expensive providers. Nothing in
// this package enforces them.
type Page struct {
	Start int
	Limit int
}

// FullPage asks for every match starting at the first one.
var FullPage = Page{Start: 0, Limit: NoLimit}

// CursorPosition locates the cursor inside a parsed command line.
type CursorPosition struct {
	Args *shellargs.Args
	// Index of the argument holding the cursor, -1 if the line has no
	// arguments.
	Index int
	// CharPos is the cursor offset in runes inside Args.At(Index).
	CharPos int
}

// DeriveCursorPosition parses line and works out which argument the cursor
// at rawCursorPos (in runes) sits in. Offsets outside the line are clamped
// to it.
//
// When the cursor directly follows an unquoted space it is between two
// arguments; an empty argument is inserted after the previous one and the
// cursor is placed in it, so providers complete a new argument instead of
// extending the last one.
func DeriveCursorPosition(line string, rawCursorPos int) CursorPosition {
	runes := []rune(line)
	rawCursorPos = clampCursor(rawCursorPos, len(runes))

	parsed := shellargs.Parse(line)
	// The last argument of the partial parse is the one the cursor is in,
	// and the cursor is after its last character.
	partial := shellargs.Parse(string(runes[:rawCursorPos]))

	index := partial.Len() - 1
	charPos := 0
	var current []rune
	if index >= 0 {
		current = []rune(partial.At(index))
		charPos = len(current)
	}

	if rawCursorPos > 0 && runes[rawCursorPos-1] == ' ' {
		// A quoted or escaped space is kept in the argument; a separator is
		// not.
		if charPos == 0 || current[charPos-1] != ' ' {
			parsed.Insert(index+1, "", 0)
			index++
			charPos = 0
		}
	}

	return CursorPosition{Args: parsed, Index: index, CharPos: charPos}
}

func clampCursor(pos, length int) int {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

// Request holds everything a provider needs to complete a command line and
// collects the matches it produces.
type Request struct {
	rawLine            string
	rawCursorPos       int
	parsedLine         *shellargs.Args
	cursorIndex        int
	cursorCharPosition int
	page               Page
	wordComplete       bool
	matches            *StringList
}

// NewRequest parses line and derives the cursor position from rawCursorPos.
// matches is cleared.
func NewRequest(line string, rawCursorPos int, page Page, matches *StringList) *Request {
	pos := DeriveCursorPosition(line, rawCursorPos)
	return NewParsedRequest(line, clampCursor(rawCursorPos, len([]rune(line))), pos.Args, pos.Index, pos.CharPos, page, false, matches)
}

// NewParsedRequest builds a request from an already parsed line and cursor
// position. The values are stored as given; matches is cleared.
func NewParsedRequest(line string, rawCursorPos int, parsedLine *shellargs.Args, cursorIndex, cursorCharPosition int, page Page, wordComplete bool, matches *StringList) *Request {
	if parsedLine == nil {
		parsedLine = shellargs.New()
	}
	if matches == nil {
		matches = NewStringList()
	}
	matches.Clear()

	return &Request{
		rawLine:            line,
		rawCursorPos:       rawCursorPos,
		parsedLine:         parsedLine,
		cursorIndex:        cursorIndex,
		cursorCharPosition: cursorCharPosition,
		page:               page,
		wordComplete:       wordComplete,
		matches:            matches,
	}
}

// RawLine returns the line being completed.
func (r *Request) RawLine() string { return r.rawLine }

// RawCursorPos returns the cursor offset in runes inside RawLine.
func (r *Request) RawCursorPos() int { return r.rawCursorPos }

// RawCursorByteOffset returns the cursor as a byte offset inside RawLine,
// the unit bash uses for COMP_POINT.
func (r *Request) RawCursorByteOffset() int {
	runes := []rune(r.rawLine)
	return len(string(runes[:clampCursor(r.rawCursorPos, len(runes))]))
}

// ParsedLine returns the parsed arguments. Providers may modify them.
func (r *Request) ParsedLine() *shellargs.Args { return r.parsedLine }

func (r *Request) CursorIndex() int     { return r.cursorIndex }
func (r *Request) SetCursorIndex(i int) { r.cursorIndex = i }

func (r *Request) CursorCharPosition() int       { return r.cursorCharPosition }
func (r *Request) SetCursorCharPosition(pos int) { r.cursorCharPosition = pos }

// Page returns the pagination hints.
func (r *Request) Page() Page { return r.page }

// WordComplete reports whether a unique match is a whole word, so a
// separator should follow it.
func (r *Request) WordComplete() bool     { return r.wordComplete }
func (r *Request) SetWordComplete(v bool) { r.wordComplete = v }

// Matches returns the sink matches are collected in.
func (r *Request) Matches() *StringList { return r.matches }

// AppendMatch adds a candidate to the matches.
func (r *Request) AppendMatch(s string) { r.matches.AppendString(s) }

// CursorArgument returns the argument the cursor is in, or "" when there is
// none.
func (r *Request) CursorArgument() string {
	return r.parsedLine.At(r.cursorIndex)
}

// CursorArgumentQuote returns the quote rune the cursor argument was opened
// with, or 0.
func (r *Request) CursorArgumentQuote() rune {
	arg, _ := r.parsedLine.Arg(r.cursorIndex)
	return arg.Quote
}

// CursorArgumentPrefix returns the part of the cursor argument before the
// cursor. This is what providers match candidates against.
func (r *Request) CursorArgumentPrefix() string {
	arg := []rune(r.CursorArgument())
	return string(arg[:clampCursor(r.cursorCharPosition, len(arg))])
}

// PreviousArgument returns the argument before the cursor argument, or "".
func (r *Request) PreviousArgument() string {
	return r.parsedLine.At(r.cursorIndex - 1)
}

// CommandName returns the first argument of the line.
func (r *Request) CommandName() string {
	return r.parsedLine.At(0)
}
