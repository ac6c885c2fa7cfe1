// Package shellargs splits a command line into shell-style arguments.
//
// Parsing never fails: an unterminated quote runs to the end of the text, so
// parsing any prefix of a line yields the argument that is in progress at the
// end of that prefix as its last element.
package shellargs

import "strings"

// Characters that a backslash escapes inside a double-quoted argument.
const doubleQuoteEscapes = "\"\\`$"

// Arg is a single parsed argument.
type Arg struct {
	Value string
	// Quote is the quote rune the argument was opened with, or 0.
	Quote rune
}

// Args is an ordered list of parsed arguments.
type Args struct {
	entries []Arg
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}

// Parse splits text into arguments.
func Parse(text string) *Args {
	args := &Args{}
	runes := []rune(text)

	i := 0
	for {
		for i < len(runes) && isSeparator(runes[i]) {
			i++
		}
		if i >= len(runes) {
			break
		}

		arg := Arg{}
		if isQuote(runes[i]) {
			arg.Quote = runes[i]
		}
		var value strings.Builder
		i = scanArg(runes, i, &value)
		arg.Value = value.String()
		args.entries = append(args.entries, arg)
	}

	return args
}

// scanArg consumes one argument starting at i and returns the index of the
// first rune after it.
func scanArg(runes []rune, i int, value *strings.Builder) int {
	var quote rune
	for i < len(runes) {
		r := runes[i]
		switch {
		case quote == 0 && isSeparator(r):
			return i
		case quote == 0 && isQuote(r):
			quote = r
			i++
		case quote != 0 && r == quote:
			quote = 0
			i++
		case r == '\\' && quote == 0:
			if i+1 < len(runes) {
				value.WriteRune(runes[i+1])
				i += 2
			} else {
				// trailing backslash is kept as typed
				value.WriteRune(r)
				i++
			}
		case r == '\\' && quote == '"':
			if i+1 < len(runes) && strings.ContainsRune(doubleQuoteEscapes, runes[i+1]) {
				value.WriteRune(runes[i+1])
				i += 2
			} else {
				value.WriteRune(r)
				i++
			}
		default:
			value.WriteRune(r)
			i++
		}
	}
	return i
}

// New builds Args from plain values.
func New(values ...string) *Args {
	args := &Args{}
	for _, v := range values {
		args.Append(v, 0)
	}
	return args
}

// Len returns the number of arguments.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// At returns the value of the argument at index i, or "" if i is out of range.
func (a *Args) At(i int) string {
	if i < 0 || i >= a.Len() {
		return ""
	}
	return a.entries[i].Value
}

// Arg returns the argument at index i and whether it exists.
func (a *Args) Arg(i int) (Arg, bool) {
	if i < 0 || i >= a.Len() {
		return Arg{}, false
	}
	return a.entries[i], true
}

// Strings returns a copy of the argument values.
func (a *Args) Strings() []string {
	values := make([]string, a.Len())
	for i := range values {
		values[i] = a.entries[i].Value
	}
	return values
}

// Insert places a new argument at index i. Indexes past the end append.
func (a *Args) Insert(i int, value string, quote rune) {
	if i < 0 {
		i = 0
	}
	if i > len(a.entries) {
		i = len(a.entries)
	}
	a.entries = append(a.entries, Arg{})
	copy(a.entries[i+1:], a.entries[i:])
	a.entries[i] = Arg{Value: value, Quote: quote}
}

// Append adds an argument at the end.
func (a *Args) Append(value string, quote rune) {
	a.entries = append(a.entries, Arg{Value: value, Quote: quote})
}

// Replace overwrites the argument at index i. It reports false if i is out of
// range.
func (a *Args) Replace(i int, value string, quote rune) bool {
	if i < 0 || i >= a.Len() {
		return false
	}
	a.entries[i] = Arg{Value: value, Quote: quote}
	return true
}

// Shift removes the first argument.
func (a *Args) Shift() {
	if a.Len() == 0 {
		return
	}
	a.entries = a.entries[1:]
}

// Clone returns an independent copy.
func (a *Args) Clone() *Args {
	clone := &Args{entries: make([]Arg, a.Len())}
	copy(clone.entries, a.entries)
	return clone
}

// CommandString joins the arguments back into a line that parses to the same
// values.
func (a *Args) CommandString() string {
	parts := make([]string, 0, a.Len())
	for _, arg := range a.entries {
		switch {
		case arg.Quote != 0:
			parts = append(parts, string(arg.Quote)+Escape(arg.Value, arg.Quote)+string(arg.Quote))
		case arg.Value == "":
			parts = append(parts, `""`)
		default:
			parts = append(parts, Escape(arg.Value, 0))
		}
	}
	return strings.Join(parts, " ")
}

// Escape makes s safe to insert into an argument that was opened with quote.
// A quote of 0 means the argument is unquoted.
func Escape(s string, quote rune) string {
	var b strings.Builder
	for _, r := range s {
		switch quote {
		case 0:
			if isSeparator(r) || isQuote(r) || r == '\\' {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		case '"':
			if strings.ContainsRune(doubleQuoteEscapes, r) {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		default:
			// no escapes inside single quotes or backticks: close, escape, reopen
			if r == quote {
				b.WriteRune(quote)
				b.WriteRune('\\')
				b.WriteRune(quote)
				b.WriteRune(quote)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
