package completion

// StringList is the ordered sink completion providers append matches to.
// It keeps insertion order and never removes duplicates.
type StringList struct {
	items []string
}

// NewStringList creates a StringList holding items.
func NewStringList(items ...string) *StringList {
	list := &StringList{}
	list.AppendStrings(items...)
	return list
}

// AppendString adds s at the end of the list.
func (l *StringList) AppendString(s string) {
	l.items = append(l.items, s)
}

// AppendStrings adds every item at the end of the list, in order.
func (l *StringList) AppendStrings(items ...string) {
	l.items = append(l.items, items...)
}

// InsertAt places s at index i. Indexes past the end append.
func (l *StringList) InsertAt(i int, s string) {
	if i < 0 {
		i = 0
	}
	if i > len(l.items) {
		i = len(l.items)
	}
	l.items = append(l.items, "")
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = s
}

// DeleteAt removes the item at index i if it exists.
func (l *StringList) DeleteAt(i int) {
	if i < 0 || i >= len(l.items) {
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
}

// Clear removes all items.
func (l *StringList) Clear() {
	l.items = l.items[:0]
}

// Len returns the number of items.
func (l *StringList) Len() int {
	return len(l.items)
}

// At returns the item at index i, or "" if i is out of range.
func (l *StringList) At(i int) string {
	if i < 0 || i >= len(l.items) {
		return ""
	}
	return l.items[i]
}

// Strings returns a copy of the items.
func (l *StringList) Strings() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

// LongestCommonPrefix returns the longest prefix shared by every item.
func (l *StringList) LongestCommonPrefix() string {
	if len(l.items) == 0 {
		return ""
	}

	prefix := []rune(l.items[0])
	for _, item := range l.items[1:] {
		runes := []rune(item)
		n := 0
		for n < len(prefix) && n < len(runes) && prefix[n] == runes[n] {
			n++
		}
		prefix = prefix[:n]
		if len(prefix) == 0 {
			break
		}
	}
	return string(prefix)
}
