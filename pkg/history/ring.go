// Package history provides the bounded command history used by the echo engine.
package history

import "strings"

// Ring is a fixed-capacity log of accepted input lines with a movable
// recall cursor. A cursor equal to Len() means "not recalling".
type Ring struct {
	size    int
	entries []string
	cursor  int
}

// NewRing creates a new history ring holding at most size entries
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{
		size:    size,
		entries: make([]string, 0, size),
	}
}

// Push appends an entry, evicting the oldest one once capacity is exceeded.
// Blank lines and repeats of the most recent entry are ignored.
// The recall cursor is always reset. It reports whether entry was stored.
func (r *Ring) Push(entry string) bool {
	defer r.Rewind()

	if strings.TrimSpace(entry) == "" {
		return false
	}
	if n := len(r.entries); n > 0 && r.entries[n-1] == entry {
		return false
	}

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.size {
		r.entries = r.entries[len(r.entries)-r.size:]
	}
	return true
}

// Rewind moves the recall cursor back to "not recalling"
func (r *Ring) Rewind() {
	r.cursor = len(r.entries)
}

// Previous steps toward the oldest entry and returns it. Once the cursor is
// clamped at the oldest entry it keeps returning that entry.
func (r *Ring) Previous() (string, bool) {
	if r.cursor > 0 {
		r.cursor--
	}
	return r.at(r.cursor)
}

// Next steps toward "not recalling" and returns the entry there; ok is
// false once the cursor is past the newest entry.
func (r *Ring) Next() (string, bool) {
	if r.cursor < len(r.entries) {
		r.cursor++
	}
	return r.at(r.cursor)
}

func (r *Ring) at(idx int) (string, bool) {
	if idx < 0 || idx >= len(r.entries) {
		return "", false
	}
	return r.entries[idx], true
}

// Entries returns a copy of the stored entries, oldest first
func (r *Ring) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of stored entries
func (r *Ring) Len() int { return len(r.entries) }

// Cursor returns the recall cursor position
func (r *Ring) Cursor() int { return r.cursor }

// Capacity returns the maximum number of entries kept
func (r *Ring) Capacity() int { return r.size }
