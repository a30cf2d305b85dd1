// Package completion collects TAB-completion candidates from registered producers.
package completion

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Producer returns completion candidates for the token at index within
// tokens. args are the extra arguments given at registration.
type Producer func(index int, tokens []string, args ...any) ([]string, error)

// ID identifies a registered producer
type ID int

type entry struct {
	id   ID
	fn   Producer
	args []any
}

// Registry is an ordered list of producers. It may be changed from any
// goroutine, including while a completion pass is running.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	nextID  ID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers fn and returns a handle for later removal
func (r *Registry) Add(fn Producer, args ...any) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.entries = append(r.entries, entry{id: r.nextID, fn: fn, args: args})
	return r.nextID
}

// Remove unregisters the producer with the given handle
func (r *Registry) Remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered producers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Collect queries every producer for the fragment (the input up to the
// cursor) and returns the sorted candidates, duplicates kept, that start with
// the fragment's last token. A failing producer contributes nothing; its
// error is returned alongside the candidates of the others.
func (r *Registry) Collect(fragment string) ([]string, error) {
	r.mu.Lock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	tokens := Tokenize(fragment)
	index := len(tokens) - 1
	expr := ""
	if index >= 0 {
		expr = tokens[index]
	}
	if strings.TrimSpace(fragment) == "" {
		index = 0
		expr = ""
	} else if HasTrailingWhitespace(fragment) {
		index++
		expr = ""
	}

	var all []string
	var errs *multierror.Error
	for _, e := range entries {
		got, err := call(e, index, tokens)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		all = append(all, got...)
	}

	matches := make([]string, 0, len(all))
	for _, c := range all {
		if strings.HasPrefix(c, expr) {
			matches = append(matches, c)
		}
	}
	sort.Strings(matches)

	return matches, errs.ErrorOrNil()
}

// call runs a single producer, turning a panic into an error
func call(e entry, index int, tokens []string) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("completion handler %d panicked: %v", e.id, r)
		}
	}()

	args := make([]string, len(tokens))
	copy(args, tokens)
	out, err = e.fn(index, args, e.args...)
	if err != nil {
		return nil, fmt.Errorf("completion handler %d: %w", e.id, err)
	}
	return out, nil
}

// SharedPrefix returns the longest prefix common to all candidates
func SharedPrefix(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	prefix := []rune(candidates[0])
	for _, c := range candidates[1:] {
		cr := []rune(c)
		n := 0
		for n < len(prefix) && n < len(cr) && prefix[n] == cr[n] {
			n++
		}
		prefix = prefix[:n]
		if n == 0 {
			break
		}
	}
	return string(prefix)
}
