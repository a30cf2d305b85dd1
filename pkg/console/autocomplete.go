package console

import (
	"fmt"
	"strings"

	"github.com/alantheprice/localecho/pkg/completion"
)

// autocomplete completes the token under the cursor. Without any handler
// registered TAB inserts spaces instead.
func (e *Engine) autocomplete() {
	if e.completions.Len() == 0 {
		e.insert(strings.Repeat(" ", e.tabWidth))
		return
	}

	fragment := string(e.input[:e.cursor])
	candidates, err := e.completions.Collect(fragment)
	if err != nil {
		e.log.Logf("console: autocomplete: %v", err)
	}
	token := completion.LastToken(fragment)

	switch {
	case len(candidates) == 0:
		if !completion.HasTrailingWhitespace(fragment) {
			e.insert(" ")
		}

	case len(candidates) == 1:
		e.insert(strings.TrimPrefix(candidates[0], token) + " ")

	case len(candidates) <= e.maxEntries:
		if prefix := completion.SharedPrefix(candidates); len(prefix) > len(token) {
			e.insert(strings.TrimPrefix(prefix, token))
		}
		saved := e.leavePrompt()
		e.printWide(candidates, 2)
		e.restorePrompt(saved)

	default:
		saved := e.leavePrompt()
		query := fmt.Sprintf("Display all %d possibilities? (y or n)", len(candidates))
		e.beginChar(charRequest{
			prompt: query,
			handle: func(answer string) {
				if answer == "y" || answer == "Y" {
					e.printWide(candidates, 2)
				}
				e.restorePrompt(saved)
			},
		})
	}
}
