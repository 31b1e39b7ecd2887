package commands

import (
	"strconv"
	"strings"

	"github.com/gfax/junkyard-gateway/pkg/junkyard"
)

// Request is the parsed form of one line of free text: the card positions
// the player named, in the order they named them, and at most one target
// player. It lives only for the duration of handling a single command.
type Request struct {
	Selections []int           // 1-based card positions, duplicates permitted
	Target     *junkyard.Player
}

// ParseRequest extracts ordered card selections and an optional target
// player from free text. Pure: identical inputs always yield identical
// outputs, regardless of any session state.
//
// Tokens are matched against the roster case-insensitively (equal to, or
// contained within, a player's name or identifier; first match wins by
// roster order). The first token in scan order that matches any player sets
// the target; later name-matching tokens neither overwrite it nor count as
// selections. Every remaining token that parses as a positive base-10
// integer becomes a selection; anything else is silently dropped.
func ParseRequest(text string, roster []junkyard.Player) Request {
	var req Request
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if p := matchPlayer(token, roster); p != nil {
			if req.Target == nil {
				req.Target = p
			}
			continue
		}
		if n, err := strconv.Atoi(token); err == nil && n > 0 {
			req.Selections = append(req.Selections, n)
		}
	}
	return req
}

func matchPlayer(token string, roster []junkyard.Player) *junkyard.Player {
	for i := range roster {
		name := strings.ToLower(roster[i].Name)
		id := strings.ToLower(roster[i].ID)
		if token == name || token == id || strings.Contains(name, token) || strings.Contains(id, token) {
			return &roster[i]
		}
	}
	return nil
}
