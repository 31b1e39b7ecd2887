package commands

import (
	"reflect"
	"testing"

	"github.com/gfax/junkyard-gateway/pkg/junkyard"
)

func testRoster() []junkyard.Player {
	return []junkyard.Player{
		{ID: "u-alice", Name: "Alice"},
		{ID: "u-bob", Name: "Bob"},
		{ID: "u-carol", Name: "Carol"},
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		selections []int
		targetID   string
	}{
		{
			name:       "numbers only, order preserved",
			text:       "play 3 2 1",
			selections: []int{3, 2, 1},
		},
		{
			name:       "name after numbers",
			text:       "play 2 bob",
			selections: []int{2},
			targetID:   "u-bob",
		},
		{
			name:       "name before numbers",
			text:       "play bob 2",
			selections: []int{2},
			targetID:   "u-bob",
		},
		{
			name:       "case insensitive name",
			text:       "play 1 BOB",
			selections: []int{1},
			targetID:   "u-bob",
		},
		{
			name:       "partial name matches",
			text:       "play 1 car",
			selections: []int{1},
			targetID:   "u-carol",
		},
		{
			name:       "identifier matches",
			text:       "play 1 u-bob",
			selections: []int{1},
			targetID:   "u-bob",
		},
		{
			name:       "second name token does not overwrite target",
			text:       "play bob 2 carol",
			selections: []int{2},
			targetID:   "u-bob",
		},
		{
			name:       "duplicates permitted",
			text:       "discard 2 2 2",
			selections: []int{2, 2, 2},
		},
		{
			name: "junk tokens dropped",
			text: "play the one with the tire",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ParseRequest(tt.text, testRoster())
			if !reflect.DeepEqual(req.Selections, tt.selections) {
				t.Errorf("selections = %v, want %v", req.Selections, tt.selections)
			}
			switch {
			case tt.targetID == "" && req.Target != nil:
				t.Errorf("target = %v, want nil", req.Target)
			case tt.targetID != "" && req.Target == nil:
				t.Errorf("target = nil, want %s", tt.targetID)
			case tt.targetID != "" && req.Target.ID != tt.targetID:
				t.Errorf("target = %s, want %s", req.Target.ID, tt.targetID)
			}
		})
	}
}

// An ambiguous token that matches more than one roster entry resolves by
// roster order, not token order.
func TestParseRequestRosterOrderWins(t *testing.T) {
	roster := []junkyard.Player{
		{ID: "u-1", Name: "Robby"},
		{ID: "u-2", Name: "Rob"},
	}
	req := ParseRequest("play rob 1", roster)
	if req.Target == nil || req.Target.ID != "u-1" {
		t.Fatalf("target = %v, want roster-first u-1", req.Target)
	}
}

func TestParseRequestIsPure(t *testing.T) {
	roster := testRoster()
	first := ParseRequest("play 2 bob 3", roster)
	second := ParseRequest("play 2 bob 3", roster)
	if !reflect.DeepEqual(first.Selections, second.Selections) {
		t.Errorf("selections differ across identical calls: %v vs %v", first.Selections, second.Selections)
	}
	if first.Target.ID != second.Target.ID {
		t.Errorf("target differs across identical calls")
	}
}
