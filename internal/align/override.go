package align

import (
	"strings"

	"docbud-go/internal/types"
)

// responseCues open short acknowledgements that tend to come from the
// listener rather than the speaker diarization credited. Matched as prefixes.
var responseCues = []string{"yeah", "no"}

// ApplyResponseOverride flips segments opening with a response cue to the
// other speaker. It only acts when diarization found exactly two speakers;
// with any other count there is no other side to flip to.
func ApplyResponseOverride(assignments []types.Assignment, turns []types.SpeakerTurn) []types.Assignment {
	a, b, ok := speakerPair(turns)
	if !ok {
		return assignments
	}
	out := make([]types.Assignment, len(assignments))
	copy(out, assignments)
	for i := range out {
		if !opensWithCue(out[i].Text) {
			continue
		}
		switch out[i].Speaker {
		case a:
			out[i].Speaker = b
		case b:
			out[i].Speaker = a
		}
	}
	return out
}

// speakerPair returns the two distinct labels when the turns carry exactly two.
func speakerPair(turns []types.SpeakerTurn) (string, string, bool) {
	var seen []string
	for _, t := range turns {
		known := false
		for _, s := range seen {
			if s == t.Speaker {
				known = true
				break
			}
		}
		if !known {
			seen = append(seen, t.Speaker)
			if len(seen) > 2 {
				return "", "", false
			}
		}
	}
	if len(seen) != 2 {
		return "", "", false
	}
	return seen[0], seen[1], true
}

func opensWithCue(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, cue := range responseCues {
		if strings.HasPrefix(t, cue) {
			return true
		}
	}
	return false
}
