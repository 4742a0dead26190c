package align

import (
	"math"

	"docbud-go/internal/types"
)

// Align gives every recognized segment exactly one speaker label. It is a
// pure function of its inputs: same segments and turns, same assignments.
//
// A segment binds to the first rule that claims it:
//  1. a turn fully containing the segment
//  2. the turn with the largest overlap, earliest turn start on ties
//  3. a turn containing the segment's start instant
//  4. speech ending at or before the first turn starts goes to SPEAKER_XX
//     and is placed at the front of the transcript
//  5. UNKNOWN_SPEAKER
func Align(segments []types.TextSegment, turns []types.SpeakerTurn) []types.Assignment {
	if len(segments) == 0 {
		return nil
	}

	diarStart, haveTurns := firstTurnStart(turns)

	var early, rest []types.Assignment
	for _, seg := range segments {
		if speaker, ok := matchTurn(seg, turns); ok {
			rest = append(rest, assignment(seg, speaker))
			continue
		}
		if haveTurns && seg.End <= diarStart {
			early = append(early, assignment(seg, types.EarlySpeaker))
			continue
		}
		rest = append(rest, assignment(seg, types.UnknownSpeaker))
	}
	return append(early, rest...)
}

// matchTurn resolves the speaker for one segment, or reports that no turn
// claims it.
func matchTurn(seg types.TextSegment, turns []types.SpeakerTurn) (string, bool) {
	for _, t := range turns {
		if t.Start <= seg.Start && seg.End <= t.End {
			return t.Speaker, true
		}
	}

	bestIdx := -1
	bestOverlap := 0.0
	for i, t := range turns {
		o := overlap(seg.Start, seg.End, t.Start, t.End)
		if o <= 0 {
			continue
		}
		if bestIdx == -1 || o > bestOverlap || (o == bestOverlap && t.Start < turns[bestIdx].Start) {
			bestIdx = i
			bestOverlap = o
		}
	}
	if bestIdx >= 0 {
		return turns[bestIdx].Speaker, true
	}

	for _, t := range turns {
		if t.Start <= seg.Start && seg.Start < t.End {
			return t.Speaker, true
		}
	}
	return "", false
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	o := math.Min(aEnd, bEnd) - math.Max(aStart, bStart)
	if o < 0 {
		return 0
	}
	return o
}

// firstTurnStart is the earliest diarized instant; segments ending before it
// were spoken before diarization picked anyone up.
func firstTurnStart(turns []types.SpeakerTurn) (float64, bool) {
	if len(turns) == 0 {
		return 0, false
	}
	first := turns[0].Start
	for _, t := range turns[1:] {
		if t.Start < first {
			first = t.Start
		}
	}
	return first, true
}

func assignment(seg types.TextSegment, speaker string) types.Assignment {
	return types.Assignment{
		SegmentID: seg.ID,
		Speaker:   speaker,
		Start:     seg.Start,
		End:       seg.End,
		Text:      seg.Text,
	}
}
