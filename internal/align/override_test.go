package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbud-go/internal/types"
)

func twoSpeakerTurns() []types.SpeakerTurn {
	return []types.SpeakerTurn{
		turn(0, 5, "SPEAKER_00"),
		turn(5, 10, "SPEAKER_01"),
		turn(10, 15, "SPEAKER_00"),
	}
}

func TestApplyResponseOverrideFlipsCues(t *testing.T) {
	assignments := []types.Assignment{
		{SegmentID: 0, Speaker: "SPEAKER_00", Text: "How are you feeling today?"},
		{SegmentID: 1, Speaker: "SPEAKER_00", Text: "Yeah, much better."},
		{SegmentID: 2, Speaker: "SPEAKER_01", Text: "No problem at all."},
		{SegmentID: 3, Speaker: "SPEAKER_01", Text: "Take these twice a day."},
	}

	got := ApplyResponseOverride(assignments, twoSpeakerTurns())
	require.Len(t, got, 4)
	assert.Equal(t, "SPEAKER_00", got[0].Speaker)
	assert.Equal(t, "SPEAKER_01", got[1].Speaker, "yeah opener flips to the other side")
	assert.Equal(t, "SPEAKER_00", got[2].Speaker, "no opener flips to the other side")
	assert.Equal(t, "SPEAKER_01", got[3].Speaker)

	// input slice is left alone
	assert.Equal(t, "SPEAKER_00", assignments[1].Speaker)
}

func TestApplyResponseOverrideCaseAndSpace(t *testing.T) {
	assignments := []types.Assignment{
		{SegmentID: 0, Speaker: "SPEAKER_00", Text: "  YEAH okay."},
	}
	got := ApplyResponseOverride(assignments, twoSpeakerTurns())
	assert.Equal(t, "SPEAKER_01", got[0].Speaker)
}

func TestApplyResponseOverrideNeedsExactlyTwoSpeakers(t *testing.T) {
	assignments := []types.Assignment{
		{SegmentID: 0, Speaker: "SPEAKER_00", Text: "Yeah."},
	}

	t.Run("one speaker", func(t *testing.T) {
		turns := []types.SpeakerTurn{turn(0, 10, "SPEAKER_00")}
		got := ApplyResponseOverride(assignments, turns)
		assert.Equal(t, "SPEAKER_00", got[0].Speaker)
	})

	t.Run("three speakers", func(t *testing.T) {
		turns := []types.SpeakerTurn{
			turn(0, 5, "SPEAKER_00"),
			turn(5, 10, "SPEAKER_01"),
			turn(10, 15, "SPEAKER_02"),
		}
		got := ApplyResponseOverride(assignments, turns)
		assert.Equal(t, "SPEAKER_00", got[0].Speaker)
	})

	t.Run("no turns", func(t *testing.T) {
		got := ApplyResponseOverride(assignments, nil)
		assert.Equal(t, "SPEAKER_00", got[0].Speaker)
	})
}

func TestApplyResponseOverrideLeavesSentinelsAlone(t *testing.T) {
	assignments := []types.Assignment{
		{SegmentID: 0, Speaker: types.UnknownSpeaker, Text: "Yeah, who said this?"},
		{SegmentID: 1, Speaker: types.EarlySpeaker, Text: "No idea."},
	}
	got := ApplyResponseOverride(assignments, twoSpeakerTurns())
	assert.Equal(t, types.UnknownSpeaker, got[0].Speaker)
	assert.Equal(t, types.EarlySpeaker, got[1].Speaker)
}
