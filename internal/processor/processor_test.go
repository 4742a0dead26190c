package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbud-go/internal/cleanup"
	"docbud-go/internal/config"
	"docbud-go/internal/types"
)

type stubCleaner struct {
	name      string
	available bool
	result    types.CleanupResult
	lastInput string
}

func (s *stubCleaner) Name() string    { return s.name }
func (s *stubCleaner) Available() bool { return s.available }
func (s *stubCleaner) Clean(_ context.Context, transcript string) types.CleanupResult {
	s.lastInput = transcript
	return s.result
}

func sampleRequest() Request {
	return Request{
		Segments: []types.TextSegment{
			{ID: 0, Start: 0, End: 2, Text: "Hello?"},
			{ID: 1, Start: 5.2, End: 9.8, Text: "Good morning, what brings you in?"},
			{ID: 2, Start: 10.1, End: 12.4, Text: "My knee hurts."},
		},
		Turns: []types.SpeakerTurn{
			{Start: 5.0, End: 10.0, Speaker: "SPEAKER_00"},
			{Start: 10.0, End: 13.0, Speaker: "SPEAKER_01"},
		},
		Digest: "abc123",
	}
}

func TestProcessSuccessfulCleanup(t *testing.T) {
	stub := &stubCleaner{name: "remote", available: true,
		result: types.CleanupResult{Text: "CLEANED", Outcome: types.CleanupSuccess}}
	proc := New(config.Default(), cleanup.NewPipeline(stub))

	res := proc.Process(context.Background(), sampleRequest())

	assert.True(t, res.Success)
	assert.Equal(t, types.CleanupSuccess, res.Outcome)
	assert.Equal(t, "CLEANED", res.FinalText)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "abc123", res.InputDigest)
	assert.GreaterOrEqual(t, res.DurationMs, int64(0))

	// the raw transcript is what the cleaner was fed
	assert.Equal(t, res.RawText, stub.lastInput)
	assert.Contains(t, res.RawText, "[00:00:00] SPEAKER_XX: Hello?")
	assert.Contains(t, res.RawText, "[00:00:05] SPEAKER_00: Good morning, what brings you in?")
	assert.Contains(t, res.RawText, "[00:00:10] SPEAKER_01: My knee hurts.")

	require.Len(t, res.Assignments, 3)
	assert.Equal(t, 3, res.Insights.Segments)
	assert.Equal(t, 1, res.Insights.EarlyCount)
}

func TestProcessAllBackendsFail(t *testing.T) {
	failing := &stubCleaner{name: "remote", available: true,
		result: types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindConnection, Detail: "refused"}}
	proc := New(config.Default(), cleanup.NewPipeline(failing, cleanup.Identity{}))

	res := proc.Process(context.Background(), sampleRequest())

	assert.False(t, res.Success)
	assert.Equal(t, types.CleanupSkipped, res.Outcome, "identity terminal leaves the chain in skipped state")
	assert.Equal(t, res.RawText, res.FinalText, "failed chain hands the raw transcript back")
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, types.KindConnection, res.Attempts[0].Kind)
}

func TestProcessEmptyChain(t *testing.T) {
	proc := New(config.Default(), cleanup.NewPipeline())

	res := proc.Process(context.Background(), sampleRequest())

	assert.False(t, res.Success)
	assert.Equal(t, types.CleanupSkipped, res.Outcome)
	assert.Equal(t, res.RawText, res.FinalText)
	assert.Empty(t, res.Attempts)
}

func TestProcessEmptyRequest(t *testing.T) {
	stub := &stubCleaner{name: "remote", available: true,
		result: types.CleanupResult{Text: "x", Outcome: types.CleanupSuccess}}
	proc := New(config.Default(), cleanup.NewPipeline(stub))

	res := proc.Process(context.Background(), Request{})

	assert.Equal(t, "", res.RawText)
	assert.Empty(t, res.Assignments)
	assert.Equal(t, 0, res.Insights.Segments)
}

func TestProcessSpeakerOverride(t *testing.T) {
	req := Request{
		Segments: []types.TextSegment{
			{ID: 0, Start: 0, End: 4, Text: "Does it hurt when you bend it?"},
			{ID: 1, Start: 4, End: 6, Text: "Yeah, a lot."},
		},
		Turns: []types.SpeakerTurn{
			{Start: 0, End: 6, Speaker: "SPEAKER_00"},
			{Start: 6, End: 9, Speaker: "SPEAKER_01"},
		},
	}

	run := func(override bool) Result {
		cfg := config.Default()
		cfg.SpeakerOverride = override
		stub := &stubCleaner{name: "remote", available: true,
			result: types.CleanupResult{Text: "x", Outcome: types.CleanupSuccess}}
		return New(cfg, cleanup.NewPipeline(stub)).Process(context.Background(), req)
	}

	plain := run(false)
	require.Len(t, plain.Assignments, 2)
	assert.Equal(t, "SPEAKER_00", plain.Assignments[1].Speaker)

	flipped := run(true)
	require.Len(t, flipped.Assignments, 2)
	assert.Equal(t, "SPEAKER_01", flipped.Assignments[1].Speaker, "yeah opener moves to the other speaker")
	assert.True(t, strings.Contains(flipped.RawText, "[00:00:04] SPEAKER_01: Yeah, a lot."))
}

func TestChainOutcome(t *testing.T) {
	assert.Equal(t, types.CleanupSkipped, chainOutcome(nil))
	assert.Equal(t, types.CleanupSuccess, chainOutcome([]types.Attempt{
		{Backend: "remote", Outcome: types.CleanupError, Kind: types.KindTimeout},
		{Backend: "local", Outcome: types.CleanupSuccess},
	}))
	assert.Equal(t, types.CleanupUnstructured, chainOutcome([]types.Attempt{
		{Backend: "local", Outcome: types.CleanupUnstructured},
	}))
}
