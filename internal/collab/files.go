package collab

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"lukechampine.com/blake3"

	"docbud-go/internal/types"
)

// chunk mirrors one recognizer entry in the collaborator artifact:
// {"timestamp": [start, end], "text": "..."}. The recognizer sometimes leaves
// the final end timestamp null; that collapses to the start instant.
type chunk struct {
	Timestamp []*float64 `json:"timestamp"`
	Text      string     `json:"text"`
}

// turn mirrors one diarization entry:
// {"start": 0.49, "end": 2.81, "speaker": "SPEAKER_00"}.
type turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// LoadSegments reads a recognizer chunk artifact from disk.
func LoadSegments(path string) ([]types.TextSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	return ParseSegments(data)
}

// ParseSegments decodes and normalizes recognizer chunks: ids by position,
// trimmed text, ordered by start.
func ParseSegments(data []byte) ([]types.TextSegment, error) {
	var chunks []chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	segments := make([]types.TextSegment, 0, len(chunks))
	for i, c := range chunks {
		if len(c.Timestamp) < 2 || c.Timestamp[0] == nil {
			return nil, fmt.Errorf("segment %d: missing timestamp", i)
		}
		start := *c.Timestamp[0]
		end := start
		if c.Timestamp[1] != nil {
			end = *c.Timestamp[1]
		}
		if end < start {
			return nil, fmt.Errorf("segment %d: end %.3f before start %.3f", i, end, start)
		}
		segments = append(segments, types.TextSegment{
			ID:    i,
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(c.Text),
		})
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	return segments, nil
}

// LoadTurns reads a diarization artifact from disk.
func LoadTurns(path string) ([]types.SpeakerTurn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}
	return ParseTurns(data)
}

// ParseTurns decodes diarization turns. Interval boundaries are kept exactly
// as the collaborator produced them, reordered by start only.
func ParseTurns(data []byte) ([]types.SpeakerTurn, error) {
	var raw []turn
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	turns := make([]types.SpeakerTurn, 0, len(raw))
	for i, t := range raw {
		if t.Speaker == "" {
			return nil, fmt.Errorf("turn %d: missing speaker", i)
		}
		if t.End < t.Start {
			return nil, fmt.Errorf("turn %d: end %.3f before start %.3f", i, t.End, t.Start)
		}
		turns = append(turns, types.SpeakerTurn{Start: t.Start, End: t.End, Speaker: t.Speaker})
	}
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}

// Digest fingerprints the exact input artifacts for the run report.
func Digest(paths ...string) (string, error) {
	h := blake3.New(32, nil)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("digest %s: %w", p, err)
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes fingerprints an already fetched artifact.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
