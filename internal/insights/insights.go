package insights

import "docbud-go/internal/types"

// SpeakerStats is one speaker's share of the conversation.
type SpeakerStats struct {
	Segments    int     `json:"segments"`
	TalkSeconds float64 `json:"talk_seconds"`
	TalkRatio   float64 `json:"talk_ratio"`
}

// Summary is the per-run aggregate attached to the report.
type Summary struct {
	Segments     int                     `json:"segments"`
	Speakers     map[string]SpeakerStats `json:"speakers"`
	UnknownCount int                     `json:"unknown_segments"`
	EarlyCount   int                     `json:"early_segments"`
	TotalSeconds float64                 `json:"total_talk_seconds"`
}

// Summarize computes talk time and ratios per speaker label over the
// labeled transcript.
func Summarize(assignments []types.Assignment) Summary {
	talk := map[string]float64{}
	count := map[string]int{}
	total := 0.0
	unknown := 0
	early := 0
	for _, a := range assignments {
		d := a.End - a.Start
		if d < 0 {
			d = 0
		}
		talk[a.Speaker] += d
		count[a.Speaker]++
		total += d
		switch a.Speaker {
		case types.UnknownSpeaker:
			unknown++
		case types.EarlySpeaker:
			early++
		}
	}
	speakers := map[string]SpeakerStats{}
	for sp, sec := range talk {
		ratio := 0.0
		if total > 0 {
			ratio = sec / total
		}
		speakers[sp] = SpeakerStats{Segments: count[sp], TalkSeconds: sec, TalkRatio: ratio}
	}
	return Summary{
		Segments:     len(assignments),
		Speakers:     speakers,
		UnknownCount: unknown,
		EarlyCount:   early,
		TotalSeconds: total,
	}
}
