package types

// Speaker labels the aligner reserves for segments no diarization turn claims.
const (
	UnknownSpeaker = "UNKNOWN_SPEAKER"
	EarlySpeaker   = "SPEAKER_XX"
)

// TextSegment is one recognized chunk of speech from the transcription
// collaborator. Times are seconds from the start of the recording.
type TextSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerTurn is one diarization interval credited to a single speaker.
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Assignment binds one segment to one speaker label.
type Assignment struct {
	SegmentID int     `json:"segment_id"`
	Speaker   string  `json:"speaker"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}
