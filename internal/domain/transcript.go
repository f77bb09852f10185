package domain

// WordEntry is a single recognized word with its offsets in the audio.
type WordEntry struct {
	Word      string `json:"word"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Alternative is one candidate transcription returned by a speech-to-text service.
type Alternative struct {
	Transcript string      `json:"transcript,omitempty"`
	Confidence float64     `json:"confidence"`
	Words      []WordEntry `json:"words"`
}
