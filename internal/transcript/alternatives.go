package transcript

import "github.com/andresuchdata/transcribe-helpers/internal/domain"

// minConfidence is the floor an alternative must exceed to be picked.
const minConfidence = 0.1

// PickBestAlternative returns the words of the alternative with the highest
// confidence. Ties keep the first one seen. The result is empty, never nil,
// when no alternative is above minConfidence.
func PickBestAlternative(alternatives []domain.Alternative) []domain.WordEntry {
	maxConfidence := minConfidence
	best := []domain.WordEntry{}

	for _, alt := range alternatives {
		if alt.Confidence > maxConfidence {
			maxConfidence = alt.Confidence
			best = alt.Words
			if best == nil {
				best = []domain.WordEntry{}
			}
		}
	}
	return best
}
