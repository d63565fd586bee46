package spacedrep

import (
	"errors"
	"fmt"
)

// Quality is a recall-quality grade in the range 0..5.
type Quality int

const (
	QualityBlackout          Quality = 0 // complete blackout
	QualityWrongRecognized   Quality = 1 // wrong, but the answer was recognized
	QualityWrongFamiliar     Quality = 2 // wrong, but the answer felt familiar
	QualityCorrectDifficult  Quality = 3 // correct with serious difficulty
	QualityCorrectHesitation Quality = 4 // correct after hesitation
	QualityPerfect           Quality = 5 // perfect recall
)

// PassThreshold is the lowest grade that counts as a successful recall.
const PassThreshold = QualityCorrectDifficult

// ErrQualityOutOfRange is returned for grades outside 0..5.
var ErrQualityOutOfRange = errors.New("recall quality out of range 0..5")

// ParseQuality validates a raw grade. Out-of-range values are rejected,
// never clamped.
func ParseQuality(v int) (Quality, error) {
	q := Quality(v)
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrQualityOutOfRange, v)
	}
	return q, nil
}

// Valid reports whether q is within 0..5.
func (q Quality) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Passed reports whether q counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= PassThreshold
}
