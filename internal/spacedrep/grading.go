package spacedrep

import "fmt"

// Grading converts a timed answer into a recall-quality grade.
// Thresholds are in milliseconds.
type Grading struct {
	// PerfectMs: correct answers faster than this grade 5.
	PerfectMs int64
	// GoodMs: correct answers faster than this grade 4.
	GoodMs int64
	// HardMs: correct answers faster than this grade 3. Slower correct
	// answers also grade 3; a correct answer never grades below 3.
	HardMs int64
	// QuickWrongMs: wrong answers faster than this grade 1 (recognized but
	// wrong), slower wrong answers grade 0.
	QuickWrongMs int64
}

// DefaultGrading returns the standard response-time thresholds.
func DefaultGrading() Grading {
	return Grading{
		PerfectMs:    1500,
		GoodMs:       3000,
		HardMs:       5000,
		QuickWrongMs: 2000,
	}
}

// Validate checks that thresholds are positive and ordered.
func (g Grading) Validate() error {
	if g.PerfectMs <= 0 || g.GoodMs <= 0 || g.HardMs <= 0 || g.QuickWrongMs <= 0 {
		return fmt.Errorf("grading thresholds must be positive")
	}
	if g.PerfectMs >= g.GoodMs || g.GoodMs > g.HardMs {
		return fmt.Errorf("grading thresholds out of order: perfect=%d good=%d hard=%d",
			g.PerfectMs, g.GoodMs, g.HardMs)
	}
	return nil
}

// QualityFromResponse maps a response time and correctness to a grade.
func (g Grading) QualityFromResponse(responseMs int64, correct bool) Quality {
	if !correct {
		if responseMs < g.QuickWrongMs {
			return QualityWrongRecognized
		}
		return QualityBlackout
	}
	switch {
	case responseMs < g.PerfectMs:
		return QualityPerfect
	case responseMs < g.GoodMs:
		return QualityCorrectHesitation
	default:
		return QualityCorrectDifficult
	}
}
