package study

import "github.com/abhisek/studyhall/internal/review"

// answerSavedMsg carries the result of submitting an answer.
type answerSavedMsg struct {
	Outcome review.Outcome
	Err     error
}
