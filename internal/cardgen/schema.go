package cardgen

import "github.com/abhisek/studyhall/internal/llm"

// DeckSchema is the structured output requested from the model.
var DeckSchema = &llm.Schema{
	Name:        "flashcard-deck",
	Description: "A titled set of question/answer flashcards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "A short title for the deck",
			},
			"cards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The prompt shown to the learner",
						},
						"back": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The expected answer, as short as possible",
						},
					},
					"required":             []any{"front", "back"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "cards"},
		"additionalProperties": false,
	},
}
