package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func deckSchema() *Schema {
	return &Schema{
		Name: "validate-test-deck",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"cards": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"front": map[string]any{"type": "string", "minLength": 1},
							"back":  map[string]any{"type": "string"},
						},
						"required": []any{"front", "back"},
					},
				},
				"level": map[string]any{"type": "string", "enum": []any{"easy", "hard"}},
			},
			"required": []any{"cards"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"title":"t","cards":[{"front":"a","back":"b"}],"level":"easy"}`, false},
		{"optional fields omitted", `{"cards":[{"front":"a","back":"b"}]}`, false},
		{"missing required", `{"title":"t"}`, true},
		{"empty array", `{"cards":[]}`, true},
		{"wrong item type", `{"cards":["a"]}`, true},
		{"empty front", `{"cards":[{"front":"","back":"b"}]}`, true},
		{"bad enum", `{"cards":[{"front":"a","back":"b"}],"level":"medium"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(deckSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("expected no error with nil schema, got %v", err)
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	a, err := compileSchema(deckSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := compileSchema(deckSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Fatal("expected the cached schema to be reused")
	}
}
