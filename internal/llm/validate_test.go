package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func classifySchema() *Schema {
	return &Schema{
		Name:        "weak-concepts-test",
		Description: "weak concept classification",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"detailed_feedback": map[string]any{"type": "string"},
				"weak_concept_tags": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"detailed_feedback", "weak_concept_tags"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"detailed_feedback":"review loops","weak_concept_tags":["loops"]}`)
	if err := validateResponse(classifySchema(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_NotJSON(t *testing.T) {
	err := validateResponse(classifySchema(), json.RawMessage(`sure, here you go:`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_MissingField(t *testing.T) {
	err := validateResponse(classifySchema(), json.RawMessage(`{"weak_concept_tags":[]}`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_NilSchemaSkips(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should not validate: %v", err)
	}
}
