package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var stringList = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

// ClassificationSchema is the shape a classification response must have.
var ClassificationSchema = map[string]any{
	"type":     "object",
	"required": []any{"document_type", "confidence_level", "confidence_score"},
	"properties": map[string]any{
		"document_type":     map[string]any{"type": "string", "minLength": 1},
		"confidence_level":  map[string]any{"type": "string"},
		"confidence_score":  map[string]any{"type": []any{"number", "string"}},
		"key_indicators":    stringList,
		"suggested_actions": stringList,
		"reasoning":         map[string]any{"type": "string"},
		"document_purpose":  map[string]any{"type": "string"},
		"issuing_authority": map[string]any{"type": "string"},
	},
}

// ProfileSchema is the shape a synthesized claimant profile must have.
var ProfileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"holder_name":      map[string]any{"type": "string"},
		"dependents":       map[string]any{"type": []any{"array", "string", "null"}},
		"social_category":  map[string]any{"type": "string"},
		"fra_right_type":   map[string]any{"type": "string"},
		"land_use_primary": map[string]any{"type": "string"},
		"land_use_distribution": map[string]any{
			"type":                 []any{"object", "null"},
			"additionalProperties": map[string]any{"type": []any{"string", "number"}},
		},
		"water_access": map[string]any{"type": "string"},
		"location":     map[string]any{"type": []any{"object", "null"}},
	},
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
