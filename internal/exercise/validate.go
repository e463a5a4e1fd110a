package exercise

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/wselearn/wse/internal/api"
)

// schemaCache caches compiled payload schemas by variant key set.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// payloadSchema describes a task payload: question, answer and id are
// required, extra keys are optional text.
func payloadSchema(v Variant) map[string]any {
	props := map[string]any{
		v.QuestionKey: map[string]any{"type": "string"},
		v.AnswerKey:   map[string]any{"type": "string"},
		v.IDKey:       map[string]any{"type": []any{"integer", "string"}},
	}
	for _, k := range v.ExtraKeys {
		props[k] = map[string]any{"type": []any{"string", "null"}}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []any{v.QuestionKey, v.AnswerKey, v.IDKey},
	}
}

// validatePayload validates raw JSON against the variant's payload schema.
// Returns *api.ErrInvalidPayload on failure.
func validatePayload(v Variant, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &api.ErrInvalidPayload{
			Body: raw,
			Err:  fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compiledSchema(v)
	if err != nil {
		return &api.ErrInvalidPayload{
			Body: raw,
			Err:  fmt.Errorf("compile schema for %q: %w", v.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &api.ErrInvalidPayload{
			Body: raw,
			Err:  fmt.Errorf("schema validation failed: %w", err),
		}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(v Variant) (*jsonschema.Schema, error) {
	key := schemaKey(v)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://payload/%s.json", v.Name)
	if err := c.AddResource(schemaURL, payloadSchema(v)); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(key, compiled)
	return compiled, nil
}

// schemaKey identifies the key layout a schema was compiled for.
func schemaKey(v Variant) string {
	b, _ := json.Marshal([]any{v.Name, v.QuestionKey, v.AnswerKey, v.IDKey, v.ExtraKeys})
	return string(b)
}
