package llm

// BuildCardJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the provider as a structured output
// constraint and also use it locally to validate.
func BuildCardJSONSchema() map[string]any {
	props := map[string]any{
		"name":       map[string]any{"type": "string"},
		"title":      map[string]any{"type": "string"},
		"company":    map[string]any{"type": "string"},
		"email":      map[string]any{"type": "string", "pattern": `^[^\s@]+@[^\s@]+\.[^\s@]+$`},
		"phone":      map[string]any{"type": "string", "pattern": `^[+\d][\d\s().-]{5,24}$`},
		"website":    map[string]any{"type": "string", "pattern": `^[^@\s]+$`},
		"address":    map[string]any{"type": "string"},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	// every field is independently optional: a mostly-empty card is a valid
	// answer, never an error
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{},
	}
}
