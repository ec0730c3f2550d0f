package rpc

// ToolDefinition describes a tool for the client
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// patternProperties is the shared schema fragment for pattern tools.
func patternProperties(withSubject bool) map[string]any {
	props := map[string]any{
		"pattern": map[string]any{
			"type":        "string",
			"description": "Regular expression source text",
		},
		"flags": map[string]any{
			"type":        "string",
			"description": "Flag letters from \"gimsuy\" (global, ignoreCase, multiline, dotAll, unicode, sticky)",
		},
	}
	if withSubject {
		props["subject"] = map[string]any{
			"type":        "string",
			"description": "Text to search",
		}
	}
	return props
}

// GetToolDefinitions returns all available tool definitions
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "compile",
			Description: "Validate a pattern without running it",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": patternProperties(false),
				"required":   []string{"pattern"},
			},
		},
		{
			Name:        "find",
			Description: "Find all matches of a pattern in a subject",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": patternProperties(true),
				"required":   []string{"pattern", "subject"},
			},
		},
		{
			Name:        "highlight",
			Description: "Return the subject split into match and gap segments, plus an escaped HTML rendering",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": patternProperties(true),
				"required":   []string{"pattern", "subject"},
			},
		},
		{
			Name:        "replace",
			Description: "Preview a substitution over the subject",
			InputSchema: map[string]any{
				"type": "object",
				"properties": func() map[string]any {
					props := patternProperties(true)
					props["replacement"] = map[string]any{
						"type":        "string",
						"description": "Replacement template ($1, ${name}, $$)",
					}
					return props
				}(),
				"required": []string{"pattern", "subject", "replacement"},
			},
		},
		{
			Name:        "save_pattern",
			Description: "Save a named pattern to the library",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"pattern": map[string]any{"type": "string"},
					"flags":   map[string]any{"type": "string"},
					"notes":   map[string]any{"type": "string"},
				},
				"required": []string{"name", "pattern"},
			},
		},
		{
			Name:        "list_patterns",
			Description: "List the saved pattern library",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
