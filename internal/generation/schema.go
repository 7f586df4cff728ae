package generation

// JSON schemas attached to calls as Call.Schema. Providers with constrained
// decoding use minItems/maxItems to pin exact counts.

func optionsQuestionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"id", "question", "options", "answer", "explanation"},
		"properties": map[string]any{
			"id":       map[string]any{"type": "integer"},
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":     "array",
				"minItems": len(OptionLabels),
				"maxItems": len(OptionLabels),
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"label", "text"},
					"properties": map[string]any{
						"label": map[string]any{"type": "string", "enum": OptionLabels},
						"text":  map[string]any{"type": "string"},
					},
				},
			},
			"answer":      map[string]any{"type": "string", "enum": OptionLabels},
			"explanation": map[string]any{"type": "string"},
		},
	}
}

func theoryQuestionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"id", "question", "answer_text", "explanation"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "integer"},
			"question":    map[string]any{"type": "string"},
			"answer_text": map[string]any{"type": "string"},
			"explanation": map[string]any{"type": "string"},
		},
	}
}

func quizSchema(count int, mode QuizMode) map[string]any {
	var item map[string]any
	switch mode {
	case QuizModeTheory:
		item = theoryQuestionSchema()
	case QuizModeBoth:
		item = map[string]any{"anyOf": []any{optionsQuestionSchema(), theoryQuestionSchema()}}
	default:
		item = optionsQuestionSchema()
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "questions"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":     "array",
				"minItems": count,
				"maxItems": count,
				"items":    item,
			},
		},
	}
}

func flashcardsSchema(count int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "cards"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"cards": map[string]any{
				"type":     "array",
				"minItems": count,
				"maxItems": count,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"id", "front", "back"},
					"properties": map[string]any{
						"id":    map[string]any{"type": "integer"},
						"front": map[string]any{"type": "string"},
						"back":  map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func mindmapSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "root"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"root":  map[string]any{"$ref": "#/definitions/node"},
		},
		"definitions": map[string]any{
			"node": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"id", "label", "children"},
				"properties": map[string]any{
					"id":    map[string]any{"type": "string"},
					"label": map[string]any{"type": "string"},
					"children": map[string]any{
						"type":  "array",
						"items": map[string]any{"$ref": "#/definitions/node"},
					},
				},
			},
		},
	}
}

func gradeSchema(count int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"grades"},
		"properties": map[string]any{
			"grades": map[string]any{
				"type":     "array",
				"minItems": count,
				"maxItems": count,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"id", "score"},
					"properties": map[string]any{
						"id":    map[string]any{"type": "integer"},
						"score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					},
				},
			},
		},
	}
}
