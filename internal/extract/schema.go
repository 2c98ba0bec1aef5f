package extract

// BuildPageTableSchema returns the JSON-Schema of one extractor page fragment.
// Cells may be null; they decode as empty strings.
func BuildPageTableSchema() map[string]any {
	cell := map[string]any{"type": []any{"string", "null"}}
	return map[string]any{
		"type":     "object",
		"required": []any{"page_number", "headers", "rows"},
		"properties": map[string]any{
			"page_number": map[string]any{"type": "integer", "minimum": 0},
			"headers":     map[string]any{"type": "array", "items": cell},
			"rows": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "array", "items": cell},
			},
			"bbox": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "number"},
				"minItems": 4,
				"maxItems": 4,
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"table_type": map[string]any{"type": []any{"string", "null"}},
		},
	}
}

// BuildDocumentSchema accepts either {"document_id", "source", "pages"} or a bare array of pages.
func BuildDocumentSchema() map[string]any {
	pages := map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/page"}}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs":   map[string]any{"page": BuildPageTableSchema()},
		"oneOf": []any{
			pages,
			map[string]any{
				"type":     "object",
				"required": []any{"pages"},
				"properties": map[string]any{
					"document_id": map[string]any{"type": "string"},
					"source":      map[string]any{"type": "string"},
					"pages":       pages,
				},
			},
		},
	}
}
