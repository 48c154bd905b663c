package schema

// InvoiceJSONSchema returns the JSON-Schema (draft 2020-12 subset) for an
// extracted invoice, as a generic map. Every field is optional: extraction
// must be able to represent "not found" as absent rather than a sentinel.
func InvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoice_number": map[string]any{"type": "string"},
			"invoice_date":   map[string]any{"type": "string"},
			"vendor_name":    map[string]any{"type": "string"},
			"customer_name":  map[string]any{"type": "string"},
			"total_amount":   map[string]any{"type": "number"},
			"currency":       map[string]any{"type": "string"},
			"line_items": map[string]any{
				"type":  "array",
				"items": lineItemSchema(),
			},
		},
	}
}

func lineItemSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "number"},
			"unit_price":  map[string]any{"type": "number"},
			"total_price": map[string]any{"type": "number"},
		},
	}
}

// GeminiResponseSchema returns the invoice schema in the OpenAPI-flavored
// shape the Gemini generationConfig.responseSchema field accepts. Gemini
// does not understand additionalProperties, so all fields are declared
// nullable instead.
func GeminiResponseSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string", "nullable": true} }
	num := func() map[string]any { return map[string]any{"type": "number", "nullable": true} }

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoice_number": str(),
			"invoice_date":   str(),
			"vendor_name":    str(),
			"customer_name":  str(),
			"total_amount":   num(),
			"currency":       str(),
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": str(),
						"quantity":    num(),
						"unit_price":  num(),
						"total_price": num(),
					},
				},
			},
		},
	}
}
