package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var headerTextFields = []string{"invoice_number", "invoice_date", "vendor_name", "customer_name", "currency"}

var itemTextFields = []string{"description"}

var itemNumberFields = []string{"quantity", "unit_price", "total_price"}

// coerce normalizes the raw LLM payload before schema validation:
//   - numeric-looking strings for amounts and quantities become numbers
//   - null and empty-string optionals are removed, so absent stays absent
//   - unknown keys are dropped to satisfy additionalProperties: false
//   - a null line_items becomes an empty array
//
// It only touches values it can safely fix; genuinely malformed shapes
// (e.g. line_items not an array) are left for the validator to reject.
func coerce(raw []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	for _, k := range headerTextFields {
		coerceText(m, k)
	}
	coerceNumber(m, "total_amount")

	switch items := m["line_items"].(type) {
	case nil:
		m["line_items"] = []any{}
	case []any:
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range itemTextFields {
				coerceText(item, k)
			}
			for _, k := range itemNumberFields {
				coerceNumber(item, k)
			}
			dropUnknown(item, append(itemTextFields, itemNumberFields...))
		}
	}

	known := append(append([]string{}, headerTextFields...), "total_amount", "line_items")
	dropUnknown(m, known)

	return json.Marshal(m)
}

func coerceText(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			delete(m, key)
		} else {
			m[key] = s
		}
	case nil:
		delete(m, key)
	}
}

func coerceNumber(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case nil:
		delete(m, key)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		s = strings.TrimPrefix(s, "$")
		if s == "" {
			delete(m, key)
			return
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			m[key] = f
		}
		// not parseable: leave as-is for the validator to reject
	}
}

func dropUnknown(m map[string]any, allowed []string) {
	set := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}
	for k := range m {
		if _, ok := set[k]; !ok {
			delete(m, k)
		}
	}
}
