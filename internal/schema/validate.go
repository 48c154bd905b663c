package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"factura/internal/domain"
)

// Validate is the single chokepoint between the raw extraction payload and
// typed invoices: it coerces the payload, checks it against the invoice
// schema, and unmarshals it. Anything that cannot be made to conform is
// rejected with a validation DocumentFailure naming the offending field;
// downstream consumers never see an untyped blob.
func Validate(filename string, raw []byte) (*domain.Invoice, error) {
	cleaned, err := coerce(raw)
	if err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureValidation, err)
	}

	if err := validateAgainstSchema(InvoiceJSONSchema(), cleaned); err != nil {
		return nil, &domain.DocumentFailure{
			Filename: filename,
			Kind:     domain.FailureValidation,
			Cause:    describeViolation(err),
		}
	}

	var inv domain.Invoice
	if err := json.Unmarshal(cleaned, &inv); err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureValidation, err)
	}
	if inv.LineItems == nil {
		inv.LineItems = []domain.LineItem{}
	}
	return &inv, nil
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile("invoice.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return s.Validate(v)
}

// describeViolation renders a schema violation as "field <path>: <message>"
// using the deepest cause so the failing field is named.
func describeViolation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("field %q: %s", loc, leaf.Message)
}
