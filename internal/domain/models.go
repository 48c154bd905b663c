package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one purchased item on an invoice. All fields are optional:
// extraction may fail to locate any of them, and absent is distinct from zero.
type LineItem struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalPrice  *float64 `json:"total_price"`
}

// Invoice is the structured data extracted from a single document.
// Every header field is optional; the extractor is instructed to use null
// for fields it cannot find rather than fabricating values.
type Invoice struct {
	InvoiceNumber *string    `json:"invoice_number"`
	InvoiceDate   *string    `json:"invoice_date"`
	VendorName    *string    `json:"vendor_name"`
	CustomerName  *string    `json:"customer_name"`
	TotalAmount   *float64   `json:"total_amount"`
	Currency      *string    `json:"currency"`
	LineItems     []LineItem `json:"line_items"`
}

// Row is one flattened export row: the parent invoice's header fields
// repeated alongside a single line item's fields.
type Row struct {
	Filename      string   `json:"filename"`
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	VendorName    *string  `json:"vendor_name"`
	CustomerName  *string  `json:"customer_name"`
	Currency      *string  `json:"currency"`
	TotalAmount   *float64 `json:"total_amount"`
	Description   *string  `json:"description"`
	Quantity      *float64 `json:"quantity"`
	UnitPrice     *float64 `json:"unit_price"`
	TotalPrice    *float64 `json:"total_price"`
}

// DocumentStatus indicates the outcome of processing a single document.
type DocumentStatus string

const (
	DocumentStatusSucceeded DocumentStatus = "succeeded"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// DocumentOutcome records the result for one document in a batch,
// in submission order. Exactly one of Invoice or Failure is set.
type DocumentOutcome struct {
	Filename string           `json:"filename"`
	Status   DocumentStatus   `json:"status"`
	Invoice  *Invoice         `json:"invoice,omitempty"`
	Failure  *DocumentFailure `json:"failure,omitempty"`
}

// BatchResult holds everything produced by one processing run. It is
// ephemeral: built fresh per submission and never persisted.
type BatchResult struct {
	BatchID     uuid.UUID         `json:"batch_id"`
	Documents   []DocumentOutcome `json:"documents"`
	Rows        []Row             `json:"rows"`
	Failures    []DocumentFailure `json:"failures"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// Succeeded returns the number of documents that yielded a valid invoice.
func (r *BatchResult) Succeeded() int {
	n := 0
	for i := range r.Documents {
		if r.Documents[i].Status == DocumentStatusSucceeded {
			n++
		}
	}
	return n
}
