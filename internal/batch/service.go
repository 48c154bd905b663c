package batch

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"factura/internal/domain"
	"factura/internal/port"
	"factura/internal/schema"
)

// Document is one uploaded file in a batch submission.
type Document struct {
	Filename string
	Data     []byte
}

// Options carries per-batch extraction settings. Model and APIKey are
// read-only for the duration of a batch; empty values fall back to the
// extractor's configured defaults.
type Options struct {
	Model  string
	APIKey string
}

// Service defines the batch processing contract.
type Service interface {
	Process(ctx context.Context, docs []Document, opts Options) (*domain.BatchResult, error)
}

type service struct {
	stager      port.Stager
	extractor   port.Extractor
	archive     port.ArchiveStore
	concurrency int
}

// NewService creates a new batch Service. concurrency bounds the number of
// documents processed in parallel; 1 (or less) means strictly sequential.
func NewService(stager port.Stager, extractor port.Extractor, archive port.ArchiveStore, concurrency int) Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &service{
		stager:      stager,
		extractor:   extractor,
		archive:     archive,
		concurrency: concurrency,
	}
}

// Process runs stage -> extract -> validate for every document and collects
// the outcomes. A failure for one document is recorded against that document
// only and never aborts the batch. Outcome, row, and failure ordering always
// matches submission order, regardless of concurrency.
func (s *service) Process(ctx context.Context, docs []Document, opts Options) (*domain.BatchResult, error) {
	batchID := uuid.New()
	outcomes := make([]domain.DocumentOutcome, len(docs))

	log.Printf("batchService.Process: batch %s started (%d documents, concurrency %d)",
		batchID, len(docs), s.concurrency)

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range docs {
		idx := i
		g.Go(func() error {
			outcomes[idx] = s.processOne(ctx, batchID, &docs[idx], opts)
			return nil
		})
	}
	// workers record failures in their outcome slot instead of returning them
	_ = g.Wait()

	result := &domain.BatchResult{
		BatchID:     batchID,
		Documents:   outcomes,
		Rows:        flatten(outcomes),
		Failures:    collectFailures(outcomes),
		ProcessedAt: time.Now().UTC(),
	}

	log.Printf("batchService.Process: batch %s done (%d succeeded, %d failed, %d rows)",
		batchID, result.Succeeded(), len(result.Failures), len(result.Rows))

	return result, nil
}

func (s *service) processOne(ctx context.Context, batchID uuid.UUID, doc *Document, opts Options) domain.DocumentOutcome {
	staged, err := s.stager.Stage(doc.Data, doc.Filename)
	if err != nil {
		return failedOutcome(doc.Filename, domain.NewDocumentFailure(doc.Filename, domain.FailureStaging, err))
	}
	defer s.stager.Release(staged)

	s.archiveOriginal(ctx, batchID, staged, doc)

	raw, err := s.extractor.Extract(ctx, port.ExtractInput{
		Doc:      staged,
		Filename: doc.Filename,
		Model:    opts.Model,
		APIKey:   opts.APIKey,
	})
	if err != nil {
		return failedOutcome(doc.Filename, domain.AsDocumentFailure(doc.Filename, err))
	}

	inv, err := schema.Validate(doc.Filename, raw)
	if err != nil {
		return failedOutcome(doc.Filename, domain.AsDocumentFailure(doc.Filename, err))
	}

	return domain.DocumentOutcome{
		Filename: doc.Filename,
		Status:   domain.DocumentStatusSucceeded,
		Invoice:  inv,
	}
}

// archiveOriginal keeps a copy of the uploaded bytes in the archive store.
// Best-effort: a failed archive never affects the document's outcome.
func (s *service) archiveOriginal(ctx context.Context, batchID uuid.UUID, staged *port.StagedDoc, doc *Document) {
	key := fmt.Sprintf("batches/%s/%s/%s", batchID, staged.ID, doc.Filename)
	if _, err := s.archive.Put(ctx, port.ArchivePutInput{
		Key:         key,
		Body:        bytes.NewReader(doc.Data),
		ContentType: "application/pdf",
		Size:        int64(len(doc.Data)),
	}); err != nil {
		log.Printf("batchService.archiveOriginal: archiving %s failed: %v", doc.Filename, err)
	}
}

func failedOutcome(filename string, failure *domain.DocumentFailure) domain.DocumentOutcome {
	return domain.DocumentOutcome{
		Filename: filename,
		Status:   domain.DocumentStatusFailed,
		Failure:  failure,
	}
}

// flatten expands each successful invoice into one row per line item, the
// parent's header fields repeated on every row. An invoice with zero line
// items contributes zero rows.
func flatten(outcomes []domain.DocumentOutcome) []domain.Row {
	rows := make([]domain.Row, 0, len(outcomes))
	for i := range outcomes {
		o := &outcomes[i]
		if o.Status != domain.DocumentStatusSucceeded {
			continue
		}
		inv := o.Invoice
		for j := range inv.LineItems {
			it := &inv.LineItems[j]
			rows = append(rows, domain.Row{
				Filename:      o.Filename,
				InvoiceNumber: inv.InvoiceNumber,
				InvoiceDate:   inv.InvoiceDate,
				VendorName:    inv.VendorName,
				CustomerName:  inv.CustomerName,
				Currency:      inv.Currency,
				TotalAmount:   inv.TotalAmount,
				Description:   it.Description,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
				TotalPrice:    it.TotalPrice,
			})
		}
	}
	return rows
}

func collectFailures(outcomes []domain.DocumentOutcome) []domain.DocumentFailure {
	failures := make([]domain.DocumentFailure, 0)
	for i := range outcomes {
		if outcomes[i].Failure != nil {
			failures = append(failures, *outcomes[i].Failure)
		}
	}
	return failures
}
