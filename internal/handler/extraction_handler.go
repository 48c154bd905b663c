package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"factura/internal/batch"
	"factura/internal/config"
	"factura/internal/domain"
	"factura/internal/export"
)

// ExtractionHandler handles invoice extraction endpoints.
type ExtractionHandler struct {
	batchService  batch.Service
	batchCfg      config.BatchConfig
	sheetName     string
	hasDefaultKey bool
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(batchService batch.Service, cfg *config.Config) *ExtractionHandler {
	return &ExtractionHandler{
		batchService:  batchService,
		batchCfg:      cfg.Batch,
		sheetName:     cfg.Export.SheetName,
		hasDefaultKey: cfg.Gemini.APIKey != "",
	}
}

// Extract handles POST /api/v1/extractions.
// It accepts a multipart batch of PDF invoices, runs the extraction
// pipeline, and returns the per-document outcomes, flattened rows, and
// failure list as JSON.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	docs, opts, err := h.parseRequest(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.batchService.Process(c.Request.Context(), docs, opts)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"batch_id":     result.BatchID,
		"processed_at": result.ProcessedAt,
		"total":        len(result.Documents),
		"succeeded":    result.Succeeded(),
		"failed":       len(result.Failures),
		"documents":    result.Documents,
		"rows":         result.Rows,
		"failures":     result.Failures,
	})
}

// Export handles POST /api/v1/extractions/export.
// Same input as Extract, but responds with a spreadsheet download built
// from the successful rows. ?format=csv selects CSV instead of XLSX.
func (h *ExtractionHandler) Export(c *gin.Context) {
	docs, opts, err := h.parseRequest(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.batchService.Process(c.Request.Context(), docs, opts)
	if err != nil {
		HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, result.Rows); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename("invoices", "csv")+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	book, err := export.BuildWorkbook(h.sheetName, result.Rows)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename("invoices", "xlsx")+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", book)
}

// parseRequest validates the multipart submission and reads every file into
// memory. Validation failures here reject the whole request; per-document
// pipeline failures are recorded later without aborting the batch.
func (h *ExtractionHandler) parseRequest(c *gin.Context) ([]batch.Document, batch.Options, error) {
	opts := batch.Options{
		Model:  c.PostForm("model"),
		APIKey: c.GetHeader("X-Api-Key"),
	}
	if opts.APIKey == "" {
		opts.APIKey = c.PostForm("api_key")
	}
	if opts.APIKey == "" && !h.hasDefaultKey {
		return nil, opts, domain.ErrMissingAPIKey
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return nil, opts, domain.ErrNoFiles
	}
	headers := form.File["files"]
	if len(headers) > h.batchCfg.MaxFiles {
		return nil, opts, domain.ErrBatchTooLarge
	}

	maxBytes := h.batchCfg.MaxFileSizeMB * 1024 * 1024
	docs := make([]batch.Document, 0, len(headers))
	for _, fh := range headers {
		if strings.ToLower(filepath.Ext(fh.Filename)) != ".pdf" {
			return nil, opts, domain.ErrUnsupportedFileType
		}
		if fh.Size > maxBytes {
			return nil, opts, domain.ErrFileTooLarge
		}
		data, err := readMultipartFile(fh)
		if err != nil {
			return nil, opts, err
		}
		docs = append(docs, batch.Document{Filename: fh.Filename, Data: data})
	}
	return docs, opts, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
