package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"factura/internal/config"
	"factura/internal/domain"
	"factura/internal/extractor"
	"factura/internal/port"
	"factura/internal/schema"
)

const (
	uploadBaseURL = "https://generativelanguage.googleapis.com/upload/v1beta/files"
	apiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
)

// Client implements port.Extractor against Google's Gemini API. Each call
// uploads the staged document to the Gemini File API, issues a
// schema-constrained generateContent request, and best-effort deletes the
// remote copy afterwards.
type Client struct {
	apiKey       string
	defaultModel string
	uploadURL    string
	generateBase string
	deleteBase   string
	client       *http.Client
}

// NewClient creates a Gemini-based extraction client.
func NewClient(cfg *config.GeminiConfig) *Client {
	return NewClientWithEndpoints(cfg, cfg.UploadEndpoint, cfg.GenerateEndpoint, "")
}

// NewClientWithEndpoints creates a client pointing at custom API endpoints
// (for testing). Empty values fall back to the public API.
func NewClientWithEndpoints(cfg *config.GeminiConfig, uploadURL, generateBase, deleteBase string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if uploadURL == "" {
		uploadURL = uploadBaseURL
	}
	if generateBase == "" {
		generateBase = apiBaseURL + "/models"
	}
	if deleteBase == "" {
		deleteBase = apiBaseURL
	}
	return &Client{
		apiKey:       cfg.APIKey,
		defaultModel: model,
		uploadURL:    uploadURL,
		generateBase: generateBase,
		deleteBase:   deleteBase,
		client:       &http.Client{Timeout: timeout},
	}
}

// Extract uploads the staged document, runs one structured-generation
// attempt against it, and returns the raw JSON payload. There is no retry;
// failures are classified per pipeline stage. The remote file copy is
// deleted best-effort regardless of the generation outcome.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (json.RawMessage, error) {
	data, err := os.ReadFile(input.Doc.Path)
	if err != nil {
		return nil, domain.NewDocumentFailure(input.Filename, domain.FailureStaging,
			fmt.Errorf("reading staged file: %w", err))
	}

	apiKey := input.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}
	model := input.Model
	if model == "" {
		model = c.defaultModel
	}

	file, err := c.upload(ctx, data, apiKey)
	if err != nil {
		return nil, domain.NewDocumentFailure(input.Filename, domain.FailureUpload, err)
	}
	defer c.deleteFile(input.Filename, file.Name, apiKey)

	return c.generate(ctx, input.Filename, model, apiKey, file.URI)
}

type uploadedFile struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func (c *Client) upload(ctx context.Context, data []byte, apiKey string) (*uploadedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading to file API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var parsed struct {
		File uploadedFile `json:"file"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling upload response: %w", err)
	}
	if parsed.File.URI == "" {
		return nil, fmt.Errorf("upload response missing file uri")
	}
	return &parsed.File, nil
}

func (c *Client) generate(ctx context.Context, filename, model, apiKey, fileURI string) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"file_data": map[string]interface{}{
							"mime_type": "application/pdf",
							"file_uri":  fileURI,
						},
					},
					{
						"text": extractor.BuildInvoicePrompt(),
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   schema.GeminiResponseSchema(),
			"maxOutputTokens":  16384,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("marshaling request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(c.generateBase, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("calling gemini API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500)))
	}

	return parseResponse(filename, respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(filename string, body []byte) (json.RawMessage, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewDocumentFailure(filename, domain.FailureInference,
			fmt.Errorf("unmarshaling response: %w", err))
	}

	if len(resp.Candidates) == 0 {
		return nil, domain.NewDocumentFailure(filename, domain.FailureEmptyResponse,
			fmt.Errorf("empty response from API: no candidates"))
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, domain.NewDocumentFailure(filename, domain.FailureEmptyResponse,
			fmt.Errorf("empty response from API: no parts"))
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, domain.NewDocumentFailure(filename, domain.FailureEmptyResponse,
			fmt.Errorf("empty response from API: blank content"))
	}

	return json.RawMessage(text), nil
}

// deleteFile removes the remote copy of an uploaded document. This is a
// compensating action: failure is logged and swallowed, never surfaced to
// the document's outcome.
func (c *Client) deleteFile(filename, name, apiKey string) {
	if name == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	endpoint := strings.TrimRight(c.deleteBase, "/") + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		log.Printf("gemini.Client: cleanup of %s for %s failed: %v", name, filename, err)
		return
	}
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("gemini.Client: cleanup of %s for %s failed: %v", name, filename, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		log.Printf("gemini.Client: cleanup of %s for %s failed (status %d)", name, filename, resp.StatusCode)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
