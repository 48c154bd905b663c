package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/config"
	"factura/internal/domain"
	"factura/internal/port"
)

type fakeGemini struct {
	uploadStatus   int
	generateStatus int
	generateBody   map[string]interface{}
	deleteStatus   int
	deleteCalls    atomic.Int32

	lastGenerateRequest map[string]interface{}
}

func generateSuccessBody(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func (f *fakeGemini) server(t *testing.T) *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload/v1beta/files":
			assert.Equal(t, "raw", r.Header.Get("X-Goog-Upload-Protocol"))
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			if f.uploadStatus != http.StatusOK {
				w.WriteHeader(f.uploadStatus)
				_, _ = w.Write([]byte(`{"error":{"message":"upload rejected"}}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"file": map[string]interface{}{
					"name": "files/abc123",
					"uri":  srv.URL + "/v1beta/files/abc123",
				},
			})

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":generateContent"):
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
			_ = json.NewDecoder(r.Body).Decode(&f.lastGenerateRequest)
			if f.generateStatus != http.StatusOK {
				w.WriteHeader(f.generateStatus)
				_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
				return
			}
			_ = json.NewEncoder(w).Encode(f.generateBody)

		case r.Method == http.MethodDelete && r.URL.Path == "/v1beta/files/abc123":
			f.deleteCalls.Add(1)
			w.WriteHeader(f.deleteStatus)

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func newTestClient(serverURL string) *Client {
	cfg := &config.GeminiConfig{
		APIKey:       "test-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return NewClientWithEndpoints(cfg,
		serverURL+"/upload/v1beta/files",
		serverURL+"/v1beta/models",
		serverURL+"/v1beta",
	)
}

func stageTestDoc(t *testing.T, data []byte) *port.StagedDoc {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return &port.StagedDoc{ID: "doc-1", Path: path, Filename: "invoice.pdf", Size: int64(len(data))}
}

func TestClient_Extract_Success(t *testing.T) {
	llmJSON := `{"invoice_number":"INV-001","line_items":[]}`
	fake := &fakeGemini{
		uploadStatus:   http.StatusOK,
		generateStatus: http.StatusOK,
		generateBody:   generateSuccessBody(llmJSON),
		deleteStatus:   http.StatusOK,
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	raw, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("%PDF-1.4 test")),
		Filename: "invoice.pdf",
	})

	require.NoError(t, err)
	assert.JSONEq(t, llmJSON, string(raw))
	assert.Equal(t, int32(1), fake.deleteCalls.Load())

	// request carries the file reference, the prompt, and the response schema
	contents := fake.lastGenerateRequest["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)
	fileData := parts[0].(map[string]interface{})["file_data"].(map[string]interface{})
	assert.Equal(t, "application/pdf", fileData["mime_type"])
	assert.NotEmpty(t, fileData["file_uri"])
	assert.NotEmpty(t, parts[1].(map[string]interface{})["text"])

	genConfig := fake.lastGenerateRequest["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", genConfig["responseMimeType"])
	assert.NotNil(t, genConfig["responseSchema"])
}

func TestClient_Extract_UploadFailure(t *testing.T) {
	fake := &fakeGemini{uploadStatus: http.StatusServiceUnavailable}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("corrupt")),
		Filename: "b.pdf",
	})

	require.Error(t, err)
	var df *domain.DocumentFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, "b.pdf", df.Filename)
	assert.Equal(t, domain.FailureUpload, df.Kind)
	// nothing uploaded, nothing to delete
	assert.Equal(t, int32(0), fake.deleteCalls.Load())
}

func TestClient_Extract_InferenceFailure(t *testing.T) {
	fake := &fakeGemini{
		uploadStatus:   http.StatusOK,
		generateStatus: http.StatusTooManyRequests,
		deleteStatus:   http.StatusOK,
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("%PDF-1.4")),
		Filename: "b.pdf",
	})

	require.Error(t, err)
	var df *domain.DocumentFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, domain.FailureInference, df.Kind)
	assert.Contains(t, df.Cause, "429")
	// remote copy still cleaned up after a failed generation
	assert.Equal(t, int32(1), fake.deleteCalls.Load())
}

func TestClient_Extract_EmptyResponse(t *testing.T) {
	fake := &fakeGemini{
		uploadStatus:   http.StatusOK,
		generateStatus: http.StatusOK,
		generateBody:   map[string]interface{}{"candidates": []map[string]interface{}{}},
		deleteStatus:   http.StatusOK,
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("%PDF-1.4")),
		Filename: "b.pdf",
	})

	require.Error(t, err)
	var df *domain.DocumentFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, domain.FailureEmptyResponse, df.Kind)
}

func TestClient_Extract_BlankContentIsEmptyResponse(t *testing.T) {
	fake := &fakeGemini{
		uploadStatus:   http.StatusOK,
		generateStatus: http.StatusOK,
		generateBody:   generateSuccessBody("   "),
		deleteStatus:   http.StatusOK,
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("%PDF-1.4")),
		Filename: "b.pdf",
	})

	require.Error(t, err)
	var df *domain.DocumentFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, domain.FailureEmptyResponse, df.Kind)
}

func TestClient_Extract_CleanupFailureInvisible(t *testing.T) {
	llmJSON := `{"invoice_number":"INV-001","line_items":[]}`
	fake := &fakeGemini{
		uploadStatus:   http.StatusOK,
		generateStatus: http.StatusOK,
		generateBody:   generateSuccessBody(llmJSON),
		deleteStatus:   http.StatusInternalServerError,
	}
	srv := fake.server(t)
	defer srv.Close()

	c := newTestClient(srv.URL)
	raw, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      stageTestDoc(t, []byte("%PDF-1.4")),
		Filename: "a.pdf",
	})

	// failed remote deletion must not alter the extraction result
	require.NoError(t, err)
	assert.JSONEq(t, llmJSON, string(raw))
	assert.Equal(t, int32(1), fake.deleteCalls.Load())
}

func TestClient_Extract_MissingStagedFileIsStagingFailure(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.Extract(context.Background(), port.ExtractInput{
		Doc:      &port.StagedDoc{ID: "gone", Path: filepath.Join(t.TempDir(), "missing.pdf"), Filename: "a.pdf"},
		Filename: "a.pdf",
	})

	require.Error(t, err)
	var df *domain.DocumentFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, domain.FailureStaging, df.Kind)
}
