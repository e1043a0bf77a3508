package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/extract/extracttest"
	"docextract-backend/internal/users"
)

func newExtractRouter(svc *Service, acc *users.Account) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1", func(c *gin.Context) {
		if acc != nil {
			c.Set("account", *acc)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(g)
	return r
}

func postExtract(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestExtractHandlerSuccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	docxPath := extracttest.WriteFile(t, t.TempDir(), "a.docx", extracttest.DOCX("hello"))
	body, _ := json.Marshal(map[string][]string{"file_paths_or_urls": {docxPath, "not-a-file"}})

	resp := postExtract(newExtractRouter(svc, &testAccount), string(body))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var results []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["status"] != "completed" || results[0]["extracted_text"] != "hello\n" {
		t.Fatalf("unexpected first result: %v", results[0])
	}
	if results[1]["status"] != "failed" || results[1]["task_id"] != float64(0) {
		t.Fatalf("unexpected second result: %v", results[1])
	}
}

func TestExtractHandlerEmptyList(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, body := range []string{`{"file_paths_or_urls": []}`, `{}`} {
		resp := postExtract(newExtractRouter(svc, &testAccount), body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestExtractHandlerMissingAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp := postExtract(newExtractRouter(svc, nil), `{"file_paths_or_urls": ["x"]}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestExtractHandlerRequiredNotifyFailure(t *testing.T) {
	svc, _, notifier := newTestService(t)
	svc.NotifyRequired = true
	notifier.err = errors.New("smtp down")
	docxPath := extracttest.WriteFile(t, t.TempDir(), "a.docx", extracttest.DOCX("hello"))
	body, _ := json.Marshal(map[string][]string{"file_paths_or_urls": {docxPath}})

	resp := postExtract(newExtractRouter(svc, &testAccount), string(body))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
