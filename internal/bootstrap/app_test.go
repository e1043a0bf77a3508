package bootstrap_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/bootstrap"
	"docextract-backend/internal/extract/extracttest"
	"docextract-backend/internal/shared/config"
)

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "test",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		JWTSecret:       "test-secret",
		JWTSubject:      "access",
		JWTAccessTTL:    time.Hour,
		JWTRefreshTTL:   24 * time.Hour,
		StagingDir:      t.TempDir(),
		FetchTimeout:    5 * time.Second,
		FetchMaxBytes:   1 << 20,
		ArchiveStore:    "local",
		LocalStoreDir:   t.TempDir(),
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func signIn(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "hunter2"}
	if resp := do(t, r, http.MethodPost, "/api/v1/auth/signup", "", creds); resp.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	resp := do(t, r, http.MethodPost, "/api/v1/auth/signin", "", creds)
	if resp.Code != http.StatusOK {
		t.Fatalf("signin expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode signin: %v", err)
	}
	return out.AccessToken
}

func TestExtractFlowEndToEnd(t *testing.T) {
	app := buildApp(t)
	r := app.Router
	token := signIn(t, r, "user@example.com")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write(extracttest.DOCX("Remote text"))
	}))
	defer srv.Close()
	local := extracttest.WriteFile(t, t.TempDir(), "local.docx", extracttest.DOCX("Local text"))

	resp := do(t, r, http.MethodPost, "/api/v1/documents/extract", token, map[string][]string{
		"file_paths_or_urls": {local, srv.URL + "/y.docx"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("extract expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var results []struct {
		TaskID        int64  `json:"task_id"`
		Status        string `json:"status"`
		ExtractedText string `json:"extracted_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode extract: %v", err)
	}
	if len(results) != 2 || results[0].ExtractedText != "Local text\n" || results[1].ExtractedText != "Remote text\n" {
		t.Fatalf("unexpected results: %+v", results)
	}

	resp = do(t, r, http.MethodGet, "/api/v1/documents", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", resp.Code)
	}
	var listed []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(listed))
	}

	resp = do(t, r, http.MethodGet, "/api/v1/me", token, nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "user@example.com") {
		t.Fatalf("me expected 200 with email, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDocumentsAreScopedPerAccount(t *testing.T) {
	app := buildApp(t)
	r := app.Router
	alice := signIn(t, r, "alice@example.com")
	bob := signIn(t, r, "bob@example.com")

	local := extracttest.WriteFile(t, t.TempDir(), "a.docx", extracttest.DOCX("secret"))
	if resp := do(t, r, http.MethodPost, "/api/v1/documents/extract", alice, map[string][]string{"file_paths_or_urls": {local}}); resp.Code != http.StatusOK {
		t.Fatalf("extract expected 200, got %d", resp.Code)
	}

	resp := do(t, r, http.MethodGet, "/api/v1/documents/1", bob, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's document, got %d", resp.Code)
	}
	resp = do(t, r, http.MethodGet, "/api/v1/documents/1", alice, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := buildApp(t)
	r := app.Router

	for _, path := range []string{"/api/v1/me", "/api/v1/documents"} {
		if resp := do(t, r, http.MethodGet, path, "", nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token expected 401, got %d", path, resp.Code)
		}
		if resp := do(t, r, http.MethodGet, path, "garbage", nil); resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s with bad token expected 401, got %d", path, resp.Code)
		}
	}

	resp := do(t, r, http.MethodPost, "/api/v1/documents/extract", "", map[string][]string{"file_paths_or_urls": {"x"}})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("extract without token expected 401, got %d", resp.Code)
	}
}

func TestValidTokenForDeletedAccountIs404(t *testing.T) {
	app := buildApp(t)
	token, err := app.Signer.IssueAccess("ghost@example.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	resp := do(t, app.Router, http.MethodPost, "/api/v1/documents/extract", token, map[string][]string{"file_paths_or_urls": {"x"}})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	app := buildApp(t)
	if resp := do(t, app.Router, http.MethodGet, "/api/v1/health", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("health expected 200, got %d", resp.Code)
	}
	resp := do(t, app.Router, http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "extraction_batches_total") {
		t.Fatalf("metrics expected 200 with counters, got %d", resp.Code)
	}
}
