package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docwiki/internal/config"
	"github.com/dgallion1/docwiki/internal/logging"
	"github.com/dgallion1/docwiki/internal/pipeline"
	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/dgallion1/docwiki/internal/wikitext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

type fakePages struct {
	pages   []wikistore.StoredPage
	deleted []string
}

func (f *fakePages) ListPages(ctx context.Context, prefix string, limit int) ([]wikistore.StoredPage, error) {
	var out []wikistore.StoredPage
	for _, p := range f.pages {
		if strings.HasPrefix(p.Path, prefix) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePages) GetPage(ctx context.Context, path string) (*wikistore.StoredPage, error) {
	for _, p := range f.pages {
		if p.Path == path {
			return &p, nil
		}
	}
	return nil, wikistore.ErrNotFound
}

func (f *fakePages) DeletePage(ctx context.Context, path string) error {
	if _, err := f.GetPage(ctx, path); err != nil {
		return err
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		DocwikiAPIKey:  testKey,
		WorkerCount:    1,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		StatsWindow:    time.Hour,
		DefaultDialect: "standard",
		PublishPrefix:  "wiki/pages",
	}
}

func newTestServer(t *testing.T, pages PageStore) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	reg, err := wikitext.NewRegistry("standard")
	require.NoError(t, err)
	cfg := testConfig()
	orch := pipeline.NewOrchestrator(cfg, reg, nil, logging.Discard())
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, pages, logging.Discard(), cfg), orch
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestHealthIsPublic(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dialects", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dialects", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec, body := do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid api key", body["error"])
}

func TestDialects(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/dialects", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"minimal", "standard"}, body["dialects"])
	assert.Equal(t, "standard", body["default"])
}

func TestRender(t *testing.T) {
	s, orch := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
		want     string
	}{
		{
			name:     "lists default schema",
			body:     `{"doc":{"type":"doc","content":[{"type":"bullet_list","content":[{"type":"list_item","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"strong"}],"text":"one"}]}]}]}]}}`,
			wantCode: http.StatusOK,
			want:     "* '''one'''",
		},
		{
			name:     "minimal dialect",
			body:     `{"dialect":"minimal","schema":"minimal","doc":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"link","attrs":{"href":"https://example.com"}}],"text":"site"}]}]}}`,
			wantCode: http.StatusOK,
			want:     "[https://example.com|site]",
		},
		{
			name:     "dialect lacks node",
			body:     `{"dialect":"minimal","doc":{"type":"doc","content":[{"type":"heading","content":[{"type":"text","text":"T"}]}]}}`,
			wantCode: http.StatusBadRequest,
		},
		{"unknown dialect", `{"dialect":"fancy","doc":{"type":"doc"}}`, http.StatusBadRequest, ""},
		{"unknown schema", `{"schema":"fancy","doc":{"type":"doc"}}`, http.StatusBadRequest, ""},
		{"invalid node", `{"doc":{"type":"doc","content":[{"type":"table"}]}}`, http.StatusBadRequest, ""},
		{"root not doc", `{"doc":{"type":"paragraph"}}`, http.StatusBadRequest, ""},
		{"missing doc", `{}`, http.StatusBadRequest, ""},
		{"malformed", `{"doc":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(tt.body))
			rec, body := do(t, s, req)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.Equal(t, tt.want, body["wikitext"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
	assert.Equal(t, 2, orch.Stats().Snapshot().Count)
}

func TestRenderTooLarge(t *testing.T) {
	s, _ := newTestServer(t, nil)
	big := `{"doc":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"` +
		strings.Repeat("x", 2<<20) + `"}]}]}}`
	rec, body := do(t, s, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, body["error"], "1.0 MB")
}

func multipartRequest(t *testing.T, url, field string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		fw.Write([]byte(content))
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func waitForStatus(t *testing.T, s *Server, jobID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/convert/"+jobID+"/status", nil)
		rec, body := do(t, s, req)
		require.Equal(t, http.StatusOK, rec.Code)
		switch body["status"] {
		case "completed", "failed", "partial", "duplicate_skipped":
			return body
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s did not finish: %v", jobID, body)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConvert(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := multipartRequest(t, "/api/convert", "file",
		map[string]string{"guide.md": "Some *emphasis* here.\n"},
		map[string]string{"title": "Guide"})
	rec, body := do(t, s, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "/api/convert/"+jobID+"/status", body["poll_url"])

	final := waitForStatus(t, s, jobID)
	assert.Equal(t, "completed", final["status"])
	assert.Equal(t, "Guide", final["title"])
	result, ok := final["result"].(map[string]any)
	require.True(t, ok, "%v", final)
	assert.Equal(t, "Some ''emphasis'' here.", result["wikitext"])
}

func TestConvertRejects(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		files  map[string]string
		fields map[string]string
		code   int
	}{
		{"unsupported type", map[string]string{"img.png": "x"}, nil, http.StatusBadRequest},
		{"unknown dialect", map[string]string{"a.txt": "x"}, map[string]string{"dialect": "fancy"}, http.StatusBadRequest},
		{"bad publish", map[string]string{"a.txt": "x"}, map[string]string{"publish": "maybe"}, http.StatusBadRequest},
		{"publish unconfigured", map[string]string{"a.txt": "x"}, map[string]string{"publish": "true"}, http.StatusServiceUnavailable},
		{"too large", map[string]string{"a.txt": strings.Repeat("x", 1<<20+1)}, nil, http.StatusRequestEntityTooLarge},
		{"missing file", nil, map[string]string{"title": "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, s, multipartRequest(t, "/api/convert", "file", tt.files, tt.fields))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestConvertStatusNotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/api/convert/nope/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchConvert(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := multipartRequest(t, "/api/convert/batch", "files",
		map[string]string{"a.txt": "first", "b.exe": "nope"}, nil)
	rec, body := do(t, s, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	jobs, ok := body["jobs"].([]any)
	require.True(t, ok)
	require.Len(t, jobs, 2)

	var accepted, rejected int
	for _, j := range jobs {
		entry := j.(map[string]any)
		if id, ok := entry["job_id"].(string); ok {
			accepted++
			final := waitForStatus(t, s, id)
			assert.Equal(t, "completed", final["status"])
		} else {
			rejected++
			assert.Equal(t, "b.exe", entry["filename"])
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)
}

func TestPages(t *testing.T) {
	pages := &fakePages{pages: []wikistore.StoredPage{
		{Path: "wiki/pages/a", Title: "A"},
		{Path: "wiki/pages/b", Title: "B"},
		{Path: "other/c", Title: "C"},
	}}
	s, _ := newTestServer(t, pages)

	rec, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["pages"], 2)

	rec, body = do(t, s, httptest.NewRequest(http.MethodGet, "/api/pages?prefix=other&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["pages"], 1)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/pages?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, s, httptest.NewRequest(http.MethodGet, "/api/pages/wiki/pages/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", body["title"])

	rec, body = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/pages/wiki/pages/b", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wiki/pages/b", body["deleted"])
	assert.Equal(t, []string{"wiki/pages/b"}, pages.deleted)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/pages/wiki/pages/zzz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPagesUnconfigured(t *testing.T) {
	s, _ := newTestServer(t, nil)
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/pages", nil),
		httptest.NewRequest(http.MethodDelete, "/api/pages/wiki/pages/a", nil),
	} {
		rec, _ := do(t, s, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
}

func TestRenderStats(t *testing.T) {
	s, _ := newTestServer(t, nil)
	body := `{"doc":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}}`
	rec, _ := do(t, s, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/render", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := resp["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["count"])
	assert.Equal(t, float64(5), stats["total_bytes"])
	assert.Equal(t, "5 B", resp["rendered_human"])
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.txt": "passwd.txt",
		`C:\docs\a.md`:         "a.md",
		"":                     "unnamed",
		"a..b.txt":             "a_b.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
