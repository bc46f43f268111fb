package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/app/storage"
	"messenger/internal/configs"
	"messenger/internal/pkg/errs"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (http.Handler, *storage.FileStore) {
	t.Helper()

	docs, err := storage.NewFileStore(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)

	cfg := &configs.ServerConfig{
		Environment:  "development",
		MaxBodyBytes: 4096,
		SaveRate:     1000,
		SaveBurst:    1000,
	}
	h, stop := Router(&AppDeps{Config: cfg, Documents: docs})
	t.Cleanup(stop)
	return h, docs
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestGetDatabaseServesEmptyDocument(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/database", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.JSONEq(t, `{"users":[],"conversations":[],"roles":[],"countryBans":[],"ads":[]}`, string(env.Data))
}

func TestSaveDatabase(t *testing.T) {
	h, _ := newTestRouter(t)

	doc := `{"users":[{"id":"user-1","username":"alice"}],"conversations":[],"extra":{"kept":true}}`
	rec, env := do(t, h, http.MethodPost, "/api/save", "application/json", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, env.Code)
	assert.Contains(t, string(env.Data), "savedAt")

	_, env = do(t, h, http.MethodGet, "/api/database", "", "")
	assert.JSONEq(t, doc, string(env.Data), "the document is stored verbatim")
}

func TestSaveDatabaseRejects(t *testing.T) {
	h, docs := newTestRouter(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		code        int
	}{
		{"missing users", "application/json", `{"conversations":[]}`, http.StatusBadRequest, errs.ErrInvalidSnapshot},
		{"null conversations", "application/json", `{"users":[],"conversations":null}`, http.StatusBadRequest, errs.ErrInvalidSnapshot},
		{"not an object", "application/json", `[1,2,3]`, http.StatusBadRequest, errs.ErrInvalidSnapshot},
		{"malformed", "application/json", `{"users":`, http.StatusBadRequest, errs.ErrInvalidJSONFormat},
		{"wrong content type", "text/plain", `{"users":[],"conversations":[]}`, http.StatusUnsupportedMediaType, errs.ErrUnsupportedMediaType},
		{"too large", "application/json", `{"users":[],"conversations":[],"pad":"` + strings.Repeat("x", 5000) + `"}`, http.StatusRequestEntityTooLarge, errs.ErrRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/save", tt.contentType, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}

	stored, err := docs.Load(t.Context())
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"conversations":[],"roles":[],"countryBans":[],"ads":[]}`, string(stored),
		"rejected saves leave the document untouched")
}

func TestPresignWithoutObjectStore(t *testing.T) {
	h, _ := newTestRouter(t)

	body := `{"scope":"avatars","owner":"user-1","file_name":"me.png","mime_type":"image/png","file_size":10}`
	rec, env := do(t, h, http.MethodPost, "/api/file/presign-upload", "application/json", body)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, errs.ErrStorageUnavailable, env.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"backend":"file"`)
}

func TestRouterStopIsIdempotent(t *testing.T) {
	docs, err := storage.NewFileStore(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)

	h, stop := Router(&AppDeps{
		Config:    &configs.ServerConfig{Environment: "development", MaxBodyBytes: 4096, SaveRate: 1, SaveBurst: 1},
		Documents: docs,
	})
	stop()
	stop()

	rec, env := do(t, h, http.MethodPost, "/api/save", "application/json", `{"users":[],"conversations":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code, "limiters keep working after their janitors stop")
	assert.Equal(t, 0, env.Code)
}
