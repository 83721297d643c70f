package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

func newTestServer(t *testing.T) (*Server, *configstore.Store) {
	t.Helper()

	store, err := configstore.New(context.Background(), configstore.Options{
		ValidationEnabled: true,
	})
	if err != nil {
		t.Fatalf("configstore.New() error = %v", err)
	}

	srv, err := New(Deps{
		Addr:    "127.0.0.1:0",
		Logger:  logging.Default(),
		Store:   store,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}

func TestHandleHealth_Unhealthy(t *testing.T) {
	srv, store := newTestServer(t)
	store.ApplySchema(configstore.Schema{
		"database.url": {Required: true},
	})
	router := srv.buildRouter()

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("status field = %v, want unhealthy", body["status"])
	}
}

func TestHandleStatus(t *testing.T) {
	srv, store := newTestServer(t)
	if err := store.Set("app.name", "configcore"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	router := srv.buildRouter()

	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["entries"] != float64(1) {
		t.Errorf("entries = %v, want 1", body["entries"])
	}
}

func TestConfigCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	// Create with metadata.
	rec, _ := doJSON(t, router, http.MethodPut, "/api/v1/config/db.port", map[string]any{
		"value": "5432",
		"type":  "int",
		"rules": []string{"min_value:1", "max_value:65535"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}

	// Read back: the stored value was coerced to an int.
	rec, body := doJSON(t, router, http.MethodGet, "/api/v1/config/db.port", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if body["value"] != float64(5432) {
		t.Errorf("value = %v, want 5432", body["value"])
	}
	if body["type"] != "int" {
		t.Errorf("type = %v, want int", body["type"])
	}

	// List includes the key.
	_, list := doJSON(t, router, http.MethodGet, "/api/v1/config", nil)
	values := list["values"].(map[string]any)
	if _, ok := values["db.port"]; !ok {
		t.Error("db.port missing from config listing")
	}

	// Delete, then a read is a 404.
	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/config/db.port", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/config/db.port", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestHandleSetConfig_ValidationFailure(t *testing.T) {
	srv, store := newTestServer(t)
	router := srv.buildRouter()

	rec, body := doJSON(t, router, http.MethodPut, "/api/v1/config/db.port", map[string]any{
		"value": "not-a-port",
		"type":  "int",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["code"] != ErrCodeValidation {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeValidation)
	}
	if store.Exists("db.port") {
		t.Error("rejected write landed in the store")
	}
}

func TestHandleSetConfig_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/config/k", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetConfig_MasksSensitive(t *testing.T) {
	srv, store := newTestServer(t)
	if err := store.Set("api.key", "abcdefgh", configstore.WithSensitive(true)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	router := srv.buildRouter()

	_, body := doJSON(t, router, http.MethodGet, "/api/v1/config/api.key", nil)
	if body["value"] != "ab****gh" {
		t.Errorf("value = %v, want masked", body["value"])
	}

	_, list := doJSON(t, router, http.MethodGet, "/api/v1/config", nil)
	values := list["values"].(map[string]any)
	if values["api.key"] != "ab****gh" {
		t.Errorf("listed value = %v, want masked", values["api.key"])
	}
}

func TestHandleDeleteConfig_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	rec, _ := doJSON(t, router, http.MethodDelete, "/api/v1/config/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set on response")
	}

	// A client-supplied id is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-id-7")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-id-7" {
		t.Errorf("X-Request-ID = %q, want client-id-7", got)
	}
}

func TestHandleWebSocket_Disabled(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.buildRouter()

	rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/ws", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no hub is wired", rec.Code)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Addr: ":0", Logger: logging.Default()}); err == nil {
		t.Error("New() without store = nil error, want failure")
	}
	store, _ := configstore.New(context.Background(), configstore.Options{})
	if _, err := New(Deps{Addr: ":0", Store: store}); err == nil {
		t.Error("New() without logger = nil error, want failure")
	}
	if _, err := New(Deps{Logger: logging.Default(), Store: store}); err == nil {
		t.Error("New() without address = nil error, want failure")
	}
}
