package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubSchema int

func (s stubSchema) Len() int { return int(s) }

type stubRefresher struct {
	n     int
	err   error
	calls int
}

func (r *stubRefresher) RunNow(ctx context.Context) (int, error) {
	r.calls++
	return r.n, r.err
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestOpsHealth(t *testing.T) {
	tests := []struct {
		name   string
		schema stubSchema
		want   string
	}{
		{"loaded", 4200, "healthy"},
		{"empty schema", 0, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewOpsRouter(OpsConfig{Version: "test", BackendKind: "local", Schema: tt.schema, Refresher: &stubRefresher{}})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			data, ok := decodeResponse(t, rec).Data.(map[string]interface{})
			if !ok {
				t.Fatal("missing data")
			}
			if data["status"] != tt.want || data["backend"] != "local" || data["schema_items"] != float64(tt.schema) {
				t.Errorf("unexpected health %v", data)
			}
		})
	}
}

func TestOpsSchemaReload(t *testing.T) {
	refresher := &stubRefresher{n: 12}
	router := NewOpsRouter(OpsConfig{Schema: stubSchema(1), Refresher: refresher})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schema/reload", nil))

	if rec.Code != http.StatusOK || refresher.calls != 1 {
		t.Fatalf("status %d, calls %d", rec.Code, refresher.calls)
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "success" || resp.Data.(map[string]interface{})["schema_items"] != float64(12) {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOpsSchemaReloadFailure(t *testing.T) {
	router := NewOpsRouter(OpsConfig{Schema: stubSchema(1), Refresher: &stubRefresher{err: errors.New("steam down")}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schema/reload", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "error" || resp.Error != "steam down" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOpsRejectsWrongMethod(t *testing.T) {
	router := NewOpsRouter(OpsConfig{Schema: stubSchema(1), Refresher: &stubRefresher{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema/reload", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d", rec.Code)
	}
}
