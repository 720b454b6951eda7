package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	logged := LogRequests(zap.New(core))(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	logged.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d request entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "GET" {
		t.Errorf("method = %v, want GET", fields["method"])
	}
	if fields["path"] != "/api/events" {
		t.Errorf("path = %v, want /api/events", fields["path"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v, want %d", fields["status"], http.StatusTeapot)
	}
}

func TestLogRequestsDefaultStatus(t *testing.T) {
	methods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			})

			LogRequests(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/test", nil))

			filtered := logs.FilterField(zap.String("method", method)).FilterField(zap.Int("status", http.StatusOK))
			if filtered.Len() != 1 {
				t.Errorf("expected one %s entry with status 200, got %d", method, filtered.Len())
			}
		})
	}
}

func TestGetAddressFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"empty context", context.Background(), ""},
		{"with address", context.WithValue(context.Background(), ContextKeyAddress, "0xabc"), "0xabc"},
		{"wrong type", context.WithValue(context.Background(), ContextKeyAddress, 42), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAddressFromContext(tt.ctx); got != tt.want {
				t.Errorf("GetAddressFromContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuthPassesAddress(t *testing.T) {
	ts := setupTestServer(t)
	authz, address := ts.login(t)

	var seen string
	protected := ts.handler.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAddressFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", authz["Authorization"])
	protected(httptest.NewRecorder(), req)

	if seen != address {
		t.Errorf("address in context = %q, want %q", seen, address)
	}
}
