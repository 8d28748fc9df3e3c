package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/aanand-mishra/cantina-api/internal/http/middleware"
)

func TestRequestIDGenerated(t *testing.T) {
	c := qt.New(t)

	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	got := rec.Header().Get(middleware.RequestIDHeader)
	c.Assert(got, qt.Equals, seen)
	_, err := uuid.Parse(got)
	c.Assert(err, qt.IsNil)
}

func TestRequestIDKept(t *testing.T) {
	c := qt.New(t)

	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	c.Assert(rec.Header().Get(middleware.RequestIDHeader), qt.Equals, "abc-123")
}

func TestLogger(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	h := middleware.RequestID(middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/students", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	c.Assert(out, qt.Contains, "request_id=req-1")
	c.Assert(out, qt.Contains, "method=POST")
	c.Assert(out, qt.Contains, "path=/api/students")
	c.Assert(out, qt.Contains, "status=418")
}
