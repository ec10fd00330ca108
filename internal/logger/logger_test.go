package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewCreatesLogDirectory(t *testing.T) {
	dir := t.TempDir() + "/logs"

	log, err := New(dir, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(func() { _ = log.Sync() })

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log directory should exist: %v", err)
	}
}

func TestMiddlewareLogsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(Middleware(zap.New(core).Sugar()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel {
		t.Fatalf("expected info for 200, got %s", entries[0].Level)
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Fatalf("expected error for 500, got %s", entries[1].Level)
	}
	if entries[1].ContextMap()["path"] != "/boom" {
		t.Fatalf("unexpected path field: %v", entries[1].ContextMap())
	}
}
