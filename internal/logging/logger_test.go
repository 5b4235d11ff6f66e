package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		out = append(out, e)
	}
	return out
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{DebugLevel, []string{"debug", "info", "warn", "error"}},
		{InfoLevel, []string{"info", "warn", "error"}},
		{WarnLevel, []string{"warn", "error"}},
		{ErrorLevel, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.level, &buf)

			l.Debug("debug")
			l.Info("info")
			l.Warn("warn")
			l.Error("error")

			var got []string
			for _, e := range entries(t, &buf) {
				got = append(got, e["message"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf)
	child := base.WithFields(map[string]interface{}{"search_id": "s1"}).WithError(errors.New("boom"))

	child.Info("sweep", map[string]interface{}{"archive_size": 3})
	base.Info("plain")

	got := entries(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0]["search_id"])
	assert.Equal(t, "boom", got[0]["error"])
	assert.Equal(t, 3.0, got[0]["archive_size"])
	assert.Equal(t, "INFO", got[0]["level"])
	assert.Contains(t, got[0], "caller")
	assert.Contains(t, got[0], "timestamp")
	assert.NotContains(t, got[1], "search_id", "fields must not leak into the parent")
}

func TestZapSharesSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(InfoLevel, &buf).WithField("service", "ibmols")

	zl := NewZapLogger(l, "search")
	zl.Debug("hidden")
	zl.Info("visible")

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "visible", got[0]["message"])
	assert.Equal(t, "ibmols", got[0]["service"])
	assert.Equal(t, "search", got[0]["logger"])
	assert.True(t, l.Enabled(InfoLevel))
	assert.False(t, l.Enabled(DebugLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("Warn"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(nil)
	require.NoError(t, err)
	assert.True(t, l.Enabled(InfoLevel))

	_, err = NewLogger(&Config{Level: "debug", Format: "console", Output: "/nonexistent/dir/log.txt"})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &CtxLogger{New(InfoLevel, &buf)}

	ctx := l.WithContext(context.Background())

	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(Middleware(New(DebugLevel, &buf)))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	for _, path := range []string{"/ok", "/missing"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := entries(t, &buf)
	require.Len(t, got, 3)
	assert.Equal(t, "inside", got[0]["message"])
	assert.Equal(t, "/ok", got[0]["path"])
	assert.Equal(t, "DEBUG", got[1]["level"])
	assert.Equal(t, 200.0, got[1]["status"])
	assert.Equal(t, "WARN", got[2]["level"])
	assert.Equal(t, "Not Found", got[2]["error"])
}
