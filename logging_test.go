package aior_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephin/aior"
)

func decodeLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := aior.New()
	r.Use(aior.RequestID(), aior.Logger(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.Handle("/items/{item_id}", aior.NewResource("ItemHandler", aior.Get(respond(aior.JSON(named{Name: "TV"})))))

	w := serve(r, http.MethodGet, "/items/3", "", "X-Request-ID", "req-1")
	require.Equal(t, http.StatusOK, w.Code)

	entry := decodeLog(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/items/3", entry["path"])
	assert.Equal(t, "/items/{item_id}", entry["route"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.InDelta(t, http.StatusOK, entry["status"], 0)
	assert.InDelta(t, len(`{"name":"TV"}`), entry["size"], 1)
}

func TestLogger_levels(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path   string
		status int
		level  string
		route  bool
	}{
		"ok":        {path: "/ok", status: http.StatusOK, level: "INFO", route: true},
		"not found": {path: "/missing", status: http.StatusNotFound, level: "INFO"},
		"failure":   {path: "/fail", status: http.StatusInternalServerError, level: "ERROR", route: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := aior.New()
			r.Use(aior.Logger(slog.New(slog.NewJSONHandler(&buf, nil))))
			r.Handle("/ok", aior.NewResource("OKHandler", aior.Get(respond(aior.Empty()))))
			r.Handle("/fail", aior.NewResource("FailHandler", aior.Get(respond(aior.Raw(http.StatusInternalServerError, nil)))))

			w := serve(r, http.MethodGet, tt.path, "")
			require.Equal(t, tt.status, w.Code)

			entry := decodeLog(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.InDelta(t, tt.status, entry["status"], 0)
			_, hasRoute := entry["route"]
			assert.Equal(t, tt.route, hasRoute)
			assert.NotContains(t, entry, "request_id")
		})
	}
}
