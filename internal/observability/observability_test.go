package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanskruthi/fest-service/internal/config"
)

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewLogger_Formats(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger(config.LoggerConfig{Format: "xml"})
	assert.ErrorContains(t, err, "unsupported log format")
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/event", http.MethodGet, 200, 10*time.Millisecond)
	m.RecordRequest("/event", http.MethodGet, 200, 30*time.Millisecond)
	m.RecordError("/event", http.MethodGet, "NOT_FOUND")

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Requests["/event|GET|200"])
	assert.EqualValues(t, 20, snap.AvgLatencyMillis["/event|GET|200"])
	assert.EqualValues(t, 1, snap.Errors["/event|GET|NOT_FOUND"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/x", http.MethodGet, 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/consoles/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(http.StatusTeapot, "nope") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/consoles/abc", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get("X-Request-ID"))

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.Requests["/consoles/:id|GET|204"])
	assert.EqualValues(t, 1, snap.Requests["/boom|GET|418"])

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[1].Level)
}
