package metrics_test

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/docqa/pkg/metrics"
)

func newProm(t *testing.T) *metrics.Prom {
	t.Helper()
	return metrics.NewProm(prometheus.NewRegistry())
}

func TestMiddleware_RecordsRouteAndStatus(t *testing.T) {
	p := newProm(t)
	app := fiber.New()
	app.Use(p.Middleware())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/login", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("POST", "/login", "401")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.InFlight.WithLabelValues("GET")))
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	p := newProm(t)
	app := fiber.New()
	app.Use(p.Middleware())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestObserveAnswer(t *testing.T) {
	p := newProm(t)

	p.ObserveAnswer("", 2*time.Second)
	p.ObserveAnswer("extract", 10*time.Millisecond)
	p.ObserveAnswer("extract", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.AnswersTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.AnswersTotal.WithLabelValues("extract")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.AnswerDuration))
}

func TestObserveDB(t *testing.T) {
	p := newProm(t)

	require.NoError(t, p.ObserveDB("users.get", func() error { return nil }))

	dup := &pgconn.PgError{Code: "23505"}
	err := p.ObserveDB("users.create", func() error { return dup })
	assert.ErrorIs(t, err, dup)

	err = p.ObserveDB("users.create", func() error { return errors.New("dial tcp: connection refused") })
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "connection")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.DbQueryDuration))
}

func TestNewProm_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewProm(reg)
	assert.Panics(t, func() { metrics.NewProm(reg) })
}
