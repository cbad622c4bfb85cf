package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/stretchr/testify/assert"
)

type codeInput struct {
	Code string `path:"code"`
}

func TestRequestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMetrics(m))

	huma.Register(api, huma.Operation{
		OperationID: "lookup",
		Method:      http.MethodGet,
		Path:        "/{code}",
	}, func(_ context.Context, in *codeInput) (*testOutput, error) {
		if in.Code == "missing" {
			return nil, huma.Error404NotFound("not found")
		}

		return &testOutput{Body: in.Code}, nil
	})

	for _, path := range []string{"/abc123", "/xyz789", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	t.Run("labels by route template", func(t *testing.T) {
		assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/{code}", "200")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/{code}", "404")), 0)
	})

	t.Run("does not create a series per raw path", func(t *testing.T) {
		assert.Equal(t, 2, testutil.CollectAndCount(m.Requests))
		assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
	})
}
