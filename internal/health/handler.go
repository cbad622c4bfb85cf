package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

const checkTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Dependency is a named component whose health is reported.
type Dependency struct {
	Name    string
	Checker Checker
}

// Handler handles health check operations.
type Handler struct {
	dependencies []Dependency
}

// NewHandler creates a new health handler reporting on the given dependencies.
func NewHandler(dependencies ...Dependency) *Handler {
	return &Handler{dependencies: dependencies}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string            `doc:"ok, or degraded when a dependency is unhealthy" example:"ok"   json:"status"`
		Checks map[string]string `doc:"Per-dependency status"                              json:"checks"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Checks = make(map[string]string, len(h.dependencies))

	for _, dep := range h.dependencies {
		if err := ping(ctx, dep.Checker); err != nil {
			resp.Body.Checks[dep.Name] = "unhealthy"
			resp.Body.Status = "degraded"

			continue
		}

		resp.Body.Checks[dep.Name] = "healthy"
	}

	return resp, nil
}

func ping(ctx context.Context, checker Checker) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	return checker.Ping(ctx)
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
