package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Registrar registers URLs. Implemented by shortener.Registrar.
type Registrar interface {
	Register(ctx context.Context, rawURL string) (*shortener.Mapping, bool, error)
}

// Resolver resolves short codes. Implemented by shortener.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, code shortener.Code) (*shortener.Mapping, error)
}

// Counters counts successful shorten and redirect requests. Implemented by metrics.Metrics.
type Counters interface {
	ShortenServed()
	RedirectServed()
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	registrar             Registrar
	resolver              Resolver
	baseURL               string
	publishMappingCreated messaging.Publish[events.MappingCreatedEvent]
	counters              Counters
	logger                *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	registrar Registrar,
	resolver Resolver,
	baseURL string,
	publishMappingCreated messaging.Publish[events.MappingCreatedEvent],
	counters Counters,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		registrar:             registrar,
		resolver:              resolver,
		baseURL:               baseURL,
		publishMappingCreated: publishMappingCreated,
		counters:              counters,
		logger:                logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	mapping, created, err := h.registrar.Register(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error400BadRequest(
				"Invalid URL format. Please provide a valid URL (e.g., https://example.com)")
		}

		h.logger.Error("failed to register url", zap.Error(err))

		if errors.Is(err, shortener.ErrCodeSpaceExhausted) {
			return nil, huma.Error500InternalServerError("failed to generate short code")
		}

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	resp := &ShortenResponse{Status: http.StatusOK}

	if created {
		resp.Status = http.StatusCreated

		if err := h.publishMappingCreated(ctx, events.NewMappingCreatedEvent(mapping)); err != nil {
			h.logger.Error("failed to publish mapping created event",
				zap.String("code", string(mapping.Code)),
				zap.Error(err),
			)
		}
	}

	resp.Body = h.mappingBody(mapping)
	resp.Location = resp.Body.ShortURL

	h.counters.ShortenServed()

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	mapping, err := h.resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	h.counters.RedirectServed()

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: mapping.OriginalURL,
	}, nil
}

func (h *URLHandler) GetStats(ctx context.Context, req *CodeRequest) (*StatsResponse, error) {
	mapping, err := h.resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{Body: h.mappingBody(mapping)}, nil
}

func (h *URLHandler) resolve(ctx context.Context, code string) (*shortener.Mapping, error) {
	mapping, err := h.resolver.Resolve(ctx, shortener.Code(code))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound(fmt.Sprintf("Short code '%s' not found", code))
		}

		h.logger.Error("failed to resolve code", zap.String("code", code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return mapping, nil
}

func (h *URLHandler) mappingBody(mapping *shortener.Mapping) MappingBody {
	return MappingBody{
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, mapping.Code),
		OriginalURL: mapping.OriginalURL,
		ShortCode:   string(mapping.Code),
		CreatedAt:   mapping.CreatedAt,
	}
}

// GetInfo describes the API entry points.
func (h *URLHandler) GetInfo(_ context.Context, _ *struct{}) (*InfoResponse, error) {
	resp := &InfoResponse{}
	resp.Body.Message = "URL Shortening Service API"
	resp.Body.Version = apiVersion
	resp.Body.Endpoints = map[string]string{
		"shorten":  "POST /api/shorten",
		"redirect": "GET /{shortCode}",
		"stats":    "GET /api/stats/{shortCode}",
		"health":   "GET /health",
		"metrics":  "GET /metrics",
		"docs":     "GET /docs",
	}

	return resp, nil
}
