package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// POST /api/shorten - Create short URL
	huma.Register(api, huma.Operation{
		OperationID:   "shorten-url",
		Method:        http.MethodPost,
		Path:          "/api/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a short URL, or returns the existing one if the URL was already shortened.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, urlHandler.CreateShortURL)

	// GET /api/stats/{code} - Mapping details
	huma.Register(api, huma.Operation{
		OperationID: "get-url-stats",
		Method:      http.MethodGet,
		Path:        "/api/stats/{code}",
		Summary:     "Get short URL details",
		Description: "Returns the original URL and creation time for a short code.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, urlHandler.GetStats)

	// GET / - API info
	huma.Register(api, huma.Operation{
		OperationID: "api-info",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "API info",
		Tags:        []string{"Info"},
	}, urlHandler.GetInfo)

	// GET /{code} - Redirect to original URL
	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
	}, urlHandler.RedirectToURL)
}
