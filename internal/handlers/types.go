package handlers

import "time"

const apiVersion = "1.0.0"

// ShortenRequest is the request body for creating a short URL.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"The long URL to shorten; https:// is assumed when no scheme is given" example:"https://example.com/very/long/path" json:"url"`
	}
}

// MappingBody describes a stored short URL.
type MappingBody struct {
	ShortURL    string    `doc:"The full short URL"       example:"http://localhost:8888/a1b2c3"      json:"short_url"`
	OriginalURL string    `doc:"The normalized original URL" example:"https://example.com/very/long/path" json:"original_url"`
	ShortCode   string    `doc:"The short code"           example:"a1b2c3"                           json:"short_code"`
	CreatedAt   time.Time `doc:"When the mapping was created"                                        json:"created_at"`
}

// ShortenResponse is returned for both newly created and already registered URLs.
type ShortenResponse struct {
	Status   int
	Location string `doc:"The short URL location" header:"Location"`
	Body     MappingBody
}

// CodeRequest identifies a mapping by its short code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"a1b2c3" path:"code"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `doc:"The original URL" header:"Location"`
}

// StatsResponse reports the stored mapping for a short code.
type StatsResponse struct {
	Body MappingBody
}

// InfoResponse lists the API entry points.
type InfoResponse struct {
	Body struct {
		Message   string            `example:"URL Shortening Service API" json:"message"`
		Version   string            `example:"1.0.0"                      json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
}
