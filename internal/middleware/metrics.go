package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// RequestObserver records served requests. Implemented by metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
}

// RequestMetrics returns a Huma middleware that records request counts and
// latency labelled by the operation's path template.
func RequestMetrics(observer RequestObserver) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		endpoint := ctx.URL().Path
		if op := ctx.Operation(); op != nil {
			endpoint = op.Path
		}

		observer.ObserveRequest(ctx.Method(), endpoint, ctx.Status(), time.Since(start))
	}
}
