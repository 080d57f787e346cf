package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware caps how long one conversational turn may run. The
// deadline propagates through the handler's context into the generation,
// compute, and geocode calls, each of which treats cancellation as a
// failure of that stage and degrades. Handlers are expected to honor
// context.Done(); they are not forcibly terminated.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
