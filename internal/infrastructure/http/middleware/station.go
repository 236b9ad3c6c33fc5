package middleware

import (
	"context"
	"net/http"

	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
)

const StationHeader = "X-Station-ID"

type stationKey struct{}

// NewStationMiddleware resolves the cashier station for the request. A missing
// header selects defaultStation.
func NewStationMiddleware(defaultStation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			station := r.Header.Get(StationHeader)
			if station == "" {
				station = defaultStation
			}
			if !config.ValidStationID(station) {
				response.WriteValidationError(w, "Invalid station", map[string]string{
					"station": "must match [A-Za-z0-9_-]{1,64}",
				})
				return
			}

			ctx := context.WithValue(r.Context(), stationKey{}, station)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func StationFrom(ctx context.Context) string {
	station, _ := ctx.Value(stationKey{}).(string)
	return station
}

// WithStation is used by tests that call handlers without the middleware.
func WithStation(ctx context.Context, station string) context.Context {
	return context.WithValue(ctx, stationKey{}, station)
}
