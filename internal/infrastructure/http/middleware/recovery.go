package middleware

import (
	"net/http"
	"runtime/debug"

	domainErrors "github.com/yuzvak/resale-backoffice/internal/domain/errors"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

func NewRecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.Error("Panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
						"method", r.Method,
					)

					response.WriteError(w, http.StatusInternalServerError, domainErrors.KindInternal, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
