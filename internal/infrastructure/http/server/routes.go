package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/middleware"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(s.logger))
	r.Use(monitoring.WrapHandler)
	r.Use(middleware.NewRecoveryMiddleware(s.logger))
	r.Use(s.corsMiddleware)

	r.Handle("/metrics", monitoring.MetricsHandler())
	r.Get("/health", s.healthHandler.HandleHealth())

	r.Group(func(r chi.Router) {
		r.Use(s.timeoutMiddleware)

		r.Route("/buy", func(r chi.Router) {
			r.Post("/create", s.buyHandler.HandleCreate)
			r.Put("/update/{id}", s.buyHandler.HandleUpdate)
			r.Delete("/remove/{id}", s.buyHandler.HandleRemove)
			r.Get("/list", s.buyHandler.HandleList)
			r.Get("/serial/{serial}", s.buyHandler.HandleLookupSerial)
		})

		r.Route("/sell", func(r chi.Router) {
			r.Use(middleware.NewStationMiddleware(s.defaultStation))

			r.Post("/create", s.sellHandler.HandleCreate)
			r.Get("/list", s.sellHandler.HandleList)
			r.Delete("/remove/{id}", s.sellHandler.HandleRemove)
			r.Post("/confirm", s.sellHandler.HandleConfirm)
			r.Get("/history", s.sellHandler.HandleHistory)
			r.Get("/history/{id}", s.sellHandler.HandleGetSale)
		})
	})

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, "+middleware.StationHeader)
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, s.requestTimeout, `{"message":"Request timeout","code":"transient_storage_error"}`)
}
