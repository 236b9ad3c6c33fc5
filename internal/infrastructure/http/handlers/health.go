package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/response"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

const healthPingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store     Pinger
	redis     Pinger
	log       *logger.Logger
	startTime time.Time
}

// NewHealthHandler takes a nil redis when the service runs without one.
func NewHealthHandler(store Pinger, redis Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		redis:     redis,
		log:       log,
		startTime: time.Now().UTC(),
	}
}

type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

type ServicesStatus struct {
	App      string `json:"app"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

type HealthData struct {
	ServicesStatus ServicesStatus `json:"services_status"`
	Uptime         string         `json:"uptime"`
	Memory         MemoryMetrics  `json:"memory"`
	Goroutines     int            `json:"goroutines"`
}

func (h *HealthHandler) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		dbStatus := h.status(ctx, "database", h.store)

		redisStatus := "DISABLED"
		if h.redis != nil {
			redisStatus = h.status(ctx, "redis", h.redis)
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		data := HealthData{
			ServicesStatus: ServicesStatus{
				App:      "UP",
				Database: dbStatus,
				Redis:    redisStatus,
			},
			Uptime: time.Since(h.startTime).String(),
			Memory: MemoryMetrics{
				Alloc:      mem.Alloc,
				TotalAlloc: mem.TotalAlloc,
				Sys:        mem.Sys,
				NumGC:      mem.NumGC,
			},
			Goroutines: runtime.NumGoroutine(),
		}

		response.WriteSuccess(w, data)
	}
}

func (h *HealthHandler) status(ctx context.Context, name string, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		h.log.Warn("Health check failed", "service", name, "error", err.Error())
		return "DOWN"
	}
	return "UP"
}
