package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler answers liveness probes. It touches no dependencies, so a
// healthy response only means the process serves HTTP.
type HealthHandler struct {
	log *zap.Logger
}

func NewHealthHandler(log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		log: log,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("health check", zap.String("remote", r.RemoteAddr))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
