package api

import (
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler handles runtime stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /debug/stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.statsProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
