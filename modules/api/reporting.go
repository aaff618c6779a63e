package api

import (
	"log/slog"
	"net/http"

	"github.com/obralabs/sentinela/core"
)

type reportingHandler struct {
	svc ReportingService
	log *slog.Logger
}

func (h *reportingHandler) mrr(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.MRR(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "mrr report failed", slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Error calculating MRR")
		return
	}
	core.WriteJSON(w, http.StatusOK, report)
}

func (h *reportingHandler) clientsCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Clients(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "clients count failed", slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Error counting clients")
		return
	}
	core.WriteJSON(w, http.StatusOK, counts)
}

func (h *reportingHandler) whitelabelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "whitelabel stats failed", slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Error loading stats")
		return
	}
	core.WriteJSON(w, http.StatusOK, stats)
}
