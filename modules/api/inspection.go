package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/obralabs/sentinela/core"
	"github.com/obralabs/sentinela/svc/inspection"
)

type inspectionHandler struct {
	store inspection.Store
	log   *slog.Logger
}

func (h *inspectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var i inspection.Inspection
	if err := json.NewDecoder(r.Body).Decode(&i); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if i.ProjectID == uuid.Nil || i.Title == "" {
		core.WriteError(w, http.StatusBadRequest, "Missing project_id or title")
		return
	}

	if err := h.store.Create(r.Context(), &i); err != nil {
		h.log.ErrorContext(r.Context(), "inspection creation failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusCreated, i)
}

func (h *inspectionHandler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Missing or invalid project_id")
		return
	}

	inspections, err := h.store.ListByProject(r.Context(), projectID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "inspection listing failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	if inspections == nil {
		inspections = []inspection.Inspection{}
	}
	core.WriteJSON(w, http.StatusOK, inspections)
}

func (h *inspectionHandler) get(w http.ResponseWriter, r *http.Request) {
	i, ok := h.fetch(w, r)
	if !ok {
		return
	}
	core.WriteJSON(w, http.StatusOK, i)
}

func (h *inspectionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid inspection id")
		return
	}

	var i inspection.Inspection
	if err := json.NewDecoder(r.Body).Decode(&i); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	i.ID = id

	if err := h.store.Update(r.Context(), &i); err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Inspection not found")
			return
		}
		h.log.ErrorContext(r.Context(), "inspection update failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, i)
}

func (h *inspectionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid inspection id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Inspection not found")
			return
		}
		h.log.ErrorContext(r.Context(), "inspection deletion failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// report renders the printable HTML report for an inspection.
func (h *inspectionHandler) report(w http.ResponseWriter, r *http.Request) {
	i, ok := h.fetch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := inspection.RenderReport(w, inspection.ReportData{
		Title:     i.Title,
		Date:      i.CreatedAt,
		Score:     i.Score,
		Items:     i.Items,
		PhotoURLs: i.PhotoURLs,
		Signature: i.Signature,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "report rendering failed", slog.Any("error", err))
	}
}

func (h *inspectionHandler) fetch(w http.ResponseWriter, r *http.Request) (*inspection.Inspection, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid inspection id")
		return nil, false
	}

	i, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, inspection.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Inspection not found")
			return nil, false
		}
		h.log.ErrorContext(r.Context(), "inspection fetch failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return nil, false
	}
	return i, true
}
