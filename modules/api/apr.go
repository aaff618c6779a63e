package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/obralabs/sentinela/core"
	"github.com/obralabs/sentinela/svc/apr"
)

type aprHandler struct {
	store apr.Store
	log   *slog.Logger
}

func (h *aprHandler) create(w http.ResponseWriter, r *http.Request) {
	var a apr.APR
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if a.ProjectID == uuid.Nil || a.Title == "" {
		core.WriteError(w, http.StatusBadRequest, "Missing project_id or title")
		return
	}

	if err := h.store.Create(r.Context(), &a); err != nil {
		h.log.ErrorContext(r.Context(), "apr creation failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusCreated, a)
}

func (h *aprHandler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Missing or invalid project_id")
		return
	}

	aprs, err := h.store.ListByProject(r.Context(), projectID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "apr listing failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	if aprs == nil {
		aprs = []apr.APR{}
	}
	core.WriteJSON(w, http.StatusOK, aprs)
}

func (h *aprHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid APR id")
		return
	}

	a, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apr.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "APR not found")
			return
		}
		h.log.ErrorContext(r.Context(), "apr fetch failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, a)
}

func (h *aprHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid APR id")
		return
	}

	var a apr.APR
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	a.ID = id

	if err := h.store.Update(r.Context(), &a); err != nil {
		if errors.Is(err, apr.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "APR not found")
			return
		}
		h.log.ErrorContext(r.Context(), "apr update failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, a)
}

func (h *aprHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid APR id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apr.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "APR not found")
			return
		}
		h.log.ErrorContext(r.Context(), "apr deletion failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
