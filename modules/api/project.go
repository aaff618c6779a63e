package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/obralabs/sentinela/core"
	"github.com/obralabs/sentinela/svc/project"
)

type projectHandler struct {
	svc ProjectService
	log *slog.Logger
}

func (h *projectHandler) create(w http.ResponseWriter, r *http.Request) {
	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.svc.Create(r.Context(), &p); err != nil {
		if errors.Is(err, project.ErrMissingName) || errors.Is(err, project.ErrMissingUser) {
			core.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "project creation failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusCreated, p)
}

func (h *projectHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Missing or invalid user_id")
		return
	}

	projects, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "project listing failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	core.WriteJSON(w, http.StatusOK, projects)
}

func (h *projectHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.log.ErrorContext(r.Context(), "project fetch failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, p)
}

func (h *projectHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	p.ID = id

	if err := h.svc.Update(r.Context(), &p); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.log.ErrorContext(r.Context(), "project update failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, p)
}

func (h *projectHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			core.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.log.ErrorContext(r.Context(), "project deletion failed", slog.Any("error", err))
		core.WriteHTTPError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *projectHandler) syncCoordinates(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SyncCoordinates(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "coordinate sync failed", slog.Any("error", err))
		core.WriteError(w, http.StatusInternalServerError, "Coordinate sync failed")
		return
	}
	core.WriteJSON(w, http.StatusOK, report)
}
