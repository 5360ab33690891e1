package http

import (
	"errors"
	"net/http"
	"strings"

	"trackmyfin/internal/core"
	"trackmyfin/internal/log"
	"trackmyfin/internal/storage"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type categoryPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.storage.ListCategories(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List categories failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	payload := make([]categoryPayload, 0, len(cats))
	for _, c := range cats {
		payload = append(payload, categoryPayload{ID: c.ID, Name: c.Name, Color: c.Color})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := core.Category{
		UserID: userID(r),
		Name:   strings.TrimSpace(req.Name),
		Color:  strings.TrimSpace(req.Color),
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.storage.CreateCategory(r.Context(), c)
	if err != nil {
		if errors.Is(err, storage.ErrCategoryExists) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		s.logger.ErrorContext(r.Context(), "Create category failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, categoryPayload{ID: saved.ID, Name: saved.Name, Color: saved.Color})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.storage.DeleteCategory(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete category failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
