package http

import (
	"encoding/json"
	"net/http"

	"cardtrack/internal/core"
)

type categoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// handleListCategories returns the owner's categories, seeding the
// default set first so a fresh account never sees an empty list.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, ownerID int64) {
	if err := s.svcs.Categories.SeedDefaultCategories(r.Context(), ownerID); err != nil {
		writeError(w, r, err)
		return
	}
	cats, err := s.svcs.Categories.ListCategories(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, &core.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	c := core.Category{OwnerID: ownerID}
	if body.Name != nil {
		c.Name = sanitizeInput(*body.Name)
	}
	if body.Icon != nil {
		c.Icon = sanitizeInput(*body.Icon)
	}
	if body.Color != nil {
		c.Color = sanitizeInput(*body.Color)
	}
	if err := c.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svcs.Categories.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, &core.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	c, err := s.svcs.Categories.GetCategory(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if body.Name != nil {
		c.Name = sanitizeInput(*body.Name)
	}
	if body.Icon != nil {
		c.Icon = sanitizeInput(*body.Icon)
	}
	if body.Color != nil {
		c.Color = sanitizeInput(*body.Color)
	}
	if err := c.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svcs.Categories.UpdateCategory(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteCategory removes a category. Its transactions are
// reassigned to the default bucket; the last remaining category cannot
// be deleted.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svcs.Categories.DeleteCategory(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
