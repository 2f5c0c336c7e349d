package handlers

import (
	"context"
	"log"
	"net/http"

	"rentaBack/internal/services"
)

type FavoriteHandler struct {
	Service  *services.FavoriteService
	ErrorLog *log.Logger
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.Service.Add)
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.Service.Remove)
}

func (h *FavoriteHandler) change(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID string, propertyID int64) error) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := apply(r.Context(), sess.UserID, id); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	count, err := h.Service.Count(r.Context(), id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"favorite_count": count})
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	favs, err := h.Service.List(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (h *FavoriteHandler) Check(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	liked, err := h.Service.IsFavorite(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *FavoriteHandler) Count(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	count, err := h.Service.Count(r.Context(), id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"favorite_count": count})
}
