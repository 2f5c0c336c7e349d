package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type ProfileHandler struct {
	Service  *services.ProfileService
	ErrorLog *log.Logger
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var p models.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	saved, err := h.Service.Save(r.Context(), sess.UserID, sess.Email, p)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// Get returns the public part of another user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), getParam(r, "id"))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileSummary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL})
}
