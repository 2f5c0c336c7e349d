package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type ReviewHandler struct {
	Service  *services.ReviewService
	ErrorLog *log.Logger
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	propertyID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	var rev models.Review
	if err := decodeJSON(w, r, &rev); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	rev.PropertyID = propertyID
	created, err := h.Service.Create(r.Context(), sess.UserID, rev)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "review_id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := h.Service.Delete(r.Context(), sess.UserID, id); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	out, err := h.Service.List(r.Context(), propertyID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
