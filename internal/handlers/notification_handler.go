package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type NotificationHandler struct {
	Service  *services.NotificationService
	ErrorLog *log.Logger
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	onlyUnread := r.URL.Query().Get("unread") == "true"
	out, err := h.Service.List(r.Context(), sess.UserID, onlyUnread, queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	n, err := h.Service.UnreadCount(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var id int64
	if getParam(r, "id") != "" {
		var err error
		if id, err = idParam(r, "id"); err != nil {
			writeError(w, h.ErrorLog, err)
			return
		}
	}
	if err := h.Service.MarkRead(r.Context(), sess.UserID, id); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var t models.DeviceToken
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	t.UserID = sess.UserID
	if err := h.Service.RegisterToken(r.Context(), t); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var t models.DeviceToken
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := h.Service.RemoveToken(r.Context(), sess.UserID, t.Token); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
