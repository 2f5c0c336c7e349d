package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type MessageHandler struct {
	Service  *services.MessagingService
	ErrorLog *log.Logger
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	msg, err := h.Service.Send(r.Context(), sess.UserID, req)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	out, err := h.Service.Conversations(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// History pages backwards through a conversation with ?before=<message id>.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	before := int64(queryInt(r, "before", 0))
	out, err := h.Service.History(r.Context(), sess.UserID, id, before, queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	n, err := h.Service.MarkRead(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
