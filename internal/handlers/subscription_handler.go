package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/services"
)

type SubscriptionHandler struct {
	Service  *services.SubscriptionService
	ErrorLog *log.Logger
}

func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Plans())
}

// Current returns the caller's subscription and PRO entitlement.
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Current(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var body struct {
		PlanID string `json:"plan_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	co, err := h.Service.Checkout(r.Context(), sess.UserID, body.PlanID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, co)
}

func (h *SubscriptionHandler) AttachTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	var body struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := h.Service.AttachTransaction(r.Context(), sess.UserID, id, body.TransactionID); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionHandler) Payments(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	out, err := h.Service.Payments(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
