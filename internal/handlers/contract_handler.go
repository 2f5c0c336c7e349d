package handlers

import (
	"fmt"
	"log"
	"net/http"

	"rentaBack/internal/contract/fsm"
	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type ContractHandler struct {
	Service  *services.ContractService
	ErrorLog *log.Logger
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	view, err := h.Service.Get(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = models.PartyTenant
	}
	out, err := h.Service.ListForUser(r.Context(), sess.UserID, role, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Approve is the tenant's acceptance. A stale version answers 409.
func (h *ContractHandler) Approve(w http.ResponseWriter, r *http.Request) {
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
		DisclaimerAccepted bool `json:"disclaimer_accepted"`
		Version            int  `json:"version"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	c, err := h.Service.Approve(r.Context(), sess.UserID, id, body.DisclaimerAccepted, body.Version)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Transition applies any other action named in the path, e.g. POST /contracts/3/sign.
func (h *ContractHandler) Transition(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	action := fsm.Action(getParam(r, "action"))
	if !fsm.Known(action) {
		writeError(w, h.ErrorLog, fmt.Errorf("%w: unknown contract action %q", models.ErrInvalidInput, action))
		return
	}
	if action == fsm.ActionApprove || action == fsm.ActionExpire {
		writeError(w, h.ErrorLog, fsm.ErrNotAllowed)
		return
	}
	var body struct {
		Note    string `json:"note"`
		Version int    `json:"version"`
		termsRequest
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, h.ErrorLog, err)
			return
		}
	}
	var terms *models.ContractTerms
	if action == fsm.ActionRevise {
		t, err := body.terms()
		if err != nil {
			writeError(w, h.ErrorLog, err)
			return
		}
		terms = &t
	}
	c, err := h.Service.Transition(r.Context(), sess.UserID, id, action, body.Note, body.Version, terms)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
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
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	msg, err := h.Service.AddComment(r.Context(), sess.UserID, id, body.Content)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ContractHandler) Messages(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	msgs, err := h.Service.ListMessages(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ContractHandler) MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	n, err := h.Service.MarkMessagesRead(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
