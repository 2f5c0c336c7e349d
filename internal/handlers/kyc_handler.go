package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type KYCHandler struct {
	Service  *services.KYCService
	ErrorLog *log.Logger
}

type kycStatusResponse struct {
	Verification *models.KYCVerification `json:"verification"`
	Valid        bool                    `json:"valid"`
}

func (h *KYCHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var body struct {
		DocumentType   string `json:"document_type"`
		DocumentNumber string `json:"document_number"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	k, err := h.Service.Submit(r.Context(), sess.UserID, body.DocumentType, body.DocumentNumber)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, k)
}

func (h *KYCHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	k, valid, err := h.Service.Status(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, kycStatusResponse{Verification: k, Valid: valid})
}

func (h *KYCHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	out, err := h.Service.ListPending(r.Context())
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *KYCHandler) Review(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	var body struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	k, err := h.Service.Review(r.Context(), id, body.Approve, body.Notes)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

// RecordInsurance stores an insurer's approval for a tenant. Admin only.
func (h *KYCHandler) RecordInsurance(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var a models.InsuranceApproval
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	out, err := h.Service.RecordInsurance(r.Context(), a)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *KYCHandler) InsuranceStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	active, err := h.Service.HasActiveInsuranceApproval(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": active})
}
