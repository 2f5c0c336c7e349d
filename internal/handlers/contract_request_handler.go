package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type ContractRequestHandler struct {
	Service  *services.ContractRequestService
	ErrorLog *log.Logger
}

type termsRequest struct {
	MonthlyRent    float64 `json:"monthly_rent"`
	Deposit        float64 `json:"deposit"`
	DurationMonths int     `json:"duration_months"`
	StartDate      string  `json:"start_date"`
}

func (t termsRequest) terms() (models.ContractTerms, error) {
	start, err := parseDate(t.StartDate)
	if err != nil {
		return models.ContractTerms{}, err
	}
	return models.ContractTerms{
		MonthlyRent:    t.MonthlyRent,
		Deposit:        t.Deposit,
		DurationMonths: t.DurationMonths,
		StartDate:      start,
	}, nil
}

func (h *ContractRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var body struct {
		PropertyID int64  `json:"property_id"`
		Message    string `json:"message"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if body.PropertyID <= 0 {
		writeError(w, h.ErrorLog, models.ErrInvalidInput)
		return
	}
	req, err := h.Service.Create(r.Context(), sess.UserID, body.PropertyID, body.Message)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *ContractRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
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
		Approve bool `json:"approve"`
		termsRequest
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	terms, err := body.terms()
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	res, err := h.Service.Decide(r.Context(), sess.UserID, id, body.Approve, terms)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ContractRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = models.PartyTenant
	}
	out, err := h.Service.ListForUser(r.Context(), sess.UserID, role)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
