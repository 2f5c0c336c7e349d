package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/services"
)

type IntentionHandler struct {
	Service  *services.IntentionService
	ErrorLog *log.Logger
}

func (h *IntentionHandler) Express(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	propertyID, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, h.ErrorLog, err)
			return
		}
	}
	in, err := h.Service.Express(r.Context(), sess.UserID, propertyID, body.Message)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// List returns intentions received as owner, or sent as tenant with ?role=tenant.
func (h *IntentionHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	list := h.Service.ListForOwner
	if r.URL.Query().Get("role") == "tenant" {
		list = h.Service.ListForTenant
	}
	out, err := list(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
