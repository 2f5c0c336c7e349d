package handlers

import (
	"log"
	"net/http"
	"strings"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type PropertyHandler struct {
	Service  *services.PropertyService
	ErrorLog *log.Logger
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	var p models.Property
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	created, err := h.Service.Create(r.Context(), sess.UserID, p)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	var p models.Property
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	p.ID = id
	updated, err := h.Service.Update(r.Context(), sess.UserID, p)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PropertyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
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
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := h.Service.SetStatus(r.Context(), sess.UserID, id, strings.TrimSpace(body.Status)); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) Archive(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	if err := h.Service.Archive(r.Context(), sess.UserID, id); err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	p, err := h.Service.Get(r.Context(), id, optionalUserID(r))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Search lists active properties. Filters come from the query string.
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PropertyFilter{
		City:         strings.TrimSpace(q.Get("city")),
		Neighborhood: strings.TrimSpace(q.Get("neighborhood")),
		PropertyType: strings.TrimSpace(q.Get("property_type")),
		PriceFrom:    queryFloat(r, "price_from"),
		PriceTo:      queryFloat(r, "price_to"),
		MinBedrooms:  queryInt(r, "bedrooms", 0),
		Sort:         queryInt(r, "sort", 1),
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", 20),
	}
	resp, err := h.Service.Search(r.Context(), f, optionalUserID(r))
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	props, err := h.Service.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (h *PropertyHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lon := queryFloat(r, "lat"), queryFloat(r, "lon")
	if lat == 0 && lon == 0 {
		writeError(w, h.ErrorLog, models.ErrInvalidInput)
		return
	}
	pt, err := h.Service.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}
