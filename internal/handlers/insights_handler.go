package handlers

import (
	"log"
	"net/http"

	"rentaBack/internal/models"
	"rentaBack/internal/services"
)

type InsightsHandler struct {
	Service  *services.InsightsService
	ErrorLog *log.Logger
}

// Get answers GET /insights?city=&neighborhood=&property_type=&bedrooms=&property_id=.
// Anonymous callers get the basic tier.
func (h *InsightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.InsightFilter{
		City:         q.Get("city"),
		Neighborhood: q.Get("neighborhood"),
		PropertyType: q.Get("property_type"),
		Bedrooms:     queryInt(r, "bedrooms", 0),
		PropertyID:   int64(queryInt(r, "property_id", 0)),
	}
	out, err := h.Service.Insights(r.Context(), optionalUserID(r), f)
	if err != nil {
		writeError(w, h.ErrorLog, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
