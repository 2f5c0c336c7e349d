package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"rentaBack/internal/services"
)

const maxWebhookBytes = 64 << 10

type webhookProcessor interface {
	Handle(ctx context.Context, raw []byte, header http.Header) (services.WebhookResult, error)
}

type WebhookHandler struct {
	Service  webhookProcessor
	ErrorLog *log.Logger
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Wompi receives gateway transaction events. The gateway retries anything
// that is not a 2xx, so only failures worth retrying answer 500. Every
// delivery is written to the webhook event log, including transactions
// that match no subscription and answer 404; those leave subscriptions
// and payments untouched.
func (h *WebhookHandler) Wompi(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, webhookResponse{Message: "could not read body"})
		return
	}

	res, err := h.Service.Handle(r.Context(), raw, r.Header)
	if err != nil {
		status := errorStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			if h.ErrorLog != nil {
				h.ErrorLog.Printf("wompi webhook: %v", err)
			}
			msg = "internal server error"
		}
		writeJSON(w, status, webhookResponse{Message: msg})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{Success: true, Message: res.Message})
}
