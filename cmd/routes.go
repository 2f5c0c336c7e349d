package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"rentaBack/internal/metrics"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, metrics.InstrumentHandler, secureHeaders, makeResponseJSON)
	publicMiddleware := standardMiddleware.Append(app.authenticate)
	authMiddleware := publicMiddleware.Append(app.requireSession)
	adminAuthMiddleware := publicMiddleware.Append(app.requireAdmin)
	webhookMiddleware := alice.New(app.recoverPanic, app.logRequest, metrics.InstrumentHandler, app.webhookLimiter.Handler)

	mux := pat.New()

	mux.Get("/healthz", standardMiddleware.ThenFunc(app.health))
	mux.Get("/metrics", metrics.Handler())

	// Properties
	mux.Get("/properties", publicMiddleware.ThenFunc(app.propertyHandler.Search))
	mux.Post("/properties", authMiddleware.ThenFunc(app.propertyHandler.Create))
	mux.Get("/me/properties", authMiddleware.ThenFunc(app.propertyHandler.ListMine))
	mux.Get("/geocode/reverse", publicMiddleware.ThenFunc(app.propertyHandler.ReverseGeocode))
	mux.Get("/properties/:id", publicMiddleware.ThenFunc(app.propertyHandler.Get))
	mux.Put("/properties/:id", authMiddleware.ThenFunc(app.propertyHandler.Update))
	mux.Put("/properties/:id/status", authMiddleware.ThenFunc(app.propertyHandler.SetStatus))
	mux.Del("/properties/:id", authMiddleware.ThenFunc(app.propertyHandler.Archive))

	// Favorites
	mux.Get("/me/favorites", authMiddleware.ThenFunc(app.favoriteHandler.List))
	mux.Get("/properties/:id/favorites/count", publicMiddleware.ThenFunc(app.favoriteHandler.Count))
	mux.Get("/properties/:id/favorite", authMiddleware.ThenFunc(app.favoriteHandler.Check))
	mux.Post("/properties/:id/favorite", authMiddleware.ThenFunc(app.favoriteHandler.Add))
	mux.Del("/properties/:id/favorite", authMiddleware.ThenFunc(app.favoriteHandler.Remove))

	// Reviews
	mux.Get("/properties/:id/reviews", publicMiddleware.ThenFunc(app.reviewHandler.List))
	mux.Post("/properties/:id/reviews", authMiddleware.ThenFunc(app.reviewHandler.Create))
	mux.Del("/reviews/:review_id", authMiddleware.ThenFunc(app.reviewHandler.Delete))

	// Intentions
	mux.Post("/properties/:id/intentions", authMiddleware.ThenFunc(app.intentionHandler.Express))
	mux.Get("/intentions", authMiddleware.ThenFunc(app.intentionHandler.List))

	// Profiles
	mux.Get("/me", authMiddleware.ThenFunc(app.profileHandler.Me))
	mux.Put("/me", authMiddleware.ThenFunc(app.profileHandler.Save))
	mux.Get("/profiles/:id", publicMiddleware.ThenFunc(app.profileHandler.Get))

	// Contract requests
	mux.Post("/contract-requests", authMiddleware.ThenFunc(app.contractRequestHandler.Create))
	mux.Get("/contract-requests", authMiddleware.ThenFunc(app.contractRequestHandler.List))
	mux.Post("/contract-requests/:id/decision", authMiddleware.ThenFunc(app.contractRequestHandler.Decide))

	// Contracts
	mux.Get("/contracts", authMiddleware.ThenFunc(app.contractHandler.List))
	mux.Get("/contracts/:id", authMiddleware.ThenFunc(app.contractHandler.Get))
	mux.Get("/contracts/:id/messages", authMiddleware.ThenFunc(app.contractHandler.Messages))
	mux.Post("/contracts/:id/messages", authMiddleware.ThenFunc(app.contractHandler.AddMessage))
	mux.Post("/contracts/:id/messages/read", authMiddleware.ThenFunc(app.contractHandler.MarkMessagesRead))
	mux.Post("/contracts/:id/approve", authMiddleware.ThenFunc(app.contractHandler.Approve))
	mux.Post("/contracts/:id/:action", authMiddleware.ThenFunc(app.contractHandler.Transition))

	// Subscriptions
	mux.Get("/plans", publicMiddleware.ThenFunc(app.subscriptionHandler.Plans))
	mux.Get("/subscription", authMiddleware.ThenFunc(app.subscriptionHandler.Current))
	mux.Get("/subscription/payments", authMiddleware.ThenFunc(app.subscriptionHandler.Payments))
	mux.Post("/subscription/checkout", authMiddleware.ThenFunc(app.subscriptionHandler.Checkout))
	mux.Post("/subscription/:id/transaction", authMiddleware.ThenFunc(app.subscriptionHandler.AttachTransaction))
	mux.Post("/webhooks/wompi", webhookMiddleware.ThenFunc(app.webhookHandler.Wompi))

	// Insights
	mux.Get("/insights", publicMiddleware.ThenFunc(app.insightsHandler.Get))

	// Notifications
	mux.Get("/notifications", authMiddleware.ThenFunc(app.notificationHandler.List))
	mux.Get("/notifications/unread", authMiddleware.ThenFunc(app.notificationHandler.UnreadCount))
	mux.Post("/notifications/read", authMiddleware.ThenFunc(app.notificationHandler.MarkRead))
	mux.Post("/notifications/:id/read", authMiddleware.ThenFunc(app.notificationHandler.MarkRead))
	mux.Post("/devices", authMiddleware.ThenFunc(app.notificationHandler.RegisterToken))
	mux.Del("/devices", authMiddleware.ThenFunc(app.notificationHandler.RemoveToken))

	// Messaging
	mux.Post("/messages", authMiddleware.ThenFunc(app.messageHandler.Send))
	mux.Get("/conversations", authMiddleware.ThenFunc(app.messageHandler.Conversations))
	mux.Get("/conversations/:id/messages", authMiddleware.ThenFunc(app.messageHandler.History))
	mux.Post("/conversations/:id/read", authMiddleware.ThenFunc(app.messageHandler.MarkRead))

	// KYC and insurance
	mux.Post("/kyc", authMiddleware.ThenFunc(app.kycHandler.Submit))
	mux.Get("/kyc", authMiddleware.ThenFunc(app.kycHandler.Status))
	mux.Get("/insurance/status", authMiddleware.ThenFunc(app.kycHandler.InsuranceStatus))
	mux.Get("/admin/kyc", adminAuthMiddleware.ThenFunc(app.kycHandler.Pending))
	mux.Post("/admin/kyc/:id/review", adminAuthMiddleware.ThenFunc(app.kycHandler.Review))
	mux.Post("/admin/insurance", adminAuthMiddleware.ThenFunc(app.kycHandler.RecordInsurance))

	return mux
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.errorLog.Printf("health: %v", err)
		jsonError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}
