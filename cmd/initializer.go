package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"rentaBack/internal/cache"
	"rentaBack/internal/config"
	"rentaBack/internal/geo"
	"rentaBack/internal/handlers"
	"rentaBack/internal/push"
	"rentaBack/internal/repositories"
	"rentaBack/internal/services"
	"rentaBack/internal/session"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	sessions       *session.Provider
	webhookLimiter *RateLimiter

	propertyHandler        *handlers.PropertyHandler
	favoriteHandler        *handlers.FavoriteHandler
	reviewHandler          *handlers.ReviewHandler
	intentionHandler       *handlers.IntentionHandler
	profileHandler         *handlers.ProfileHandler
	contractRequestHandler *handlers.ContractRequestHandler
	contractHandler        *handlers.ContractHandler
	subscriptionHandler    *handlers.SubscriptionHandler
	webhookHandler         *handlers.WebhookHandler
	notificationHandler    *handlers.NotificationHandler
	messageHandler         *handlers.MessageHandler
	kycHandler             *handlers.KYCHandler
	insightsHandler        *handlers.InsightsHandler

	subscriptionService *services.SubscriptionService
	contractService     *services.ContractService
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, sender push.Sender, errorLog, infoLog *log.Logger, logger *slog.Logger) *application {
	redisCache := cache.NewRedis(rdb, cfg.Redis.Prefix)

	// Repositories
	propertyRepo := &repositories.PropertyRepository{DB: db}
	favoriteRepo := &repositories.FavoriteRepository{DB: db}
	reviewRepo := &repositories.ReviewRepository{DB: db}
	intentionRepo := &repositories.IntentionRepository{DB: db}
	profileRepo := &repositories.ProfileRepository{DB: db}
	requestRepo := &repositories.ContractRequestRepository{DB: db}
	contractRepo := &repositories.ContractRepository{DB: db}
	contractMessageRepo := &repositories.ContractMessageRepository{DB: db}
	subscriptionRepo := &repositories.SubscriptionRepository{DB: db}
	webhookEventRepo := &repositories.WebhookEventRepository{DB: db}
	notificationRepo := &repositories.NotificationRepository{DB: db}
	chatRepo := &repositories.ChatRepository{DB: db}
	messageRepo := &repositories.MessageRepository{DB: db}
	kycRepo := &repositories.KYCRepository{DB: db}
	insuranceRepo := &repositories.InsuranceRepository{DB: db}

	// Services
	notificationService := &services.NotificationService{Repo: notificationRepo, Sender: sender, ErrorLog: errorLog}

	propertyService := &services.PropertyService{Repo: propertyRepo, Favorites: favoriteRepo, ErrorLog: errorLog}
	if cfg.Geocoding.BaseURL != "" {
		httpClient := &http.Client{Timeout: 10 * time.Second}
		propertyService.Geocoder = geo.NewClient(httpClient, cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent,
			cfg.Geocoding.CountryCode, redisCache, logger.With("component", "geocoder"))
	}

	favoriteService := &services.FavoriteService{Repo: favoriteRepo, Cache: redisCache, ErrorLog: errorLog}
	reviewService := &services.ReviewService{Repo: reviewRepo}
	intentionService := &services.IntentionService{Repo: intentionRepo, Properties: propertyRepo, Notifier: notificationService}
	profileService := &services.ProfileService{Repo: profileRepo}
	requestService := &services.ContractRequestService{
		Requests:      requestRepo,
		Properties:    propertyRepo,
		Profiles:      profileRepo,
		Subscriptions: subscriptionRepo,
		KYC:           kycRepo,
		Notifier:      notificationService,
	}
	contractService := &services.ContractService{
		Contracts:  contractRepo,
		Messages:   contractMessageRepo,
		Properties: propertyRepo,
		Profiles:   profileRepo,
		Notifier:   notificationService,
		Grace:      cfg.ExpiryGrace(),
	}
	subscriptionService := &services.SubscriptionService{
		Repo:            subscriptionRepo,
		Catalog:         cfg.Plans,
		PublicKey:       cfg.Wompi.PublicKey,
		IntegritySecret: cfg.Wompi.IntegritySecret,
		RedirectURL:     cfg.Wompi.RedirectURL,
	}
	webhookService := &services.PaymentWebhookService{
		Payments:     subscriptionRepo,
		Events:       webhookEventRepo,
		Notifier:     notificationService,
		EventsSecret: cfg.Wompi.EventsSecret,
		Logger:       logger.With("component", "wompi_webhook"),
	}
	messagingService := &services.MessagingService{Chats: chatRepo, Messages: messageRepo, Notifier: notificationService}
	kycService := &services.KYCService{Repo: kycRepo, Insurance: insuranceRepo, Notifier: notificationService, ErrorLog: errorLog}
	insightsService := &services.InsightsService{Properties: propertyRepo, Subscriptions: subscriptionRepo, Cache: redisCache}

	// Handlers
	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		db:             db,
		sessions:       session.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.Audience),
		webhookLimiter: NewRateLimiter(cfg.Wompi.WebhookRPS, cfg.Wompi.WebhookBurst),

		propertyHandler:        &handlers.PropertyHandler{Service: propertyService, ErrorLog: errorLog},
		favoriteHandler:        &handlers.FavoriteHandler{Service: favoriteService, ErrorLog: errorLog},
		reviewHandler:          &handlers.ReviewHandler{Service: reviewService, ErrorLog: errorLog},
		intentionHandler:       &handlers.IntentionHandler{Service: intentionService, ErrorLog: errorLog},
		profileHandler:         &handlers.ProfileHandler{Service: profileService, ErrorLog: errorLog},
		contractRequestHandler: &handlers.ContractRequestHandler{Service: requestService, ErrorLog: errorLog},
		contractHandler:        &handlers.ContractHandler{Service: contractService, ErrorLog: errorLog},
		subscriptionHandler:    &handlers.SubscriptionHandler{Service: subscriptionService, ErrorLog: errorLog},
		webhookHandler:         &handlers.WebhookHandler{Service: webhookService, ErrorLog: errorLog},
		notificationHandler:    &handlers.NotificationHandler{Service: notificationService, ErrorLog: errorLog},
		messageHandler:         &handlers.MessageHandler{Service: messagingService, ErrorLog: errorLog},
		kycHandler:             &handlers.KYCHandler{Service: kycService, ErrorLog: errorLog},
		insightsHandler:        &handlers.InsightsHandler{Service: insightsService, ErrorLog: errorLog},

		subscriptionService: subscriptionService,
		contractService:     contractService,
	}
}
