package router

import (
	"context"
	"net/http"

	"github.com/RLP0AI/roleplay-ai-app/internal/api/v1/handler"
	"github.com/RLP0AI/roleplay-ai-app/internal/config"
	"github.com/RLP0AI/roleplay-ai-app/internal/middleware"
	"github.com/RLP0AI/roleplay-ai-app/internal/repository"
	"github.com/RLP0AI/roleplay-ai-app/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the full application: database pool, repositories, services,
// handlers and the route tree. The returned pool is owned by the caller and
// must be closed on shutdown.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepo(pool)
	characterRepo := repository.NewCharacterRepo(pool)
	chatRepo := repository.NewChatRepo(pool)
	ledgerRepo := repository.NewLedgerRepo(pool)
	paymentRepo := repository.NewPaymentRepo(pool)

	provider := service.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
	moderator := service.NewBannedWordModerator()
	gateway := service.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, logger)
	characterSvc := service.NewCharacterService(characterRepo, moderator, logger)
	chatSvc := service.NewChatService(userRepo, characterRepo, chatRepo, ledgerRepo, provider, logger)
	creditSvc := service.NewCreditService(userRepo, ledgerRepo, logger)
	paymentSvc := service.NewPaymentService(paymentRepo, gateway, cfg.RazorpayKeySecret, logger)

	authHandler := handler.NewAuthHandler(authSvc, validate, logger)
	characterHandler := handler.NewCharacterHandler(characterSvc, validate, logger)
	chatHandler := handler.NewChatHandler(chatSvc, validate, logger)
	creditHandler := handler.NewCreditHandler(creditSvc, logger)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, validate, logger)

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(c.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit())
		r.Use(middleware.BodyLimit)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/verify", authHandler.Verify)
		})

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/characters", func(r chi.Router) {
				r.Post("/", characterHandler.Create)
				r.Get("/", characterHandler.List)
				r.Get("/{id}", characterHandler.Get)
				r.Put("/{id}", characterHandler.Update)
				r.Delete("/{id}", characterHandler.Delete)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Post("/create", chatHandler.Create)
				r.Post("/message", chatHandler.SendMessage)
				r.Post("/message/stream", chatHandler.StreamMessage)
				r.Get("/{characterId}", chatHandler.History)
				r.Delete("/{chatId}", chatHandler.Delete)
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", creditHandler.GetBalance)
				r.Get("/transactions", creditHandler.GetTransactions)
			})

			r.Route("/payment", func(r chi.Router) {
				r.Post("/create-order", paymentHandler.CreateOrder)
				r.Post("/verify", paymentHandler.VerifyPayment)
				r.Get("/history", paymentHandler.History)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Route not found"}`))
	})

	return r, pool, nil
}
