package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/aDolgosheev/bank-card-management/internal/handler"
	"github.com/aDolgosheev/bank-card-management/internal/jobs"
	"github.com/aDolgosheev/bank-card-management/internal/middleware"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/aDolgosheev/bank-card-management/internal/service"
	"github.com/aDolgosheev/bank-card-management/internal/utils"
	"github.com/aDolgosheev/bank-card-management/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	encryptor := utils.NewCardEncryptor(cfg.EncryptionKey)

	var notifier service.BlockNotifier
	if cfg.SMTPHost != "" {
		notifier = email.NewSender(cfg, logger)
	}

	authSvc := service.NewAuthService(repo, logger, cfg)
	userSvc := service.NewUserService(repo, logger)
	cardSvc := service.NewCardService(repo, encryptor, notifier, logger)
	txnSvc := service.NewTransactionService(repo, logger)
	h := handler.NewHandler(authSvc, userSvc, cardSvc, txnSvc, logger)

	// Schedule card expiration sweep
	sweeper, err := jobs.StartExpirationSweep(cardSvc, cfg.ExpirySchedule, logger)
	if err != nil {
		logger.Fatalf("Failed to schedule expiration sweep: %v", err)
	}
	defer sweeper.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.MetricsMiddleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public routes
	r.HandleFunc("/api/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/auth/signin", h.Signin).Methods("POST")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))

	api.HandleFunc("/cards", h.CreateCard).Methods("POST")
	api.HandleFunc("/cards", h.ListCards).Methods("GET")
	api.HandleFunc("/cards/filter", h.FilterCards).Methods("GET")
	api.HandleFunc("/cards/{id:[0-9]+}", h.GetCard).Methods("GET")
	api.HandleFunc("/cards/{id:[0-9]+}/status", h.UpdateCardStatus).Methods("PATCH")
	api.HandleFunc("/cards/{id:[0-9]+}", h.DeleteCard).Methods("DELETE")
	api.HandleFunc("/cards/user/{userId:[0-9]+}", h.GetUserCards).Methods("GET")
	api.HandleFunc("/cards/user/{userId:[0-9]+}/card/{cardId:[0-9]+}/block", h.RequestCardBlock).Methods("POST")

	api.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	api.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/card/{cardId:[0-9]+}", h.GetCardTransactions).Methods("GET")
	api.HandleFunc("/transactions/user/{userId:[0-9]+}/card/{cardId:[0-9]+}", h.GetUserCardTransactions).Methods("GET")

	api.HandleFunc("/users", h.ListUsers).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
