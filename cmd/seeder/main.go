// Command seeder provisions an administrator account and a couple of demo
// cards for local development.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/config"
	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/aDolgosheev/bank-card-management/internal/service"
	"github.com/aDolgosheev/bank-card-management/internal/utils"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := repository.NewRepository(db)
	encryptor := utils.NewCardEncryptor(cfg.EncryptionKey)
	cards := service.NewCardService(repo, encryptor, nil, logger)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.User{
		Email:        "admin@example.com",
		FirstName:    "Admin",
		LastName:     "Admin",
		PasswordHash: string(hash),
		Roles:        []models.Role{models.RoleAdmin, models.RoleUser},
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		logger.Fatalf("Failed to create admin user: %v", err)
	}
	logger.Infof("Admin user created: %s (id %d)", admin.Email, admin.ID)

	for _, balance := range []string{"1000.00", "500.00"} {
		number, err := utils.GenerateCardNumber("400000", 16)
		if err != nil {
			logger.Fatalf("Failed to generate card number: %v", err)
		}
		card, err := cards.CreateCard(ctx, service.CreateCardParams{
			CardNumber:     number,
			CardholderName: "Admin Admin",
			ExpirationDate: time.Now().AddDate(3, 0, 0),
			InitialBalance: decimal.RequireFromString(balance),
			UserID:         admin.ID,
		})
		if err != nil {
			logger.Fatalf("Failed to create demo card: %v", err)
		}
		logger.Infof("Demo card created: %s (id %d)", card.MaskedCardNumber, card.ID)
	}
}
