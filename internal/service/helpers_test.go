package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testEncryptor() *utils.CardEncryptor {
	return utils.NewCardEncryptor("0123456789abcdef")
}

func seedUser(t *testing.T, store *memStore, email string, roles ...models.Role) *models.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []models.Role{models.RoleUser}
	}
	user := &models.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		Roles:        roles,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedCard(t *testing.T, store *memStore, enc *utils.CardEncryptor, number string, owner *models.User, balance string, status models.CardStatus) *models.Card {
	t.Helper()
	encrypted, err := enc.Encrypt(number)
	require.NoError(t, err)
	card := &models.Card{
		CardNumberEncrypted: encrypted,
		CardholderName:      owner.FirstName + " " + owner.LastName,
		ExpirationDate:      time.Now().AddDate(2, 0, 0),
		Status:              status,
		Balance:             decimal.RequireFromString(balance),
		UserID:              owner.ID,
	}
	require.NoError(t, store.CreateCard(context.Background(), card))
	return card
}
