package repository

import (
	"context"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/shopspring/decimal"
)

// CardFilter restricts a card query. Nil fields are unconstrained; supplied
// fields are combined with AND semantics. CardholderName matches as a
// case-insensitive substring.
type CardFilter struct {
	Status         *models.CardStatus
	MinBalance     *decimal.Decimal
	MaxBalance     *decimal.Decimal
	CardholderName *string
	UserID         *int64
}

// UserStore defines persistence operations on users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// CardStore defines persistence operations on cards.
type CardStore interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCardByID(ctx context.Context, id int64) (*models.Card, error)
	// GetCardByIDForUpdate locks the card row for the duration of the
	// surrounding transaction. Only meaningful inside WithinTx.
	GetCardByIDForUpdate(ctx context.Context, id int64) (*models.Card, error)
	GetCardByIDAndUser(ctx context.Context, id, userID int64) (*models.Card, error)
	ExistsByCardNumberEncrypted(ctx context.Context, encrypted string) (bool, error)
	ListCards(ctx context.Context, limit, offset int) ([]models.Card, error)
	ListCardsByUser(ctx context.Context, userID int64) ([]models.Card, error)
	FilterCards(ctx context.Context, filter CardFilter, limit, offset int) ([]models.Card, error)
	UpdateCard(ctx context.Context, card *models.Card) error
	DeleteCard(ctx context.Context, id int64) error
	ExpireCards(ctx context.Context, before time.Time) (int64, error)
}

// TransactionStore defines persistence operations on transfer records.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status models.TransactionStatus) error
	ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	ListTransactionsByCard(ctx context.Context, cardID int64, limit, offset int) ([]models.Transaction, error)
}

// Store composes all storage operations. WithinTx runs fn against a store
// bound to a single database transaction, committing when fn returns nil and
// rolling back otherwise.
type Store interface {
	UserStore
	CardStore
	TransactionStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}
