package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransactionService executes transfers between cards and serves transfer
// record lookups.
type TransactionService struct {
	store repository.Store
	log   *logrus.Logger
}

// NewTransactionService initializes a new transaction service
func NewTransactionService(store repository.Store, log *logrus.Logger) *TransactionService {
	return &TransactionService{store: store, log: log}
}

// CreateTransaction transfers amount from the source card to the target card
// on behalf of the principal identified by email. Both cards must belong to
// the principal and be ACTIVE, and the source balance must cover the amount.
//
// The checks and the balance mutation run in a single database transaction
// that locks both card rows in ascending id order, so concurrent transfers
// touching the same cards cannot overdraw a balance or double-apply a debit.
// Once a PENDING record has been written, the attempt always ends in a
// terminal state: COMPLETED on commit, FAILED (persisted separately, after
// rollback) on any later error.
func (s *TransactionService) CreateTransaction(ctx context.Context, sourceCardID, targetCardID int64, amount decimal.Decimal, userEmail string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidState)
	}

	user, err := s.store.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		source, target, err := lockCardPair(ctx, tx, sourceCardID, targetCardID)
		if err != nil {
			return err
		}

		if source.UserID != user.ID {
			return fmt.Errorf("no access to source card with id %d: %w", source.ID, ErrAccessDenied)
		}
		if target.UserID != user.ID {
			return fmt.Errorf("no access to target card with id %d: %w", target.ID, ErrAccessDenied)
		}

		if source.Status != models.CardStatusActive {
			return fmt.Errorf("%w: source card is not active", ErrInvalidState)
		}
		if target.Status != models.CardStatusActive {
			return fmt.Errorf("%w: target card is not active", ErrInvalidState)
		}

		if source.Balance.LessThan(amount) {
			return fmt.Errorf("%w: insufficient funds on source card", ErrInvalidState)
		}

		txn = &models.Transaction{
			SourceCardID:    source.ID,
			TargetCardID:    target.ID,
			Amount:          amount,
			TransactionDate: time.Now(),
			Status:          models.TransactionStatusPending,
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		source.Balance = source.Balance.Sub(amount)
		target.Balance = target.Balance.Add(amount)
		if err := tx.UpdateCard(ctx, source); err != nil {
			return err
		}
		if target != source {
			if err := tx.UpdateCard(ctx, target); err != nil {
				return err
			}
		}

		txn.Status = models.TransactionStatusCompleted
		return tx.UpdateTransactionStatus(ctx, txn.ID, models.TransactionStatusCompleted)
	})
	if err != nil {
		if txn != nil {
			// The PENDING record was rolled back with the transaction.
			// Persist a terminal FAILED record before re-raising so the
			// attempt is never lost or left PENDING.
			txn.ID = 0
			txn.Status = models.TransactionStatusFailed
			if saveErr := s.store.CreateTransaction(ctx, txn); saveErr != nil {
				s.log.Errorf("Failed to record failed transaction: %v", saveErr)
			}
			return nil, fmt.Errorf("error executing transaction: %w", err)
		}
		return nil, err
	}

	s.log.Infof("Transaction %d completed: %s from card %d to card %d", txn.ID, amount, sourceCardID, targetCardID)
	return txn, nil
}

// lockCardPair loads both cards under row locks acquired in ascending id
// order so that concurrent transfers on the same pair cannot deadlock.
func lockCardPair(ctx context.Context, tx repository.Store, sourceID, targetID int64) (source, target *models.Card, err error) {
	if sourceID == targetID {
		card, err := tx.GetCardByIDForUpdate(ctx, sourceID)
		if err != nil {
			return nil, nil, err
		}
		return card, card, nil
	}

	firstID, secondID := sourceID, targetID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := tx.GetCardByIDForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := tx.GetCardByIDForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == sourceID {
		return first, second, nil
	}
	return second, first, nil
}

// GetTransactionByID returns the transfer record with the given id
func (s *TransactionService) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.store.GetTransactionByID(ctx, id)
}

// GetAllTransactions returns transfer records ordered newest first
func (s *TransactionService) GetAllTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, limit, offset)
}

// GetCardTransactions returns transfer records where the card was either the
// source or the target.
func (s *TransactionService) GetCardTransactions(ctx context.Context, cardID int64, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.store.GetCardByID(ctx, cardID); err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByCard(ctx, cardID, limit, offset)
}

// GetUserCardTransactions returns a card's transfer history scoped to its
// owner.
func (s *TransactionService) GetUserCardTransactions(ctx context.Context, userID, cardID int64, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.store.GetCardByIDAndUser(ctx, cardID, userID); err != nil {
		return nil, err
	}
	return s.store.ListTransactionsByCard(ctx, cardID, limit, offset)
}

// ValidateTransactionAccess checks that the principal identified by email may
// view the transfer record: administrators always may, other users only when
// they own the source or the target card.
func (s *TransactionService) ValidateTransactionAccess(ctx context.Context, principalEmail string, transactionID int64) error {
	current, err := s.store.GetUserByEmail(ctx, principalEmail)
	if err != nil {
		return err
	}
	txn, err := s.store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if current.IsAdmin() {
		return nil
	}

	source, err := s.store.GetCardByID(ctx, txn.SourceCardID)
	if err != nil {
		return err
	}
	if source.UserID == current.ID {
		return nil
	}
	target, err := s.store.GetCardByID(ctx, txn.TargetCardID)
	if err != nil {
		return err
	}
	if target.UserID == current.ID {
		return nil
	}
	return fmt.Errorf("no access to transaction with id %d: %w", transactionID, ErrAccessDenied)
}
