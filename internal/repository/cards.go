package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/lib/pq"
)

const cardColumns = `id, card_number_encrypted, cardholder_name, expiration_date, status, balance, user_id, created_at, updated_at`

// CreateCard creates a new card in the database
func (r *Repository) CreateCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (card_number_encrypted, cardholder_name, expiration_date, status, balance, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRowContext(ctx, query,
		card.CardNumberEncrypted, card.CardholderName, card.ExpirationDate, card.Status, card.Balance, card.UserID).
		Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCard
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCardByID retrieves a card by id
func (r *Repository) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return r.scanCard(r.q.QueryRowContext(ctx, query, id), fmt.Sprintf("card with id %d", id))
}

// GetCardByIDForUpdate retrieves a card by id and locks its row until the
// surrounding transaction ends.
func (r *Repository) GetCardByIDForUpdate(ctx context.Context, id int64) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return r.scanCard(r.q.QueryRowContext(ctx, query, id), fmt.Sprintf("card with id %d", id))
}

// GetCardByIDAndUser retrieves a card by id scoped to its owner
func (r *Repository) GetCardByIDAndUser(ctx context.Context, id, userID int64) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND user_id = $2`
	return r.scanCard(r.q.QueryRowContext(ctx, query, id, userID),
		fmt.Sprintf("card with id %d for user with id %d", id, userID))
}

// ExistsByCardNumberEncrypted reports whether a card with the given encrypted
// number is already registered.
func (r *Repository) ExistsByCardNumberEncrypted(ctx context.Context, encrypted string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cards WHERE card_number_encrypted = $1)`, encrypted).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check card number: %w", err)
	}
	return exists, nil
}

// ListCards retrieves cards ordered by newest first
func (r *Repository) ListCards(ctx context.Context, limit, offset int) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return collectCards(rows)
}

// ListCardsByUser retrieves all cards owned by a user
func (r *Repository) ListCardsByUser(ctx context.Context, userID int64) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 ORDER BY id DESC`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user %d: %w", userID, err)
	}
	return collectCards(rows)
}

// FilterCards retrieves cards matching all supplied filter predicates.
func (r *Repository) FilterCards(ctx context.Context, filter CardFilter, limit, offset int) ([]models.Card, error) {
	var clauses []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		clauses = append(clauses, "status = "+arg(*filter.Status))
	}
	if filter.MinBalance != nil {
		clauses = append(clauses, "balance > "+arg(*filter.MinBalance))
	}
	if filter.MaxBalance != nil {
		clauses = append(clauses, "balance < "+arg(*filter.MaxBalance))
	}
	if filter.UserID != nil {
		clauses = append(clauses, "user_id = "+arg(*filter.UserID))
	}
	if filter.CardholderName != nil {
		clauses = append(clauses, "LOWER(cardholder_name) LIKE "+arg("%"+strings.ToLower(*filter.CardholderName)+"%"))
	}

	query := `SELECT ` + cardColumns + ` FROM cards`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %s OFFSET %s", arg(limit), arg(offset))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter cards: %w", err)
	}
	return collectCards(rows)
}

// UpdateCard persists a card's mutable fields (status and balance).
func (r *Repository) UpdateCard(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE cards
		SET status = $1, balance = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`
	err := r.q.QueryRowContext(ctx, query, card.Status, card.Balance, card.ID).Scan(&card.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("card with id %d: %w", card.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", card.ID, err)
	}
	return nil
}

// DeleteCard removes a card by id
func (r *Repository) DeleteCard(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("card with id %d: %w", id, ErrNotFound)
	}
	return nil
}

// ExpireCards marks all non-expired cards whose expiration date is strictly
// before the given date as EXPIRED and returns how many were updated.
func (r *Repository) ExpireCards(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE cards
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE expiration_date < $2 AND status <> $1`,
		models.CardStatusExpired, before)
	if err != nil {
		return 0, fmt.Errorf("failed to expire cards: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) scanCard(row *sql.Row, what string) (*models.Card, error) {
	card := &models.Card{}
	err := row.Scan(&card.ID, &card.CardNumberEncrypted, &card.CardholderName, &card.ExpirationDate,
		&card.Status, &card.Balance, &card.UserID, &card.CreatedAt, &card.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	return card, nil
}

func collectCards(rows *sql.Rows) ([]models.Card, error) {
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		card := models.Card{}
		if err := rows.Scan(&card.ID, &card.CardNumberEncrypted, &card.CardholderName, &card.ExpirationDate,
			&card.Status, &card.Balance, &card.UserID, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
