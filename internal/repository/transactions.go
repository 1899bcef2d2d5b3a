package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aDolgosheev/bank-card-management/internal/models"
)

const transactionColumns = `id, source_card_id, target_card_id, amount, transaction_date, status`

// CreateTransaction creates a new transfer record in the database
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (source_card_id, target_card_id, amount, transaction_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query,
		txn.SourceCardID, txn.TargetCardID, txn.Amount, txn.TransactionDate, txn.Status).
		Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionByID retrieves a transfer record by id
func (r *Repository) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	txn := &models.Transaction{}
	err := r.q.QueryRowContext(ctx, query, id).
		Scan(&txn.ID, &txn.SourceCardID, &txn.TargetCardID, &txn.Amount, &txn.TransactionDate, &txn.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction with id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", id, err)
	}
	return txn, nil
}

// UpdateTransactionStatus moves a transfer record to the given status
func (r *Repository) UpdateTransactionStatus(ctx context.Context, id int64, status models.TransactionStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction with id %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTransactions retrieves transfer records ordered by newest first
func (r *Repository) ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransactionsByCard retrieves transfer records where the card was either
// the source or the target.
func (r *Repository) ListTransactionsByCard(ctx context.Context, cardID int64, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_card_id = $1 OR target_card_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, cardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for card %d: %w", cardID, err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var txns []models.Transaction
	for rows.Next() {
		txn := models.Transaction{}
		if err := rows.Scan(&txn.ID, &txn.SourceCardID, &txn.TargetCardID, &txn.Amount, &txn.TransactionDate, &txn.Status); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
