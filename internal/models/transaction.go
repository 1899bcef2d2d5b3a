package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus defines the possible states of a transfer record.
// A record moves from PENDING to exactly one of COMPLETED or FAILED.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction represents a transfer of funds between two cards.
type Transaction struct {
	ID              int64             `json:"id"`
	SourceCardID    int64             `json:"source_card_id"`
	TargetCardID    int64             `json:"target_card_id"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionDate time.Time         `json:"transaction_date"`
	Status          TransactionStatus `json:"status"`
}
