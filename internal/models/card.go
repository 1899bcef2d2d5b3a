package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus defines the possible states of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// Valid reports whether s is one of the known card statuses.
func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

// Card represents a bank card. CardNumberEncrypted is the only persisted form
// of the number; MaskedCardNumber is computed on read and never stored.
type Card struct {
	ID                  int64           `json:"id"`
	CardNumberEncrypted string          `json:"-"`
	MaskedCardNumber    string          `json:"masked_card_number"`
	CardholderName      string          `json:"cardholder_name"`
	ExpirationDate      time.Time       `json:"expiration_date"`
	Status              CardStatus      `json:"status"`
	Balance             decimal.Decimal `json:"balance"`
	UserID              int64           `json:"user_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ExpiredAt reports whether the card's expiration date is strictly before
// the calendar date of now.
func (c *Card) ExpiredAt(now time.Time) bool {
	expY, expM, expD := c.ExpirationDate.Date()
	nowY, nowM, nowD := now.Date()
	exp := time.Date(expY, expM, expD, 0, 0, 0, 0, time.UTC)
	today := time.Date(nowY, nowM, nowD, 0, 0, 0, 0, time.UTC)
	return exp.Before(today)
}
