package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/aDolgosheev/bank-card-management/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BlockNotifier notifies a cardholder that their card has been blocked.
// Implementations must be safe for concurrent use.
type BlockNotifier interface {
	SendCardBlockedNotice(toEmail, cardholderName, maskedNumber string) error
}

// CreateCardParams carries the inputs for issuing a new card.
type CreateCardParams struct {
	CardNumber     string
	CardholderName string
	ExpirationDate time.Time
	InitialBalance decimal.Decimal
	UserID         int64
}

// CardService handles the card lifecycle: issuance, status transitions,
// expiration, masking on read paths, and card-level access checks.
type CardService struct {
	store     repository.Store
	encryptor *utils.CardEncryptor
	notifier  BlockNotifier
	log       *logrus.Logger
}

// NewCardService initializes a new card service. notifier may be nil, in
// which case block requests are not announced by email.
func NewCardService(store repository.Store, encryptor *utils.CardEncryptor, notifier BlockNotifier, log *logrus.Logger) *CardService {
	return &CardService{store: store, encryptor: encryptor, notifier: notifier, log: log}
}

// CreateCard issues a new ACTIVE card with the given opening balance.
// The plaintext number is encrypted before it reaches the store; duplicates
// are rejected by ciphertext equality.
func (s *CardService) CreateCard(ctx context.Context, params CreateCardParams) (*models.Card, error) {
	if params.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance must not be negative", ErrInvalidState)
	}

	user, err := s.store.GetUserByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.Encrypt(params.CardNumber)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByCardNumberEncrypted(ctx, encrypted)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateCard
	}

	card := &models.Card{
		CardNumberEncrypted: encrypted,
		CardholderName:      params.CardholderName,
		ExpirationDate:      params.ExpirationDate,
		Status:              models.CardStatusActive,
		Balance:             params.InitialBalance,
		UserID:              user.ID,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	if err := s.setMaskedCardNumber(card); err != nil {
		return nil, err
	}
	s.log.Infof("Card %d created for user %d", card.ID, user.ID)
	return card, nil
}

// GetCardByID returns the card with the given id, decorated for display.
func (s *CardService) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	card, err := s.store.GetCardByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setMaskedCardNumber(card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetUserCardByID returns the card with the given id if it belongs to the
// given user, decorated for display.
func (s *CardService) GetUserCardByID(ctx context.Context, userID, cardID int64) (*models.Card, error) {
	card, err := s.store.GetCardByIDAndUser(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.setMaskedCardNumber(card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetAllCards returns cards ordered newest first, decorated for display.
func (s *CardService) GetAllCards(ctx context.Context, limit, offset int) ([]models.Card, error) {
	cards, err := s.store.ListCards(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.maskAll(cards)
}

// GetUserCards returns all cards owned by a user, decorated for display.
func (s *CardService) GetUserCards(ctx context.Context, userID int64) ([]models.Card, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	cards, err := s.store.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.maskAll(cards)
}

// FilterCards returns cards matching all supplied predicates, decorated for
// display.
func (s *CardService) FilterCards(ctx context.Context, filter repository.CardFilter, limit, offset int) ([]models.Card, error) {
	cards, err := s.store.FilterCards(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.maskAll(cards)
}

// UpdateCardStatus sets the card's status to the requested value and then
// re-evaluates expiration: a card whose expiration date has passed is forced
// to EXPIRED regardless of the requested status.
func (s *CardService) UpdateCardStatus(ctx context.Context, id int64, status models.CardStatus) (*models.Card, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown card status %q", ErrInvalidState, status)
	}

	card, err := s.store.GetCardByID(ctx, id)
	if err != nil {
		return nil, err
	}

	card.Status = status
	if card.ExpiredAt(time.Now()) {
		card.Status = models.CardStatusExpired
	}

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	if err := s.setMaskedCardNumber(card); err != nil {
		return nil, err
	}
	s.log.Infof("Card %d status set to %s", card.ID, card.Status)
	return card, nil
}

// DeleteCard removes the card with the given id. Existing transfer records
// referencing the card are left in place.
func (s *CardService) DeleteCard(ctx context.Context, id int64) error {
	if _, err := s.store.GetCardByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Card %d deleted", id)
	return nil
}

// RequestCardBlock blocks a card on behalf of its owner. The block is
// immediate; no confirmation workflow exists.
func (s *CardService) RequestCardBlock(ctx context.Context, userID, cardID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	card, err := s.store.GetCardByIDAndUser(ctx, cardID, userID)
	if err != nil {
		return err
	}

	card.Status = models.CardStatusBlocked
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return err
	}
	s.log.Infof("Card %d blocked at owner %d request", card.ID, userID)

	if s.notifier != nil {
		if err := s.setMaskedCardNumber(card); err != nil {
			return err
		}
		if err := s.notifier.SendCardBlockedNotice(user.Email, card.CardholderName, card.MaskedCardNumber); err != nil {
			s.log.Warnf("Failed to send block notice for card %d: %v", card.ID, err)
		}
	}
	return nil
}

// SweepExpiredCards forces EXPIRED on every card whose expiration date is
// strictly before today. Returns the number of cards updated.
func (s *CardService) SweepExpiredCards(ctx context.Context) (int64, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.store.ExpireCards(ctx, today)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Infof("Expired %d cards", count)
	}
	return count, nil
}

// ValidateCardAccess checks that the principal identified by email may act on
// the card with the given id: administrators may act on any card, other users
// only on their own.
func (s *CardService) ValidateCardAccess(ctx context.Context, principalEmail string, cardID int64) error {
	current, err := s.store.GetUserByEmail(ctx, principalEmail)
	if err != nil {
		return err
	}
	if current.IsAdmin() {
		return nil
	}
	card, err := s.store.GetCardByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.UserID != current.ID {
		return fmt.Errorf("no access to card with id %d: %w", cardID, ErrAccessDenied)
	}
	return nil
}

func (s *CardService) maskAll(cards []models.Card) ([]models.Card, error) {
	for i := range cards {
		if err := s.setMaskedCardNumber(&cards[i]); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

func (s *CardService) setMaskedCardNumber(card *models.Card) error {
	number, err := s.encryptor.Decrypt(card.CardNumberEncrypted)
	if err != nil {
		return fmt.Errorf("card %d: %w", card.ID, err)
	}
	card.MaskedCardNumber = utils.MaskCardNumber(number)
	return nil
}
