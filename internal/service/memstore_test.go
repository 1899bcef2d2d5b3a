package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests.
// WithinTx serializes callers and restores a snapshot when fn fails, matching
// the rollback behavior of the SQL implementation.
type memStore struct {
	mu   sync.Mutex
	inTx bool

	users map[int64]*models.User
	cards map[int64]*models.Card
	txns  map[int64]*models.Transaction

	nextUserID int64
	nextCardID int64
	nextTxnID  int64

	// failUpdateCardID makes UpdateCard fail for the given card id, to
	// exercise the transfer failure path.
	failUpdateCardID int64
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*models.User),
		cards: make(map[int64]*models.Card),
		txns:  make(map[int64]*models.Transaction),
	}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapUsers := cloneMap(s.users)
	snapCards := cloneMap(s.cards)
	snapTxns := cloneMap(s.txns)
	snapIDs := [3]int64{s.nextUserID, s.nextCardID, s.nextTxnID}

	tx := &memStore{
		inTx:             true,
		users:            s.users,
		cards:            s.cards,
		txns:             s.txns,
		nextUserID:       s.nextUserID,
		nextCardID:       s.nextCardID,
		nextTxnID:        s.nextTxnID,
		failUpdateCardID: s.failUpdateCardID,
	}
	if err := fn(tx); err != nil {
		s.users = snapUsers
		s.cards = snapCards
		s.txns = snapTxns
		s.nextUserID, s.nextCardID, s.nextTxnID = snapIDs[0], snapIDs[1], snapIDs[2]
		return err
	}
	s.nextUserID, s.nextCardID, s.nextTxnID = tx.nextUserID, tx.nextCardID, tx.nextTxnID
	return nil
}

func cloneMap[T any](m map[int64]*T) map[int64]*T {
	out := make(map[int64]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	defer s.lock()()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %d: %w", id, repository.ErrNotFound)
	}
	c := *user
	return &c, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.lock()()
	for _, user := range s.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrNotFound)
}

func (s *memStore) ListUsers(_ context.Context, limit, offset int) ([]models.User, error) {
	defer s.lock()()
	var users []models.User
	for id := int64(1); id <= s.nextUserID; id++ {
		if user, ok := s.users[id]; ok {
			users = append(users, *user)
		}
	}
	return paginate(users, limit, offset), nil
}

func (s *memStore) DeleteUser(_ context.Context, id int64) error {
	defer s.lock()()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user with id %d: %w", id, repository.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *memStore) CreateCard(_ context.Context, card *models.Card) error {
	defer s.lock()()
	for _, c := range s.cards {
		if c.CardNumberEncrypted == card.CardNumberEncrypted {
			return repository.ErrDuplicateCard
		}
	}
	s.nextCardID++
	card.ID = s.nextCardID
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	c := *card
	s.cards[card.ID] = &c
	return nil
}

func (s *memStore) GetCardByID(_ context.Context, id int64) (*models.Card, error) {
	defer s.lock()()
	return s.cardByID(id)
}

func (s *memStore) GetCardByIDForUpdate(_ context.Context, id int64) (*models.Card, error) {
	defer s.lock()()
	return s.cardByID(id)
}

func (s *memStore) cardByID(id int64) (*models.Card, error) {
	card, ok := s.cards[id]
	if !ok {
		return nil, fmt.Errorf("card with id %d: %w", id, repository.ErrNotFound)
	}
	c := *card
	return &c, nil
}

func (s *memStore) GetCardByIDAndUser(_ context.Context, id, userID int64) (*models.Card, error) {
	defer s.lock()()
	card, ok := s.cards[id]
	if !ok || card.UserID != userID {
		return nil, fmt.Errorf("card with id %d for user with id %d: %w", id, userID, repository.ErrNotFound)
	}
	c := *card
	return &c, nil
}

func (s *memStore) ExistsByCardNumberEncrypted(_ context.Context, encrypted string) (bool, error) {
	defer s.lock()()
	for _, card := range s.cards {
		if card.CardNumberEncrypted == encrypted {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListCards(_ context.Context, limit, offset int) ([]models.Card, error) {
	defer s.lock()()
	return paginate(s.allCards(), limit, offset), nil
}

func (s *memStore) ListCardsByUser(_ context.Context, userID int64) ([]models.Card, error) {
	defer s.lock()()
	var cards []models.Card
	for _, card := range s.allCards() {
		if card.UserID == userID {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (s *memStore) FilterCards(_ context.Context, filter repository.CardFilter, limit, offset int) ([]models.Card, error) {
	defer s.lock()()
	var cards []models.Card
	for _, card := range s.allCards() {
		if filter.Status != nil && card.Status != *filter.Status {
			continue
		}
		if filter.MinBalance != nil && !card.Balance.GreaterThan(*filter.MinBalance) {
			continue
		}
		if filter.MaxBalance != nil && !card.Balance.LessThan(*filter.MaxBalance) {
			continue
		}
		if filter.UserID != nil && card.UserID != *filter.UserID {
			continue
		}
		if filter.CardholderName != nil &&
			!strings.Contains(strings.ToLower(card.CardholderName), strings.ToLower(*filter.CardholderName)) {
			continue
		}
		cards = append(cards, card)
	}
	return paginate(cards, limit, offset), nil
}

func (s *memStore) UpdateCard(_ context.Context, card *models.Card) error {
	defer s.lock()()
	if s.failUpdateCardID != 0 && card.ID == s.failUpdateCardID {
		return fmt.Errorf("simulated storage failure for card %d", card.ID)
	}
	if _, ok := s.cards[card.ID]; !ok {
		return fmt.Errorf("card with id %d: %w", card.ID, repository.ErrNotFound)
	}
	card.UpdatedAt = time.Now()
	c := *card
	s.cards[card.ID] = &c
	return nil
}

func (s *memStore) DeleteCard(_ context.Context, id int64) error {
	defer s.lock()()
	if _, ok := s.cards[id]; !ok {
		return fmt.Errorf("card with id %d: %w", id, repository.ErrNotFound)
	}
	delete(s.cards, id)
	return nil
}

func (s *memStore) ExpireCards(_ context.Context, before time.Time) (int64, error) {
	defer s.lock()()
	var count int64
	for _, card := range s.cards {
		if card.Status != models.CardStatusExpired && card.ExpirationDate.Before(before) {
			card.Status = models.CardStatusExpired
			count++
		}
	}
	return count, nil
}

func (s *memStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	defer s.lock()()
	s.nextTxnID++
	txn.ID = s.nextTxnID
	c := *txn
	s.txns[txn.ID] = &c
	return nil
}

func (s *memStore) GetTransactionByID(_ context.Context, id int64) (*models.Transaction, error) {
	defer s.lock()()
	txn, ok := s.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction with id %d: %w", id, repository.ErrNotFound)
	}
	c := *txn
	return &c, nil
}

func (s *memStore) UpdateTransactionStatus(_ context.Context, id int64, status models.TransactionStatus) error {
	defer s.lock()()
	txn, ok := s.txns[id]
	if !ok {
		return fmt.Errorf("transaction with id %d: %w", id, repository.ErrNotFound)
	}
	txn.Status = status
	return nil
}

func (s *memStore) ListTransactions(_ context.Context, limit, offset int) ([]models.Transaction, error) {
	defer s.lock()()
	return paginate(s.allTxns(func(*models.Transaction) bool { return true }), limit, offset), nil
}

func (s *memStore) ListTransactionsByCard(_ context.Context, cardID int64, limit, offset int) ([]models.Transaction, error) {
	defer s.lock()()
	return paginate(s.allTxns(func(t *models.Transaction) bool {
		return t.SourceCardID == cardID || t.TargetCardID == cardID
	}), limit, offset), nil
}

func (s *memStore) allCards() []models.Card {
	var cards []models.Card
	for id := s.nextCardID; id >= 1; id-- {
		if card, ok := s.cards[id]; ok {
			cards = append(cards, *card)
		}
	}
	return cards
}

func (s *memStore) allTxns(keep func(*models.Transaction) bool) []models.Transaction {
	var txns []models.Transaction
	for id := s.nextTxnID; id >= 1; id-- {
		if txn, ok := s.txns[id]; ok && keep(txn) {
			txns = append(txns, *txn)
		}
	}
	return txns
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
