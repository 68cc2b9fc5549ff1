package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"rewards-optimizer-go/internal/models"
)

// arena is an id -> entity table that remembers insertion order and hands
// out sequential ids. It is not safe for concurrent use on its own.
type arena[T any] struct {
	items   map[uint]T
	order   []uint
	counter uint
}

func newArena[T any]() *arena[T] {
	return &arena[T]{items: make(map[uint]T)}
}

func (a *arena[T]) nextID() uint {
	a.counter++
	return a.counter
}

func (a *arena[T]) set(id uint, item T) {
	if _, exists := a.items[id]; !exists {
		a.order = append(a.order, id)
	}
	a.items[id] = item
}

func (a *arena[T]) get(id uint) (T, bool) {
	item, ok := a.items[id]
	return item, ok
}

func (a *arena[T]) delete(id uint) bool {
	if _, exists := a.items[id]; !exists {
		return false
	}
	delete(a.items, id)
	for i, oid := range a.order {
		if oid == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *arena[T]) filter(predicate func(T) bool) []T {
	out := []T{}
	for _, id := range a.order {
		if item := a.items[id]; predicate(item) {
			out = append(out, item)
		}
	}
	return out
}

// MemoryStore keeps every table in process memory. It backs tests, the
// memory storage backend, and the secondary side of FallbackStore.
type MemoryStore struct {
	mu           sync.RWMutex
	users        *arena[models.User]
	cards        *arena[models.Card]
	merchants    *arena[models.Merchant]
	overrides    *arena[models.RewardOverride]
	transactions *arena[models.Transaction]
	favorites    *arena[models.FavoriteMerchant]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        newArena[models.User](),
		cards:        newArena[models.Card](),
		merchants:    newArena[models.Merchant](),
		overrides:    newArena[models.RewardOverride](),
		transactions: newArena[models.Transaction](),
		favorites:    newArena[models.FavoriteMerchant](),
	}
}

var _ Store = (*MemoryStore)(nil)

func memErr(op string, err error) error {
	return &Error{Op: op, Backend: "memory", Err: err}
}

func (s *MemoryStore) GetCardsForUser(_ context.Context, userID uint) ([]models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cards.filter(func(c models.Card) bool { return c.UserID == userID }), nil
}

func (s *MemoryStore) GetCard(_ context.Context, id uint) (models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards.get(id)
	if !ok {
		return models.Card{}, memErr("get_card", ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) CreateCard(_ context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card.ID = s.cards.nextID()
	s.cards.set(card.ID, *card)
	return nil
}

func (s *MemoryStore) ListMerchants(_ context.Context) ([]models.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merchants.filter(func(models.Merchant) bool { return true }), nil
}

func (s *MemoryStore) GetMerchant(_ context.Context, id uint) (models.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.merchants.get(id)
	if !ok {
		return models.Merchant{}, memErr("get_merchant", ErrNotFound)
	}
	return m, nil
}

func (s *MemoryStore) GetMerchantByName(_ context.Context, name string) (models.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// ids are assigned in insertion order, so the first match has the lowest id
	matches := s.merchants.filter(func(m models.Merchant) bool { return strings.EqualFold(m.Name, name) })
	if len(matches) == 0 {
		return models.Merchant{}, memErr("get_merchant_by_name", ErrNotFound)
	}
	return matches[0], nil
}

func (s *MemoryStore) CreateMerchant(_ context.Context, merchant *models.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merchant.ID = s.merchants.nextID()
	s.merchants.set(merchant.ID, *merchant)
	return nil
}

func (s *MemoryStore) GetOverrides(_ context.Context, filter OverrideFilter) ([]models.RewardOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cardIDs := make(map[uint]struct{}, len(filter.CardIDs))
	for _, id := range filter.CardIDs {
		cardIDs[id] = struct{}{}
	}
	return s.overrides.filter(func(o models.RewardOverride) bool {
		if len(cardIDs) > 0 {
			if _, ok := cardIDs[o.CardID]; !ok {
				return false
			}
		}
		return filter.MerchantID == nil || o.MerchantID == *filter.MerchantID
	}), nil
}

func (s *MemoryStore) CreateOverride(_ context.Context, override *models.RewardOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	override.ID = s.overrides.nextID()
	s.overrides.set(override.ID, *override)
	return nil
}

func (s *MemoryStore) GetTransactionsForUser(_ context.Context, userID uint, r DateRange) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := s.transactions.filter(func(t models.Transaction) bool {
		return t.UserID == userID && r.Contains(t.Date)
	})
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

func (s *MemoryStore) RecordTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.transactions.nextID()
	s.transactions.set(tx.ID, *tx)
	return nil
}

func (s *MemoryStore) ListFavorites(_ context.Context, userID uint) ([]models.FavoriteMerchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites.filter(func(f models.FavoriteMerchant) bool { return f.UserID == userID }), nil
}

func (s *MemoryStore) ToggleFavorite(_ context.Context, userID, merchantID uint) (*models.FavoriteMerchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.favorites.filter(func(f models.FavoriteMerchant) bool {
		return f.UserID == userID && f.MerchantID == merchantID
	})
	if len(existing) > 0 {
		s.favorites.delete(existing[0].ID)
		return nil, nil
	}
	fav := models.FavoriteMerchant{ID: s.favorites.nextID(), UserID: userID, MerchantID: merchantID}
	s.favorites.set(fav.ID, fav)
	return &fav, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.users.filter(func(u models.User) bool {
		return u.Username == user.Username || u.UUID == user.UUID ||
			(user.Email != "" && strings.EqualFold(u.Email, user.Email))
	})
	if len(taken) > 0 {
		return memErr("create_user", ErrConflict)
	}
	user.ID = s.users.nextID()
	s.users.set(user.ID, *user)
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.get(id)
	if !ok {
		return models.User{}, memErr("get_user", ErrNotFound)
	}
	return u, nil
}

func (s *MemoryStore) GetUserByUUID(_ context.Context, uuid string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := s.users.filter(func(u models.User) bool { return u.UUID == uuid })
	if len(found) == 0 {
		return models.User{}, memErr("get_user_by_uuid", ErrNotFound)
	}
	return found[0], nil
}

func (s *MemoryStore) GetUserByLogin(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := s.users.filter(func(u models.User) bool {
		return u.Username == identifier || (u.Email != "" && strings.EqualFold(u.Email, identifier))
	})
	if len(found) == 0 {
		return models.User{}, memErr("get_user_by_login", ErrNotFound)
	}
	return found[0], nil
}
