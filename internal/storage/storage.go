// Package storage is the persistence boundary. The rewards core never talks
// to it; the service layer materializes snapshots from here and hands them
// to the core.
package storage

import (
	"context"
	"errors"
	"fmt"

	"rewards-optimizer-go/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Error wraps a backend failure with the operation and backend that produced it.
type Error struct {
	Op      string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type CardStore interface {
	GetCardsForUser(ctx context.Context, userID uint) ([]models.Card, error)
	GetCard(ctx context.Context, id uint) (models.Card, error)
	CreateCard(ctx context.Context, card *models.Card) error
}

type MerchantStore interface {
	ListMerchants(ctx context.Context) ([]models.Merchant, error)
	GetMerchant(ctx context.Context, id uint) (models.Merchant, error)
	// GetMerchantByName matches case-insensitively; duplicates resolve to the lowest id.
	GetMerchantByName(ctx context.Context, name string) (models.Merchant, error)
	CreateMerchant(ctx context.Context, merchant *models.Merchant) error
}

// OverrideFilter narrows GetOverrides. Empty CardIDs and nil MerchantID match everything.
type OverrideFilter struct {
	CardIDs    []uint
	MerchantID *uint
}

type OverrideStore interface {
	GetOverrides(ctx context.Context, filter OverrideFilter) ([]models.RewardOverride, error)
	CreateOverride(ctx context.Context, override *models.RewardOverride) error
}

type TransactionStore interface {
	// GetTransactionsForUser returns transactions in r, newest first.
	GetTransactionsForUser(ctx context.Context, userID uint, r DateRange) ([]models.Transaction, error)
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
}

type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID uint) ([]models.FavoriteMerchant, error)
	// ToggleFavorite adds the favorite, or removes it and returns nil when it already exists.
	ToggleFavorite(ctx context.Context, userID, merchantID uint) (*models.FavoriteMerchant, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (models.User, error)
	GetUserByUUID(ctx context.Context, uuid string) (models.User, error)
	// GetUserByLogin looks a user up by username or email.
	GetUserByLogin(ctx context.Context, identifier string) (models.User, error)
}

type Store interface {
	CardStore
	MerchantStore
	OverrideStore
	TransactionStore
	FavoriteStore
	UserStore
}
