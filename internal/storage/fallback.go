package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"rewards-optimizer-go/internal/metrics"
	"rewards-optimizer-go/internal/models"
)

// FallbackPolicy decides whether a primary error should be retried against
// the secondary store.
type FallbackPolicy func(err error) bool

// BackendFailure falls back on anything except not-found, conflicts and
// cancellation, which are answers rather than outages.
func BackendFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrConflict) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// FallbackStore serves every operation from primary and, when policy allows,
// retries it against secondary. Writes that land on the secondary are not
// replayed to the primary.
type FallbackStore struct {
	primary   Store
	secondary Store
	policy    FallbackPolicy
	logger    *zap.Logger
}

func NewFallbackStore(primary, secondary Store, policy FallbackPolicy, logger *zap.Logger) *FallbackStore {
	if policy == nil {
		policy = BackendFailure
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{primary: primary, secondary: secondary, policy: policy, logger: logger}
}

var _ Store = (*FallbackStore)(nil)

func attempt[T any](s *FallbackStore, op string, fn func(Store) (T, error)) (T, error) {
	v, err := fn(s.primary)
	if err == nil || !s.policy(err) {
		return v, err
	}
	s.logger.Warn("primary store failed, using fallback", zap.String("op", op), zap.Error(err))
	metrics.StorageFallbacksTotal.WithLabelValues(op).Inc()
	return fn(s.secondary)
}

func attemptErr(s *FallbackStore, op string, fn func(Store) error) error {
	_, err := attempt(s, op, func(st Store) (struct{}, error) {
		return struct{}{}, fn(st)
	})
	return err
}

func (s *FallbackStore) GetCardsForUser(ctx context.Context, userID uint) ([]models.Card, error) {
	return attempt(s, "get_cards_for_user", func(st Store) ([]models.Card, error) {
		return st.GetCardsForUser(ctx, userID)
	})
}

func (s *FallbackStore) GetCard(ctx context.Context, id uint) (models.Card, error) {
	return attempt(s, "get_card", func(st Store) (models.Card, error) {
		return st.GetCard(ctx, id)
	})
}

func (s *FallbackStore) CreateCard(ctx context.Context, card *models.Card) error {
	return attemptErr(s, "create_card", func(st Store) error {
		return st.CreateCard(ctx, card)
	})
}

func (s *FallbackStore) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	return attempt(s, "list_merchants", func(st Store) ([]models.Merchant, error) {
		return st.ListMerchants(ctx)
	})
}

func (s *FallbackStore) GetMerchant(ctx context.Context, id uint) (models.Merchant, error) {
	return attempt(s, "get_merchant", func(st Store) (models.Merchant, error) {
		return st.GetMerchant(ctx, id)
	})
}

func (s *FallbackStore) GetMerchantByName(ctx context.Context, name string) (models.Merchant, error) {
	return attempt(s, "get_merchant_by_name", func(st Store) (models.Merchant, error) {
		return st.GetMerchantByName(ctx, name)
	})
}

func (s *FallbackStore) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	return attemptErr(s, "create_merchant", func(st Store) error {
		return st.CreateMerchant(ctx, merchant)
	})
}

func (s *FallbackStore) GetOverrides(ctx context.Context, filter OverrideFilter) ([]models.RewardOverride, error) {
	return attempt(s, "get_overrides", func(st Store) ([]models.RewardOverride, error) {
		return st.GetOverrides(ctx, filter)
	})
}

func (s *FallbackStore) CreateOverride(ctx context.Context, override *models.RewardOverride) error {
	return attemptErr(s, "create_override", func(st Store) error {
		return st.CreateOverride(ctx, override)
	})
}

func (s *FallbackStore) GetTransactionsForUser(ctx context.Context, userID uint, r DateRange) ([]models.Transaction, error) {
	return attempt(s, "get_transactions_for_user", func(st Store) ([]models.Transaction, error) {
		return st.GetTransactionsForUser(ctx, userID, r)
	})
}

func (s *FallbackStore) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	return attemptErr(s, "record_transaction", func(st Store) error {
		return st.RecordTransaction(ctx, tx)
	})
}

func (s *FallbackStore) ListFavorites(ctx context.Context, userID uint) ([]models.FavoriteMerchant, error) {
	return attempt(s, "list_favorites", func(st Store) ([]models.FavoriteMerchant, error) {
		return st.ListFavorites(ctx, userID)
	})
}

func (s *FallbackStore) ToggleFavorite(ctx context.Context, userID, merchantID uint) (*models.FavoriteMerchant, error) {
	return attempt(s, "toggle_favorite", func(st Store) (*models.FavoriteMerchant, error) {
		return st.ToggleFavorite(ctx, userID, merchantID)
	})
}

func (s *FallbackStore) CreateUser(ctx context.Context, user *models.User) error {
	return attemptErr(s, "create_user", func(st Store) error {
		return st.CreateUser(ctx, user)
	})
}

func (s *FallbackStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	return attempt(s, "get_user", func(st Store) (models.User, error) {
		return st.GetUser(ctx, id)
	})
}

func (s *FallbackStore) GetUserByUUID(ctx context.Context, uuid string) (models.User, error) {
	return attempt(s, "get_user_by_uuid", func(st Store) (models.User, error) {
		return st.GetUserByUUID(ctx, uuid)
	})
}

func (s *FallbackStore) GetUserByLogin(ctx context.Context, identifier string) (models.User, error) {
	return attempt(s, "get_user_by_login", func(st Store) (models.User, error) {
		return st.GetUserByLogin(ctx, identifier)
	})
}
