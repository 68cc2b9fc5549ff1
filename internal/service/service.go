// Package service composes storage, the rewards core, the recommendation
// cache and event publishing into the operations the API exposes.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rewards-optimizer-go/internal/cache"
	"rewards-optimizer-go/internal/events"
	"rewards-optimizer-go/internal/metrics"
	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

var (
	ErrInvalidCard     = errors.New("invalid card")
	ErrInvalidMerchant = errors.New("invalid merchant")
	ErrInvalidOverride = errors.New("invalid override")
	ErrInvalidUser     = errors.New("invalid user")
	ErrCardNotOwned    = errors.New("card does not belong to user")
	ErrBadCredentials  = errors.New("invalid credentials")
)

type Options struct {
	Cache                       cache.RecommendationCache
	Publisher                   events.Publisher
	Logger                      *zap.Logger
	CompanyPointsPerTransaction float64
	DefaultPurchaseAmount       float64
	Now                         func() time.Time
}

type RewardsService struct {
	store         storage.Store
	cache         cache.RecommendationCache
	publisher     events.Publisher
	logger        *zap.Logger
	companyPoints float64
	defaultAmount float64
	now           func() time.Time
}

func New(store storage.Store, opts Options) *RewardsService {
	s := &RewardsService{
		store:         store,
		cache:         opts.Cache,
		publisher:     opts.Publisher,
		logger:        opts.Logger,
		companyPoints: opts.CompanyPointsPerTransaction,
		defaultAmount: opts.DefaultPurchaseAmount,
		now:           opts.Now,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now is the clock used for defaults and period windows.
func (s *RewardsService) Now() time.Time {
	return s.now()
}

// overridesForCards fetches the overrides that can affect cards, optionally
// narrowed to one merchant. No cards means no relevant overrides.
func (s *RewardsService) overridesForCards(ctx context.Context, cards []models.Card, merchantID *uint) ([]models.RewardOverride, error) {
	if len(cards) == 0 {
		return []models.RewardOverride{}, nil
	}
	ids := make([]uint, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	overrides, err := s.store.GetOverrides(ctx, storage.OverrideFilter{CardIDs: ids, MerchantID: merchantID})
	if err != nil {
		return nil, err
	}
	s.reportAmbiguous(rewards.NewRateTable(overrides).Ambiguous())
	return overrides, nil
}

func (s *RewardsService) reportAmbiguous(found []rewards.AmbiguousOverride) {
	for _, a := range found {
		metrics.AmbiguousOverridesTotal.Inc()
		s.logger.Warn("duplicate reward overrides for card and merchant",
			zap.Uint("card_id", a.CardID),
			zap.Uint("merchant_id", a.MerchantID),
			zap.Float64s("rates", a.Rates),
			zap.Float64("applied", a.Applied),
		)
	}
}

func (s *RewardsService) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("recommendation cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
