package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rewards-optimizer-go/internal/metrics"
	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

// Recommend ranks the user's cards for a purchase at the named merchant. A
// nil purchaseAmount means the configured default purchase amount.
func (s *RewardsService) Recommend(ctx context.Context, userID uint, merchantName string, purchaseAmount *float64) (rewards.Recommendation, error) {
	amount := s.defaultAmount
	if purchaseAmount != nil {
		amount = *purchaseAmount
	}
	if !rewards.ValidAmount(amount) {
		metrics.RecommendationsTotal.WithLabelValues("invalid_amount").Inc()
		return rewards.Recommendation{}, rewards.ErrInvalidAmount
	}

	if rec, ok, err := s.cache.Get(ctx, userID, merchantName, amount); err != nil {
		s.logger.Warn("recommendation cache read failed", zap.Error(err))
	} else if ok {
		metrics.RecommendationCacheTotal.WithLabelValues("hit").Inc()
		metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
		return rec, nil
	}
	metrics.RecommendationCacheTotal.WithLabelValues("miss").Inc()

	var (
		cards    []models.Card
		merchant models.Merchant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.store.GetCardsForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		merchant, err = s.store.GetMerchantByName(gctx, merchantName)
		if errors.Is(err, storage.ErrNotFound) {
			return rewards.ErrMerchantNotFound
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.countOutcome(err)
		return rewards.Recommendation{}, err
	}

	overrides, err := s.overridesForCards(ctx, cards, &merchant.ID)
	if err != nil {
		s.countOutcome(err)
		return rewards.Recommendation{}, err
	}

	rec, err := rewards.BuildRecommendation(cards, []models.Merchant{merchant}, overrides, merchant.Name, amount)
	if err != nil {
		s.countOutcome(err)
		return rewards.Recommendation{}, err
	}
	s.countOutcome(nil)

	if err := s.cache.Put(ctx, userID, merchantName, amount, rec); err != nil {
		s.logger.Warn("recommendation cache write failed", zap.Error(err))
	}
	return rec, nil
}

func (s *RewardsService) countOutcome(err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, rewards.ErrNoCardsAvailable):
		outcome = "no_cards"
	case errors.Is(err, rewards.ErrMerchantNotFound):
		outcome = "merchant_not_found"
	case errors.Is(err, rewards.ErrInvalidAmount):
		outcome = "invalid_amount"
	default:
		outcome = "error"
	}
	metrics.RecommendationsTotal.WithLabelValues(outcome).Inc()
}
