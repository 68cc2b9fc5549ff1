package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

type snapshot struct {
	cards        []models.Card
	merchants    []models.Merchant
	transactions []models.Transaction
	overrides    []models.RewardOverride
}

// load reads the user's cards, the merchant catalog and the transactions in r
// concurrently, then the overrides for those cards.
func (s *RewardsService) load(ctx context.Context, userID uint, r storage.DateRange) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.cards, err = s.store.GetCardsForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.merchants, err = s.store.ListMerchants(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.transactions, err = s.store.GetTransactionsForUser(gctx, userID, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	overrides, err := s.overridesForCards(ctx, snap.cards, nil)
	if err != nil {
		return snapshot{}, err
	}
	snap.overrides = overrides
	return snap, nil
}

// Summary totals the user's rewards for transactions in r.
func (s *RewardsService) Summary(ctx context.Context, userID uint, r storage.DateRange) (rewards.Summary, error) {
	snap, err := s.load(ctx, userID, r)
	if err != nil {
		return rewards.Summary{}, err
	}
	return rewards.SummarizeRewards(snap.transactions, snap.cards, snap.merchants, snap.overrides), nil
}
