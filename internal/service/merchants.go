package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

type MerchantView struct {
	models.Merchant
	BestRewardRate float64 `json:"best_reward_rate"`
	BestCardID     *uint   `json:"best_card_id"`
	IsFavorite     bool    `json:"is_favorite"`
}

// Merchants lists the catalog with the best rate the user's cards earn at
// each merchant. Users without cards see a best rate of 0.
func (s *RewardsService) Merchants(ctx context.Context, userID uint) ([]MerchantView, error) {
	var (
		merchants []models.Merchant
		cards     []models.Card
		favorites []models.FavoriteMerchant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		merchants, err = s.store.ListMerchants(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.store.GetCardsForUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = s.store.ListFavorites(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overrides, err := s.overridesForCards(ctx, cards, nil)
	if err != nil {
		return nil, err
	}
	table := rewards.NewRateTable(overrides)

	fav := make(map[uint]bool, len(favorites))
	for _, f := range favorites {
		fav[f.MerchantID] = true
	}

	views := make([]MerchantView, 0, len(merchants))
	for _, m := range merchants {
		v := MerchantView{Merchant: m, IsFavorite: fav[m.ID]}
		if best, err := table.Best(cards, m.ID); err == nil {
			id := best.Card.ID
			v.BestRewardRate = best.Rate
			v.BestCardID = &id
		}
		views = append(views, v)
	}
	return views, nil
}

// ToggleFavorite flips the favorite flag and reports whether the merchant is
// now a favorite.
func (s *RewardsService) ToggleFavorite(ctx context.Context, userID, merchantID uint) (bool, error) {
	if _, err := s.store.GetMerchant(ctx, merchantID); err != nil {
		return false, err
	}
	fav, err := s.store.ToggleFavorite(ctx, userID, merchantID)
	if err != nil {
		return false, err
	}
	return fav != nil, nil
}

// CreateMerchant adds a merchant to the catalog. Names are unique ignoring case.
func (s *RewardsService) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMerchant)
	}
	_, err := s.store.GetMerchantByName(ctx, m.Name)
	switch {
	case err == nil:
		return fmt.Errorf("merchant %q: %w", m.Name, storage.ErrConflict)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}
	m.ID = 0
	return s.store.CreateMerchant(ctx, m)
}

// CreateOverride sets a merchant-specific rate for a card. A pair may only
// have one override.
func (s *RewardsService) CreateOverride(ctx context.Context, o *models.RewardOverride) error {
	if o.RewardRate < 0 {
		return fmt.Errorf("%w: reward_rate must not be negative", ErrInvalidOverride)
	}
	card, err := s.store.GetCard(ctx, o.CardID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetMerchant(ctx, o.MerchantID); err != nil {
		return err
	}

	merchantID := o.MerchantID
	existing, err := s.store.GetOverrides(ctx, storage.OverrideFilter{CardIDs: []uint{o.CardID}, MerchantID: &merchantID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("override for card %d at merchant %d: %w", o.CardID, o.MerchantID, storage.ErrConflict)
	}

	o.ID = 0
	if err := s.store.CreateOverride(ctx, o); err != nil {
		return err
	}
	s.invalidate(ctx, card.UserID)
	return nil
}
