package service

import (
	"context"
	"fmt"
	"strings"

	"rewards-optimizer-go/internal/models"
)

func (s *RewardsService) ListCards(ctx context.Context, userID uint) ([]models.Card, error) {
	return s.store.GetCardsForUser(ctx, userID)
}

// AddCard stores card for userID and drops the user's cached recommendations.
func (s *RewardsService) AddCard(ctx context.Context, userID uint, card *models.Card) error {
	card.CardType = strings.TrimSpace(card.CardType)
	switch {
	case card.CardType == "":
		return fmt.Errorf("%w: card_type is required", ErrInvalidCard)
	case !isLastFour(card.LastFour):
		return fmt.Errorf("%w: last_four must be 4 digits", ErrInvalidCard)
	case card.BaseRewardRate < 0:
		return fmt.Errorf("%w: base_reward_rate must not be negative", ErrInvalidCard)
	}

	card.ID = 0
	card.UserID = userID
	card.CreatedAt = s.now()
	if err := s.store.CreateCard(ctx, card); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func isLastFour(v string) bool {
	if len(v) != 4 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
