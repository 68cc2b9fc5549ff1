package http

import (
	"github.com/gin-gonic/gin"

	"rewards-optimizer-go/internal/models"
)

func (s *Server) listCards(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	cards, err := s.svc.ListCards(ctx, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, cards)
}

func (s *Server) addCard(c *gin.Context) {
	var input struct {
		CardType       string  `json:"card_type"`
		LastFour       string  `json:"last_four"`
		ExpiryDate     string  `json:"expiry_date"`
		BaseRewardRate float64 `json:"base_reward_rate"`
		Nickname       *string `json:"nickname"`
		Issuer         *string `json:"issuer"`
		LogoURL        *string `json:"logo_url"`
	}
	if !s.bindValid(c, "card", &input) {
		return
	}

	card := models.Card{
		CardType:       input.CardType,
		LastFour:       input.LastFour,
		ExpiryDate:     input.ExpiryDate,
		BaseRewardRate: input.BaseRewardRate,
		Nickname:       input.Nickname,
		Issuer:         input.Issuer,
		LogoURL:        input.LogoURL,
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	if err := s.svc.AddCard(ctx, userID(c), &card); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, card)
}
