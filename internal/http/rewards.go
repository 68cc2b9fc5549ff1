package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

// GET /v1/rewards/summary?period=week|month|year|all&start_date=&end_date=
func (s *Server) rewardsSummary(c *gin.Context) {
	period := c.DefaultQuery("period", "all")
	r, err := storage.ParsePeriod(period, c.Query("start_date"), c.Query("end_date"), s.svc.Now())
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	summary, err := s.svc.Summary(ctx, userID(c), r)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"period": period, "summary": summary})
}

// GET /v1/recommendation?merchant=&amount=
func (s *Server) recommend(c *gin.Context) {
	merchant := strings.TrimSpace(c.Query("merchant"))
	if merchant == "" {
		c.JSON(400, gin.H{"error": "merchant_required"})
		return
	}

	var amount *float64
	if v, ok := c.GetQuery("amount"); ok {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || !rewards.ValidAmount(a) {
			c.JSON(400, gin.H{"error": "invalid_amount"})
			return
		}
		amount = &a
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	rec, err := s.svc.Recommend(ctx, userID(c), merchant, amount)
	switch {
	case err == nil:
		c.JSON(200, gin.H{"available": true, "recommendation": rec})
	case errors.Is(err, rewards.ErrNoCardsAvailable):
		c.JSON(200, gin.H{"available": false, "reason": "no_cards_available"})
	case errors.Is(err, rewards.ErrMerchantNotFound):
		c.JSON(200, gin.H{"available": false, "reason": "merchant_not_found"})
	default:
		s.fail(c, err)
	}
}
