package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"rewards-optimizer-go/internal/service"
	"rewards-optimizer-go/internal/storage"
)

// GET /v1/transactions?period=week|month|year|all&start_date=&end_date=
func (s *Server) listTransactions(c *gin.Context) {
	r, err := storage.ParsePeriod(c.DefaultQuery("period", "week"), c.Query("start_date"), c.Query("end_date"), s.svc.Now())
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	views, err := s.svc.History(ctx, userID(c), r)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, views)
}

func (s *Server) recordTransaction(c *gin.Context) {
	var input struct {
		CardID       *uint   `json:"card_id"`
		MerchantID   *uint   `json:"merchant_id"`
		MerchantName string  `json:"merchant_name"`
		Amount       float64 `json:"amount"`
		Date         string  `json:"date"`
	}
	if !s.bindValid(c, "transaction", &input) {
		return
	}

	date, ok := parseDate(input.Date)
	if !ok {
		c.JSON(400, gin.H{"error": "invalid_date"})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	tx, err := s.svc.RecordTransaction(ctx, userID(c), service.TransactionInput{
		CardID:       input.CardID,
		MerchantID:   input.MerchantID,
		MerchantName: input.MerchantName,
		Amount:       input.Amount,
		Date:         date,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, tx)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. Empty
// means now and yields the zero time.
func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
