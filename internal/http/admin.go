package http

import (
	"github.com/gin-gonic/gin"

	"rewards-optimizer-go/internal/models"
)

// POST /v1/admin/merchants
func (s *Server) createMerchant(c *gin.Context) {
	var input struct {
		Name     string  `json:"name"`
		Category *string `json:"category"`
		LogoURL  *string `json:"logo_url"`
	}
	if !s.bindValid(c, "merchant", &input) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	m := models.Merchant{Name: input.Name, Category: input.Category, LogoURL: input.LogoURL}
	if err := s.svc.CreateMerchant(ctx, &m); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, m)
}

// POST /v1/admin/overrides
func (s *Server) createOverride(c *gin.Context) {
	var input models.RewardOverride
	if !s.bindValid(c, "override", &input) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	if err := s.svc.CreateOverride(ctx, &input); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, input)
}
