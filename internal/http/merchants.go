package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) listMerchants(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	views, err := s.svc.Merchants(ctx, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, views)
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	favorite, err := s.svc.ToggleFavorite(ctx, userID(c), uint(id))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"merchant_id": uint(id), "is_favorite": favorite})
}
