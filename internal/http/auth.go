package http

import (
	"github.com/gin-gonic/gin"

	"rewards-optimizer-go/internal/models"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: user})
}

// POST /v1/auth/register
func (s *Server) authRegister(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.bindValid(c, "register", &input) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	user, err := s.svc.Register(ctx, input.Username, input.Email, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respondWithToken(c, 201, &user)
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	user, err := s.svc.Authenticate(ctx, input.Identifier, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respondWithToken(c, 200, &user)
}
