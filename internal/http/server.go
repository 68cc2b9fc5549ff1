package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"rewards-optimizer-go/internal/config"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/service"
	"rewards-optimizer-go/internal/storage"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Server struct {
	cfg     *config.Config
	svc     *service.RewardsService
	logger  *zap.Logger
	schemas map[string]*gojsonschema.Schema
	tokens  Tokens
}

func NewServer(cfg *config.Config, svc *service.RewardsService, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(requestLogger(logger))
	r.Use(instrument())

	schemas, err := loadSchemas("card", "transaction", "merchant", "override", "register")
	if err != nil {
		panic(err)
	}

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		logger:  logger,
		schemas: schemas,
		tokens:  NewTokens(cfg.JWTSecret, cfg.TokenTTL()),
	}

	r.POST("/v1/auth/register", s.authRegister)
	r.POST("/v1/auth/login", s.authLogin)

	authorized := r.Group("/v1")
	authorized.Use(AuthMiddleware(svc, s.tokens))
	{
		authorized.GET("/cards", s.listCards)
		authorized.POST("/cards", s.addCard)
		authorized.GET("/merchants", s.listMerchants)
		authorized.POST("/merchants/:id/favorite", s.toggleFavorite)
		authorized.GET("/transactions", s.listTransactions)
		authorized.POST("/transactions", s.recordTransaction)
		authorized.GET("/rewards/summary", s.rewardsSummary)
		authorized.GET("/recommendation", s.recommend)
	}

	admin := r.Group("/v1/admin")
	admin.Use(AdminMiddleware(cfg.AdminBearer))
	{
		admin.POST("/merchants", s.createMerchant)
		admin.POST("/overrides", s.createOverride)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func loadSchemas(names ...string) (map[string]*gojsonschema.Schema, error) {
	out := make(map[string]*gojsonschema.Schema, len(names))
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, err
		}
		out[name] = schema
	}
	return out, nil
}

func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout())
}

// bindValid validates the request body against the named schema and decodes
// it into dst. It writes the error response itself and reports false on failure.
func (s *Server) bindValid(c *gin.Context, schema string, dst any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return false
	}

	res, err := s.schemas[schema].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_json"})
		return false
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": d})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.JSON(400, gin.H{"error": "invalid_json"})
		return false
	}
	return true
}

// fail maps a service error to a status and snake_case code.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, rewards.ErrInvalidAmount):
		status, code = 400, "invalid_amount"
	case errors.Is(err, rewards.ErrMerchantNotFound):
		status, code = 404, "merchant_not_found"
	case errors.Is(err, rewards.ErrNoCardsAvailable):
		status, code = 422, "no_cards_available"
	case errors.Is(err, storage.ErrInvalidPeriod):
		status, code = 400, "invalid_period"
	case errors.Is(err, service.ErrInvalidCard):
		status, code = 400, "invalid_card"
	case errors.Is(err, service.ErrInvalidMerchant):
		status, code = 400, "invalid_merchant"
	case errors.Is(err, service.ErrInvalidOverride):
		status, code = 400, "invalid_override"
	case errors.Is(err, service.ErrInvalidUser):
		status, code = 400, "invalid_user"
	case errors.Is(err, service.ErrCardNotOwned):
		status, code = 403, "card_not_owned"
	case errors.Is(err, service.ErrBadCredentials):
		status, code = 401, "invalid_credentials"
	case errors.Is(err, storage.ErrNotFound):
		status, code = 404, "not_found"
	case errors.Is(err, storage.ErrConflict):
		status, code = 409, "already_exists"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = 504, "timeout"
	}

	if status >= 500 {
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": code})
}

func userID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}
