package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

type SeedResult struct {
	MerchantsCreated int `json:"merchants_created"`
	UsersCreated     int `json:"users_created"`
}

// Seed writes the catalog into store. Merchants are matched by name and
// users by username, so running it again creates nothing new.
func Seed(ctx context.Context, store storage.Store, c *Catalog, companyPoints float64) (SeedResult, error) {
	var res SeedResult
	merchantIDs := make(map[string]uint, len(c.Merchants))

	for _, entry := range c.Merchants {
		m, err := store.GetMerchantByName(ctx, entry.Name)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			m = models.Merchant{Name: entry.Name, Category: optional(entry.Category), LogoURL: optional(entry.LogoURL)}
			if err := store.CreateMerchant(ctx, &m); err != nil {
				return res, fmt.Errorf("seed merchant %s: %w", entry.Name, err)
			}
			res.MerchantsCreated++
		default:
			return res, fmt.Errorf("seed merchant %s: %w", entry.Name, err)
		}
		merchantIDs[entry.Name] = m.ID
	}

	for _, u := range c.Users {
		_, err := store.GetUserByLogin(ctx, u.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return res, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		if err := seedUser(ctx, store, u, merchantIDs, companyPoints); err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		res.UsersCreated++
	}
	return res, nil
}

func seedUser(ctx context.Context, store storage.Store, entry UserEntry, merchantIDs map[string]uint, companyPoints float64) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Username:     entry.Username,
		Email:        entry.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := store.CreateUser(ctx, &user); err != nil {
		return err
	}

	var (
		cards     []models.Card
		overrides []models.RewardOverride
	)
	byLastFour := make(map[string]uint, len(entry.Cards))
	for _, ce := range entry.Cards {
		card := models.Card{
			UserID:         user.ID,
			CardType:       ce.CardType,
			LastFour:       ce.LastFour,
			ExpiryDate:     ce.ExpiryDate,
			BaseRewardRate: ce.BaseRewardRate,
			Nickname:       optional(ce.Nickname),
			Issuer:         optional(ce.Issuer),
			CreatedAt:      time.Now(),
		}
		if err := store.CreateCard(ctx, &card); err != nil {
			return err
		}
		cards = append(cards, card)
		byLastFour[card.LastFour] = card.ID

		merchants := make([]string, 0, len(ce.Overrides))
		for name := range ce.Overrides {
			merchants = append(merchants, name)
		}
		sort.Strings(merchants)
		for _, name := range merchants {
			o := models.RewardOverride{CardID: card.ID, MerchantID: merchantIDs[name], RewardRate: ce.Overrides[name]}
			if err := store.CreateOverride(ctx, &o); err != nil {
				return err
			}
			overrides = append(overrides, o)
		}
	}

	now := time.Now()
	for _, te := range entry.Transactions {
		cardID, merchantID := byLastFour[te.Card], merchantIDs[te.Merchant]
		tx := models.Transaction{
			UserID:     user.ID,
			CardID:     &cardID,
			MerchantID: &merchantID,
			Amount:     te.Amount,
			Date:       now.AddDate(0, 0, -te.DaysAgo),
		}
		rewards.Accrue(&tx, cards, overrides, companyPoints)
		if err := store.RecordTransaction(ctx, &tx); err != nil {
			return err
		}
	}

	for _, name := range entry.Favorites {
		if _, err := store.ToggleFavorite(ctx, user.ID, merchantIDs[name]); err != nil {
			return err
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
