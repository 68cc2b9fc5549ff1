// Package cache stores computed recommendations. Entries are keyed by a
// per-user generation so adding a card invalidates everything for that user
// in one step.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rewards-optimizer-go/internal/rewards"
)

// RecommendationCache is best-effort: callers log errors and carry on.
type RecommendationCache interface {
	Get(ctx context.Context, userID uint, merchant string, amount float64) (rewards.Recommendation, bool, error)
	Put(ctx context.Context, userID uint, merchant string, amount float64, rec rewards.Recommendation) error
	Invalidate(ctx context.Context, userID uint) error
}

func entryKey(userID uint, gen int64, merchant string, amount float64) string {
	return fmt.Sprintf("rewards:rec:%d:%d:%s:%s",
		userID, gen, strings.ToLower(merchant), strconv.FormatFloat(amount, 'f', -1, 64))
}

func generationKey(userID uint) string {
	return fmt.Sprintf("rewards:rec:gen:%d", userID)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, uint, string, float64) (rewards.Recommendation, bool, error) {
	return rewards.Recommendation{}, false, nil
}

func (Nop) Put(context.Context, uint, string, float64, rewards.Recommendation) error { return nil }

func (Nop) Invalidate(context.Context, uint) error { return nil }
