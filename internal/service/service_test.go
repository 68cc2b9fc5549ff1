package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rewards-optimizer-go/internal/cache"
	"rewards-optimizer-go/internal/catalog"
	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func amount(v float64) *float64 {
	return &v
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Transaction
	err    error
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, t models.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, t)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc    *RewardsService
	store  *storage.MemoryStore
	pub    *recordingPublisher
	userID uint
	visa   models.Card
	master models.Card
	amazon models.Merchant
	cafe   models.Merchant
}

// The VISA card earns 1.0% base and 2.5% at Amazon; the MasterCard earns 1.5% everywhere.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := New(store, Options{
		Cache:                       cache.NewMemoryCache(100, time.Minute),
		Publisher:                   pub,
		Logger:                      zap.NewNop(),
		CompanyPointsPerTransaction: 100,
		DefaultPurchaseAmount:       14000,
		Now:                         func() time.Time { return testNow },
	})

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	f := &fixture{svc: svc, store: store, pub: pub, userID: user.ID}
	f.amazon = models.Merchant{Name: "Amazon"}
	require.NoError(t, svc.CreateMerchant(ctx, &f.amazon))
	f.cafe = models.Merchant{Name: "Cafe"}
	require.NoError(t, svc.CreateMerchant(ctx, &f.cafe))

	f.visa = models.Card{CardType: "VISA", LastFour: "4582", BaseRewardRate: 1.0}
	require.NoError(t, svc.AddCard(ctx, user.ID, &f.visa))
	f.master = models.Card{CardType: "MasterCard", LastFour: "7821", BaseRewardRate: 1.5}
	require.NoError(t, svc.AddCard(ctx, user.ID, &f.master))

	require.NoError(t, svc.CreateOverride(ctx, &models.RewardOverride{CardID: f.visa.ID, MerchantID: f.amazon.ID, RewardRate: 2.5}))
	return f
}

func TestRecommend(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Recommend(context.Background(), f.userID, "amazon", amount(14000))
	require.NoError(t, err)
	assert.Equal(t, f.amazon.ID, rec.Merchant.ID)
	assert.Equal(t, f.visa.ID, rec.OptimalCard.Card.ID)
	assert.Equal(t, int64(350), rec.OptimalCard.EstimatedPoints)
	require.Len(t, rec.OtherCards, 1)
	assert.Equal(t, int64(210), rec.OtherCards[0].EstimatedPoints)
}

func TestRecommend_DefaultAmount(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Recommend(context.Background(), f.userID, "Amazon", nil)
	require.NoError(t, err)
	assert.Equal(t, 14000.0, rec.PurchaseAmount)

	rec, err = f.svc.Recommend(context.Background(), f.userID, "Amazon", amount(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.PurchaseAmount)
	assert.Equal(t, int64(0), rec.OptimalCard.EstimatedPoints)
}

func TestRecommend_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := f.svc.Recommend(ctx, f.userID, "Amazon", amount(bad))
		assert.ErrorIs(t, err, rewards.ErrInvalidAmount, "amount %v", bad)
	}

	_, err := f.svc.Recommend(ctx, f.userID, "Nowhere", amount(100))
	assert.ErrorIs(t, err, rewards.ErrMerchantNotFound)

	other, err := f.svc.Register(ctx, "bob", "bob@example.com", "secret")
	require.NoError(t, err)
	_, err = f.svc.Recommend(ctx, other.ID, "Amazon", amount(100))
	assert.ErrorIs(t, err, rewards.ErrNoCardsAvailable)
}

func TestRecommend_AddCardInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Recommend(ctx, f.userID, "Amazon", amount(10000))
	require.NoError(t, err)
	assert.Equal(t, f.visa.ID, first.OptimalCard.Card.ID)

	premium := models.Card{CardType: "Amex", LastFour: "3901", BaseRewardRate: 5}
	require.NoError(t, f.svc.AddCard(ctx, f.userID, &premium))

	second, err := f.svc.Recommend(ctx, f.userID, "Amazon", amount(10000))
	require.NoError(t, err)
	assert.Equal(t, premium.ID, second.OptimalCard.Card.ID)
	assert.Len(t, second.OtherCards, 2)
}

func TestAddCard_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		card models.Card
	}{
		{"missing type", models.Card{LastFour: "1234", BaseRewardRate: 1}},
		{"short last four", models.Card{CardType: "VISA", LastFour: "123", BaseRewardRate: 1}},
		{"letters in last four", models.Card{CardType: "VISA", LastFour: "12a4", BaseRewardRate: 1}},
		{"negative rate", models.Card{CardType: "VISA", LastFour: "1234", BaseRewardRate: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := tt.card
			assert.ErrorIs(t, f.svc.AddCard(ctx, f.userID, &card), ErrInvalidCard)
		})
	}

	cards, err := f.svc.ListCards(ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
	assert.Equal(t, testNow, cards[0].CreatedAt)
}

func TestRecordTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.RecordTransaction(ctx, f.userID, TransactionInput{
		CardID:     &f.visa.ID,
		MerchantID: &f.amazon.ID,
		Amount:     14000,
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, testNow, tx.Date)
	assert.InDelta(t, 350.0, tx.CardPoints(), 1e-9)
	assert.Equal(t, 100.0, tx.CompanyPoints())
	assert.True(t, tx.IsOptimal)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, tx.ID, f.pub.events[0].ID)
}

func TestRecordTransaction_SuboptimalByMerchantName(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.RecordTransaction(context.Background(), f.userID, TransactionInput{
		CardID:       &f.master.ID,
		MerchantName: "AMAZON",
		Amount:       14000,
	})
	require.NoError(t, err)
	require.NotNil(t, tx.MerchantID)
	assert.Equal(t, f.amazon.ID, *tx.MerchantID)
	assert.InDelta(t, 210.0, tx.CardPoints(), 1e-9)
	assert.False(t, tx.IsOptimal)
}

func TestRecordTransaction_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	_, err := f.svc.RecordTransaction(context.Background(), f.userID, TransactionInput{
		CardID:     &f.visa.ID,
		MerchantID: &f.cafe.ID,
		Amount:     500,
	})
	assert.NoError(t, err)
}

func TestRecordTransaction_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.svc.Register(ctx, "bob", "bob@example.com", "secret")
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, other.ID, TransactionInput{CardID: &f.visa.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrCardNotOwned)

	missing := uint(999)
	_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{CardID: &missing, Amount: 100})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{MerchantID: &missing, Amount: 100})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{MerchantName: "Nowhere", Amount: 100})
	assert.ErrorIs(t, err, rewards.ErrMerchantNotFound)

	for _, bad := range []float64{-5, math.NaN(), math.Inf(1)} {
		_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{Amount: bad})
		assert.ErrorIs(t, err, rewards.ErrInvalidAmount, "amount %v", bad)
	}

	assert.Empty(t, f.pub.events)
}

func TestSummary_SeededCatalog(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c, err := catalog.Load("")
	require.NoError(t, err)
	_, err = catalog.Seed(ctx, store, c, 100)
	require.NoError(t, err)

	svc := New(store, Options{Logger: zap.NewNop()})
	user, err := svc.UserByLogin(ctx, "sample_user")
	require.NoError(t, err)

	s, err := svc.Summary(ctx, user.ID, storage.DateRange{})
	require.NoError(t, err)
	// VISA at Amazon earned 192 where MasterCard would have earned 320.
	assert.InDelta(t, 324.25, s.CardPoints, 1e-9)
	assert.Equal(t, 300.0, s.CompanyPoints)
	assert.InDelta(t, 128.0, s.PotentialExtraPoints, 1e-9)
	require.Len(t, s.PerCard, 3)
	assert.Equal(t, "VISA •••• 4582", s.PerCard[0].Label)
}

func TestSummary_RespectsRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordTransaction(ctx, f.userID, TransactionInput{
		CardID: &f.master.ID, MerchantID: &f.amazon.ID, Amount: 1000, Date: testNow.AddDate(0, 0, -40),
	})
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{
		CardID: &f.visa.ID, MerchantID: &f.amazon.ID, Amount: 1000, Date: testNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	week, err := storage.ParsePeriod("week", "", "", testNow)
	require.NoError(t, err)
	s, err := f.svc.Summary(ctx, f.userID, week)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, s.CardPoints, 1e-9)
	assert.Zero(t, s.PotentialExtraPoints)

	all, err := f.svc.Summary(ctx, f.userID, storage.DateRange{})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, all.CardPoints, 1e-9)
	assert.InDelta(t, 10.0, all.PotentialExtraPoints, 1e-9)
}

func TestSummary_ReportsAmbiguousOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// bypass the service guard to simulate legacy duplicate rows
	require.NoError(t, f.store.CreateOverride(ctx, &models.RewardOverride{CardID: f.visa.ID, MerchantID: f.amazon.ID, RewardRate: 3.0}))

	s, err := f.svc.Summary(ctx, f.userID, storage.DateRange{})
	require.NoError(t, err)
	require.Len(t, s.Ambiguous, 1)
	assert.Equal(t, 3.0, s.Ambiguous[0].Applied)
	assert.Equal(t, []float64{2.5, 3.0}, s.Ambiguous[0].Rates)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordTransaction(ctx, f.userID, TransactionInput{
		CardID: &f.visa.ID, MerchantID: &f.amazon.ID, Amount: 1000, Date: testNow.AddDate(0, 0, -2),
	})
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, f.userID, TransactionInput{Amount: 300, Date: testNow.AddDate(0, 0, -1)})
	require.NoError(t, err)

	views, err := f.svc.History(ctx, f.userID, storage.DateRange{})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Unknown Merchant", views[0].MerchantName)
	assert.Equal(t, "Unknown Card", views[0].CardType)
	assert.Equal(t, "0000", views[0].LastFour)
	assert.Zero(t, views[0].RewardRate)

	assert.Equal(t, "Amazon", views[1].MerchantName)
	assert.Equal(t, "VISA", views[1].CardType)
	assert.Equal(t, "4582", views[1].LastFour)
	assert.Equal(t, 2.5, views[1].RewardRate)
	assert.True(t, views[1].IsOptimal)
}

func TestMerchants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.svc.ToggleFavorite(ctx, f.userID, f.cafe.ID)
	require.NoError(t, err)
	assert.True(t, added)

	views, err := f.svc.Merchants(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, 2.5, views[0].BestRewardRate)
	require.NotNil(t, views[0].BestCardID)
	assert.Equal(t, f.visa.ID, *views[0].BestCardID)
	assert.False(t, views[0].IsFavorite)

	assert.Equal(t, 1.5, views[1].BestRewardRate)
	assert.True(t, views[1].IsFavorite)

	removed, err := f.svc.ToggleFavorite(ctx, f.userID, f.cafe.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = f.svc.ToggleFavorite(ctx, f.userID, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMerchants_NoCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.svc.Register(ctx, "bob", "bob@example.com", "secret")
	require.NoError(t, err)

	views, err := f.svc.Merchants(ctx, other.ID)
	require.NoError(t, err)
	for _, v := range views {
		assert.Zero(t, v.BestRewardRate)
		assert.Nil(t, v.BestCardID)
	}
}

func TestCreateMerchant_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.CreateMerchant(ctx, &models.Merchant{Name: "  amazon "}), storage.ErrConflict)
	assert.ErrorIs(t, f.svc.CreateMerchant(ctx, &models.Merchant{Name: " "}), ErrInvalidMerchant)
}

func TestCreateOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dup := models.RewardOverride{CardID: f.visa.ID, MerchantID: f.amazon.ID, RewardRate: 4}
	assert.ErrorIs(t, f.svc.CreateOverride(ctx, &dup), storage.ErrConflict)

	assert.ErrorIs(t, f.svc.CreateOverride(ctx, &models.RewardOverride{CardID: f.visa.ID, MerchantID: f.cafe.ID, RewardRate: -1}), ErrInvalidOverride)
	assert.ErrorIs(t, f.svc.CreateOverride(ctx, &models.RewardOverride{CardID: 999, MerchantID: f.cafe.ID, RewardRate: 1}), storage.ErrNotFound)

	before, err := f.svc.Recommend(ctx, f.userID, "Cafe", amount(1000))
	require.NoError(t, err)
	assert.Equal(t, f.master.ID, before.OptimalCard.Card.ID)

	require.NoError(t, f.svc.CreateOverride(ctx, &models.RewardOverride{CardID: f.visa.ID, MerchantID: f.cafe.ID, RewardRate: 5}))

	after, err := f.svc.Recommend(ctx, f.userID, "Cafe", amount(1000))
	require.NoError(t, err)
	assert.Equal(t, f.visa.ID, after.OptimalCard.Card.ID)
	assert.Equal(t, int64(50), after.OptimalCard.EstimatedPoints)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, storage.ErrConflict)
	_, err = f.svc.Register(ctx, "", "x@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidUser)

	user, err := f.svc.Authenticate(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, f.userID, user.ID)
	assert.NotEmpty(t, user.UUID)

	byUUID, err := f.svc.UserByUUID(ctx, user.UUID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byUUID.Username)

	_, err = f.svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = f.svc.Authenticate(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
