package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"rewards-optimizer-go/internal/metrics"
	"rewards-optimizer-go/internal/models"
	"rewards-optimizer-go/internal/rewards"
	"rewards-optimizer-go/internal/storage"
)

// TransactionInput is a purchase as reported by the client. MerchantName is
// used when MerchantID is nil.
type TransactionInput struct {
	CardID       *uint
	MerchantID   *uint
	MerchantName string
	Amount       float64
	Date         time.Time
}

// TransactionView is a transaction joined with the names the history screen shows.
type TransactionView struct {
	models.Transaction
	MerchantName string  `json:"merchant_name"`
	CardType     string  `json:"card_type"`
	LastFour     string  `json:"last_four"`
	RewardRate   float64 `json:"reward_rate"`
}

// RecordTransaction derives the reward figures for the purchase from the
// rates in effect now, stores it and publishes a transaction event.
func (s *RewardsService) RecordTransaction(ctx context.Context, userID uint, in TransactionInput) (models.Transaction, error) {
	if !rewards.ValidAmount(in.Amount) {
		return models.Transaction{}, rewards.ErrInvalidAmount
	}

	if in.CardID != nil {
		card, err := s.store.GetCard(ctx, *in.CardID)
		if err != nil {
			return models.Transaction{}, err
		}
		if card.UserID != userID {
			return models.Transaction{}, ErrCardNotOwned
		}
	}

	merchantID := in.MerchantID
	switch {
	case merchantID != nil:
		if _, err := s.store.GetMerchant(ctx, *merchantID); err != nil {
			return models.Transaction{}, err
		}
	case in.MerchantName != "":
		m, err := s.store.GetMerchantByName(ctx, in.MerchantName)
		if errors.Is(err, storage.ErrNotFound) {
			return models.Transaction{}, rewards.ErrMerchantNotFound
		}
		if err != nil {
			return models.Transaction{}, err
		}
		merchantID = &m.ID
	}

	cards, err := s.store.GetCardsForUser(ctx, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	overrides, err := s.overridesForCards(ctx, cards, merchantID)
	if err != nil {
		return models.Transaction{}, err
	}

	tx := models.Transaction{
		UserID:     userID,
		CardID:     in.CardID,
		MerchantID: merchantID,
		Amount:     in.Amount,
		Date:       in.Date,
	}
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	rewards.Accrue(&tx, cards, overrides, s.companyPoints)

	if err := s.store.RecordTransaction(ctx, &tx); err != nil {
		return models.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}
	metrics.TransactionsRecordedTotal.WithLabelValues(strconv.FormatBool(tx.IsOptimal)).Inc()

	if err := s.publisher.PublishTransactionRecorded(ctx, tx); err != nil {
		s.logger.Warn("transaction event not published", zap.Uint("transaction_id", tx.ID), zap.Error(err))
	}
	return tx, nil
}

// History lists the user's transactions in r, newest first, with merchant
// and card details resolved.
func (s *RewardsService) History(ctx context.Context, userID uint, r storage.DateRange) ([]TransactionView, error) {
	snap, err := s.load(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	table := rewards.NewRateTable(snap.overrides)
	merchants := make(map[uint]models.Merchant, len(snap.merchants))
	for _, m := range snap.merchants {
		merchants[m.ID] = m
	}
	cards := make(map[uint]models.Card, len(snap.cards))
	for _, c := range snap.cards {
		cards[c.ID] = c
	}

	views := make([]TransactionView, 0, len(snap.transactions))
	for _, t := range snap.transactions {
		v := TransactionView{
			Transaction:  t,
			MerchantName: "Unknown Merchant",
			CardType:     "Unknown Card",
			LastFour:     "0000",
		}
		if t.MerchantID != nil {
			if m, ok := merchants[*t.MerchantID]; ok {
				v.MerchantName = m.Name
			}
		}
		if t.CardID != nil {
			if c, ok := cards[*t.CardID]; ok {
				v.CardType = c.CardType
				v.LastFour = c.LastFour
				v.RewardRate = c.BaseRewardRate
				if t.MerchantID != nil {
					v.RewardRate = table.Rate(c, *t.MerchantID)
				}
			}
		}
		views = append(views, v)
	}
	return views, nil
}
