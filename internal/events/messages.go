package events

import (
	"encoding/json"
	"time"

	"rewards-optimizer-go/internal/models"
)

// TransactionRecordedMessage is published after a purchase is stored.
type TransactionRecordedMessage struct {
	TransactionID       uint      `json:"transaction_id"`
	UserID              uint      `json:"user_id"`
	CardID              *uint     `json:"card_id"`
	MerchantID          *uint     `json:"merchant_id"`
	Amount              float64   `json:"amount"`
	Date                time.Time `json:"date"`
	CardRewardPoints    float64   `json:"card_reward_points"`
	CompanyRewardPoints float64   `json:"company_reward_points"`
	IsOptimal           bool      `json:"is_optimal"`
	Timestamp           time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(t models.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		TransactionID:       t.ID,
		UserID:              t.UserID,
		CardID:              t.CardID,
		MerchantID:          t.MerchantID,
		Amount:              t.Amount,
		Date:                t.Date,
		CardRewardPoints:    t.CardPoints(),
		CompanyRewardPoints: t.CompanyPoints(),
		IsOptimal:           t.IsOptimal,
		Timestamp:           time.Now().UTC(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
