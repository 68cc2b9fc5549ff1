package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rewards-optimizer-go/internal/models"
)

// GormStore is the relational Store. The *gorm.DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func gormErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		err = ErrConflict
	}
	return &Error{Op: op, Backend: "postgres", Err: err}
}

func (s *GormStore) GetCardsForUser(ctx context.Context, userID uint) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&cards).Error; err != nil {
		return nil, gormErr("get_cards_for_user", err)
	}
	return cards, nil
}

func (s *GormStore) GetCard(ctx context.Context, id uint) (models.Card, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return models.Card{}, gormErr("get_card", err)
	}
	return card, nil
}

func (s *GormStore) CreateCard(ctx context.Context, card *models.Card) error {
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		return gormErr("create_card", err)
	}
	return nil
}

func (s *GormStore) ListMerchants(ctx context.Context) ([]models.Merchant, error) {
	var merchants []models.Merchant
	if err := s.db.WithContext(ctx).Order("id").Find(&merchants).Error; err != nil {
		return nil, gormErr("list_merchants", err)
	}
	return merchants, nil
}

func (s *GormStore) GetMerchant(ctx context.Context, id uint) (models.Merchant, error) {
	var merchant models.Merchant
	if err := s.db.WithContext(ctx).First(&merchant, id).Error; err != nil {
		return models.Merchant{}, gormErr("get_merchant", err)
	}
	return merchant, nil
}

func (s *GormStore) GetMerchantByName(ctx context.Context, name string) (models.Merchant, error) {
	var merchant models.Merchant
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Order("id").
		First(&merchant).Error
	if err != nil {
		return models.Merchant{}, gormErr("get_merchant_by_name", err)
	}
	return merchant, nil
}

func (s *GormStore) CreateMerchant(ctx context.Context, merchant *models.Merchant) error {
	if err := s.db.WithContext(ctx).Create(merchant).Error; err != nil {
		return gormErr("create_merchant", err)
	}
	return nil
}

func (s *GormStore) GetOverrides(ctx context.Context, filter OverrideFilter) ([]models.RewardOverride, error) {
	query := s.db.WithContext(ctx).Order("id")
	if len(filter.CardIDs) > 0 {
		query = query.Where("card_id IN ?", filter.CardIDs)
	}
	if filter.MerchantID != nil {
		query = query.Where("merchant_id = ?", *filter.MerchantID)
	}

	var overrides []models.RewardOverride
	if err := query.Find(&overrides).Error; err != nil {
		return nil, gormErr("get_overrides", err)
	}
	return overrides, nil
}

func (s *GormStore) CreateOverride(ctx context.Context, override *models.RewardOverride) error {
	if err := s.db.WithContext(ctx).Create(override).Error; err != nil {
		return gormErr("create_override", err)
	}
	return nil
}

func (s *GormStore) GetTransactionsForUser(ctx context.Context, userID uint, r DateRange) ([]models.Transaction, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, id desc")
	if !r.From.IsZero() {
		query = query.Where("date >= ?", r.From)
	}
	if !r.To.IsZero() {
		query = query.Where("date < ?", r.To)
	}

	var txs []models.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, gormErr("get_transactions_for_user", err)
	}
	return txs, nil
}

func (s *GormStore) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return gormErr("record_transaction", err)
	}
	return nil
}

func (s *GormStore) ListFavorites(ctx context.Context, userID uint) ([]models.FavoriteMerchant, error) {
	var favorites []models.FavoriteMerchant
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&favorites).Error; err != nil {
		return nil, gormErr("list_favorites", err)
	}
	return favorites, nil
}

func (s *GormStore) ToggleFavorite(ctx context.Context, userID, merchantID uint) (*models.FavoriteMerchant, error) {
	var result *models.FavoriteMerchant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FavoriteMerchant
		err := tx.Where("user_id = ? AND merchant_id = ?", userID, merchantID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			fav := models.FavoriteMerchant{UserID: userID, MerchantID: merchantID}
			if err := tx.Create(&fav).Error; err != nil {
				return err
			}
			result = &fav
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, gormErr("toggle_favorite", err)
	}
	return result, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return gormErr("create_user", err)
	}
	return nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, gormErr("get_user", err)
	}
	return user, nil
}

func (s *GormStore) GetUserByUUID(ctx context.Context, uuid string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return models.User{}, gormErr("get_user_by_uuid", err)
	}
	return user, nil
}

func (s *GormStore) GetUserByLogin(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", identifier, identifier).
		First(&user).Error
	if err != nil {
		return models.User{}, gormErr("get_user_by_login", err)
	}
	return user, nil
}
