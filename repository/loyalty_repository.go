package repository

import (
	"context"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository defines the interface for loyalty balance access.
type LoyaltyRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.LoyaltyPoint, error)
	// LockByUserID loads the balance row with a row lock for the rest of the transaction.
	LockByUserID(ctx context.Context, userID string) (*models.LoyaltyPoint, error)
	// Credit adds points to the user's balance, creating it when absent, and
	// appends entry to the history.
	Credit(ctx context.Context, userID string, points int64, entry *models.LoyaltyHistory) error
	// Debit subtracts points from a locked balance and appends entry.
	Debit(ctx context.Context, balance *models.LoyaltyPoint, points int64, entry *models.LoyaltyHistory) error
}

// GormLoyaltyRepository implements LoyaltyRepository using GORM.
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyRepository creates a new GormLoyaltyRepository.
func NewGormLoyaltyRepository(db *gorm.DB) LoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// FindByUserID loads the balance with its history, most recent first.
func (r *GormLoyaltyRepository) FindByUserID(ctx context.Context, userID string) (*models.LoyaltyPoint, error) {
	var lp models.LoyaltyPoint
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("user_id = ?", userID).
		First(&lp).Error
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

func (r *GormLoyaltyRepository) LockByUserID(ctx context.Context, userID string) (*models.LoyaltyPoint, error) {
	var lp models.LoyaltyPoint
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&lp).Error
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

func (r *GormLoyaltyRepository) Credit(ctx context.Context, userID string, points int64, entry *models.LoyaltyHistory) error {
	db := r.db.WithContext(ctx)
	lp := models.LoyaltyPoint{UserID: userID, TotalPoints: points}
	err := db.Omit("History").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_points": gorm.Expr("loyalty_points.total_points + ?", points),
				"updated_at":   time.Now(),
			}),
		}).
		Create(&lp).Error
	if err != nil {
		return err
	}

	entry.LoyaltyPointID = lp.ID
	entry.UserID = userID
	entry.Points = points
	return db.Create(entry).Error
}

func (r *GormLoyaltyRepository) Debit(ctx context.Context, balance *models.LoyaltyPoint, points int64, entry *models.LoyaltyHistory) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(balance).
		UpdateColumn("total_points", gorm.Expr("total_points - ?", points)).Error; err != nil {
		return err
	}
	balance.TotalPoints -= points

	entry.LoyaltyPointID = balance.ID
	entry.UserID = balance.UserID
	entry.Points = -points
	return db.Create(entry).Error
}
