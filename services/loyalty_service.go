package services

import (
	"context"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoyaltyService defines the read side of loyalty points and coupons.
type LoyaltyService interface {
	GetPoints(ctx context.Context, userID string) (*models.LoyaltyResponse, *ServiceError)
	// ListAvailablePromotions lists live discounts the user has not used yet.
	ListAvailablePromotions(ctx context.Context, userID string) ([]models.Discount, *ServiceError)
	// ListUserCoupons lists the user's ledger entries for unexpired discounts.
	ListUserCoupons(ctx context.Context, userID string) ([]models.UserCouponResponse, *ServiceError)
}

// loyaltyServiceImpl implements LoyaltyService.
type loyaltyServiceImpl struct {
	repos  repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewLoyaltyService creates a new LoyaltyService.
func NewLoyaltyService(repos repository.Repositories, logger *zap.Logger) LoyaltyService {
	return &loyaltyServiceImpl{repos: repos, logger: logger, now: time.Now}
}

// GetPoints returns the balance and history. Users who never earned points
// get a zero balance and no record is created.
func (s *loyaltyServiceImpl) GetPoints(ctx context.Context, userID string) (*models.LoyaltyResponse, *ServiceError) {
	lp, err := s.repos.Loyalty.FindByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return &models.LoyaltyResponse{Points: 0, History: []models.LoyaltyHistory{}}, nil
		}
		s.logger.Error("Failed to load loyalty points", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to load loyalty points")
	}
	history := lp.History
	if history == nil {
		history = []models.LoyaltyHistory{}
	}
	return &models.LoyaltyResponse{Points: lp.TotalPoints, History: history}, nil
}

func (s *loyaltyServiceImpl) ListAvailablePromotions(ctx context.Context, userID string) ([]models.Discount, *ServiceError) {
	discounts, err := s.repos.Discounts.FindAvailable(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to list promotions", zap.Error(err))
		return nil, internalError("Failed to list promotions")
	}
	used, err := s.repos.UserDiscounts.UsedDiscountIDs(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list used discounts", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to list promotions")
	}

	usedSet := make(map[uuid.UUID]struct{}, len(used))
	for _, id := range used {
		usedSet[id] = struct{}{}
	}
	available := make([]models.Discount, 0, len(discounts))
	for _, d := range discounts {
		if _, ok := usedSet[d.ID]; !ok {
			available = append(available, d)
		}
	}
	return available, nil
}

func (s *loyaltyServiceImpl) ListUserCoupons(ctx context.Context, userID string) ([]models.UserCouponResponse, *ServiceError) {
	entries, err := s.repos.UserDiscounts.ListByUser(ctx, userID, nil)
	if err != nil {
		s.logger.Error("Failed to list coupons", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to list coupons")
	}

	now := s.now()
	coupons := make([]models.UserCouponResponse, 0, len(entries))
	for _, e := range entries {
		if e.Discount == nil || now.After(e.Discount.ExpiryDate) {
			continue
		}
		coupons = append(coupons, models.UserCouponResponse{
			ID:       e.ID,
			Discount: e.Discount,
			IsUsed:   e.IsUsed,
			IsSwap:   e.IsSwap,
		})
	}
	return coupons, nil
}
