package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	aws_pkg "github.com/CodeForFun2004/The-Chill-Cup-API/pkg/aws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const generatedCodeAttempts = 3

// DiscountService defines the interface for promotion codes and the
// per-user usage ledger.
type DiscountService interface {
	ApplyDiscount(ctx context.Context, userID, promotionCode string) (*models.CartResponse, *ServiceError)
	ReverseDiscount(ctx context.Context, userID, promotionCode string) (*models.CartResponse, *ServiceError)
	RedeemForPoints(ctx context.Context, userID string, discountID uuid.UUID) (*models.RedeemResponse, *ServiceError)
	ListUserDiscounts(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, *ServiceError)

	CreateDiscount(ctx context.Context, req *models.CreateDiscountRequest) (*models.Discount, *ServiceError)
	UpdateDiscount(ctx context.Context, id uuid.UUID, req *models.UpdateDiscountRequest) (*models.Discount, *ServiceError)
	DeleteDiscount(ctx context.Context, id uuid.UUID) *ServiceError
	ListDiscounts(ctx context.Context, page, limit int) ([]models.Discount, int64, *ServiceError)
	ToggleLock(ctx context.Context, id uuid.UUID) (*models.Discount, *ServiceError)
}

// discountServiceImpl implements DiscountService.
type discountServiceImpl struct {
	tx          repository.TxManager
	repos       repository.Repositories
	deliveryFee int64
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
	now         func() time.Time
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(
	tx repository.TxManager,
	repos repository.Repositories,
	deliveryFee int64,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) DiscountService {
	return &discountServiceImpl{
		tx:          tx,
		repos:       repos,
		deliveryFee: deliveryFee,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
		now:         time.Now,
	}
}

// ApplyDiscount validates the code against the cart and consumes it for the
// user. A failed attempt leaves cart and ledger untouched.
func (s *discountServiceImpl) ApplyDiscount(ctx context.Context, userID, promotionCode string) (*models.CartResponse, *ServiceError) {
	var (
		cart     *models.Cart
		discount *models.Discount
		amount   int64
	)
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		discount, err = repos.Discounts.FindByCode(ctx, promotionCode)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeDiscountNotFound, "Discount code not found")
			}
			return err
		}
		if svcErr := s.checkUsable(discount); svcErr != nil {
			return svcErr
		}

		entry, err := repos.UserDiscounts.Find(ctx, userID, discount.ID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		if entry != nil && entry.IsUsed {
			return conflictError(CodeDiscountUsed, "You have already used this discount code")
		}

		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeCartNotFound, "Cart not found")
			}
			return err
		}

		subtotal := ComputeCartTotals(cart.Items, s.deliveryFee, 0, "").Subtotal
		if subtotal < discount.MinOrder {
			return preconditionError(CodeMinimumOrderNotMet,
				fmt.Sprintf("Order must be at least %d to use this code", discount.MinOrder))
		}
		amount = PercentOf(subtotal, discount.DiscountPercent)

		marked, err := repos.UserDiscounts.MarkUsed(ctx, userID, discount.ID)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return conflictError(CodeDiscountUsed, "You have already used this discount code")
			}
			return err
		}
		if !marked {
			return conflictError(CodeDiscountUsed, "You have already used this discount code")
		}

		if previous := cart.PromoCode; previous != "" && !strings.EqualFold(previous, discount.PromotionCode) {
			if err := releaseDiscount(ctx, repos, userID, previous, s.logger); err != nil {
				return err
			}
		}

		totals := ComputeCartTotals(cart.Items, s.deliveryFee, amount, discount.PromotionCode)
		totals.applyTo(cart)
		return repos.Carts.SaveTotals(ctx, cart)
	})
	if err != nil {
		svcErr := asServiceError(err, "Failed to apply discount")
		if svcErr.StatusCode >= 500 {
			s.logger.Error("Failed to apply discount", zap.String("user_id", userID), zap.String("promo_code", promotionCode), zap.Error(err))
		}
		return nil, svcErr
	}

	s.logger.Info("Discount applied",
		zap.String("user_id", userID),
		zap.String("promo_code", discount.PromotionCode),
		zap.Int64("discount", amount),
	)
	s.publishDiscountApplied(ctx, userID, discount, amount, cart.Subtotal)

	resp := toCartResponse(cart)
	resp.DiscountAmount = &amount
	return resp, nil
}

// ReverseDiscount removes a code from the cart and returns it to the user.
// Only the code currently applied to the cart is released; a code spent at
// checkout stays used.
func (s *discountServiceImpl) ReverseDiscount(ctx context.Context, userID, promotionCode string) (*models.CartResponse, *ServiceError) {
	var cart *models.Cart
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				cart = nil
				return nil
			}
			return err
		}
		code := strings.TrimSpace(promotionCode)
		if cart.PromoCode == "" || !strings.EqualFold(cart.PromoCode, code) {
			return nil
		}

		if err := releaseDiscount(ctx, repos, userID, cart.PromoCode, s.logger); err != nil {
			return err
		}
		totals := ComputeCartTotals(cart.Items, s.deliveryFee, 0, "")
		totals.applyTo(cart)
		return repos.Carts.SaveTotals(ctx, cart)
	})
	if err != nil {
		s.logger.Error("Failed to reverse discount", zap.String("user_id", userID), zap.String("promo_code", promotionCode), zap.Error(err))
		return nil, asServiceError(err, "Failed to remove discount")
	}

	if cart == nil {
		return &models.CartResponse{Items: []models.CartItemResponse{}, DeliveryFee: s.deliveryFee, Total: s.deliveryFee}, nil
	}
	return toCartResponse(cart), nil
}

// RedeemForPoints trades loyalty points for an unused ledger entry.
func (s *discountServiceImpl) RedeemForPoints(ctx context.Context, userID string, discountID uuid.UUID) (*models.RedeemResponse, *ServiceError) {
	var (
		discount *models.Discount
		balance  *models.LoyaltyPoint
	)
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		discount, err = repos.Discounts.FindByID(ctx, discountID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeDiscountNotFound, "Discount not found")
			}
			return err
		}
		if discount.RequiredPoints <= 0 {
			return preconditionError(CodeNotRedeemable, "This discount cannot be redeemed with points")
		}
		if svcErr := s.checkUsable(discount); svcErr != nil {
			return svcErr
		}

		if _, err := repos.UserDiscounts.Find(ctx, userID, discount.ID); err == nil {
			return conflictError(CodeAlreadyRedeemed, "You already own this discount code")
		} else if !repository.IsNotFound(err) {
			return err
		}

		balance, err = repos.Loyalty.LockByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return preconditionError(CodeInsufficientPoints, "Not enough loyalty points")
			}
			return err
		}
		if balance.TotalPoints < discount.RequiredPoints {
			return preconditionError(CodeInsufficientPoints, "Not enough loyalty points")
		}

		entry := &models.LoyaltyHistory{
			Type:        models.LoyaltyRedeem,
			Description: "Redeemed for promotion code " + discount.PromotionCode,
		}
		if err := repos.Loyalty.Debit(ctx, balance, discount.RequiredPoints, entry); err != nil {
			return err
		}

		ledger := &models.UserDiscount{UserID: userID, DiscountID: discount.ID, IsUsed: false, IsSwap: true}
		if err := repos.UserDiscounts.Create(ctx, ledger); err != nil {
			if repository.IsUniqueViolation(err) {
				return conflictError(CodeAlreadyRedeemed, "You already own this discount code")
			}
			return err
		}
		return nil
	})
	if err != nil {
		svcErr := asServiceError(err, "Failed to redeem points")
		if svcErr.StatusCode >= 500 {
			s.logger.Error("Failed to redeem points", zap.String("user_id", userID), zap.String("discount_id", discountID.String()), zap.Error(err))
		}
		return nil, svcErr
	}

	s.logger.Info("Points redeemed",
		zap.String("user_id", userID),
		zap.String("promo_code", discount.PromotionCode),
		zap.Int64("points", discount.RequiredPoints),
	)
	return &models.RedeemResponse{
		Discount:        discount,
		PointsSpent:     discount.RequiredPoints,
		RemainingPoints: balance.TotalPoints,
	}, nil
}

func (s *discountServiceImpl) ListUserDiscounts(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, *ServiceError) {
	entries, err := s.repos.UserDiscounts.ListByUser(ctx, userID, isUsed)
	if err != nil {
		s.logger.Error("Failed to list user discounts", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to list discounts")
	}
	return entries, nil
}

// CreateDiscount creates a discount, generating a TCC-###### code when none is given.
func (s *discountServiceImpl) CreateDiscount(ctx context.Context, req *models.CreateDiscountRequest) (*models.Discount, *ServiceError) {
	if !req.ExpiryDate.After(s.now()) {
		return nil, validationError(CodeValidation, "Expiry date must be in the future")
	}
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		return nil, validationError(CodeValidation, "Discount percent must be between 0 and 100")
	}

	generated := strings.TrimSpace(req.PromotionCode) == ""
	attempts := 1
	if generated {
		attempts = generatedCodeAttempts
	}

	for i := 0; i < attempts; i++ {
		code := strings.ToUpper(strings.TrimSpace(req.PromotionCode))
		if generated {
			code = generatePromotionCode()
		}
		discount := &models.Discount{
			Title:           req.Title,
			Description:     req.Description,
			PromotionCode:   code,
			DiscountPercent: req.DiscountPercent,
			ExpiryDate:      req.ExpiryDate,
			MinOrder:        req.MinOrder,
			RequiredPoints:  req.RequiredPoints,
		}
		err := s.repos.Discounts.Create(ctx, discount)
		if err == nil {
			s.logger.Info("Discount created", zap.String("promo_code", code))
			return discount, nil
		}
		if !repository.IsUniqueViolation(err) {
			s.logger.Error("Failed to create discount", zap.Error(err))
			return nil, internalError("Failed to create discount")
		}
	}
	return nil, conflictError(CodeDuplicateCode, "Promotion code already exists")
}

// UpdateDiscount changes the discount definition. Carts that already applied
// the code keep the amount frozen at apply time.
func (s *discountServiceImpl) UpdateDiscount(ctx context.Context, id uuid.UUID, req *models.UpdateDiscountRequest) (*models.Discount, *ServiceError) {
	discount, svcErr := s.findDiscount(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Title != nil {
		discount.Title = *req.Title
	}
	if req.Description != nil {
		discount.Description = *req.Description
	}
	if req.DiscountPercent != nil {
		if *req.DiscountPercent <= 0 || *req.DiscountPercent > 100 {
			return nil, validationError(CodeValidation, "Discount percent must be between 0 and 100")
		}
		discount.DiscountPercent = *req.DiscountPercent
	}
	if req.ExpiryDate != nil {
		discount.ExpiryDate = *req.ExpiryDate
	}
	if req.MinOrder != nil {
		discount.MinOrder = *req.MinOrder
	}
	if req.RequiredPoints != nil {
		discount.RequiredPoints = *req.RequiredPoints
	}

	if err := s.repos.Discounts.Update(ctx, discount); err != nil {
		s.logger.Error("Failed to update discount", zap.String("discount_id", id.String()), zap.Error(err))
		return nil, internalError("Failed to update discount")
	}
	return discount, nil
}

func (s *discountServiceImpl) DeleteDiscount(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.repos.Discounts.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return notFoundError(CodeDiscountNotFound, "Discount not found")
		}
		s.logger.Error("Failed to delete discount", zap.String("discount_id", id.String()), zap.Error(err))
		return internalError("Failed to delete discount")
	}
	s.logger.Info("Discount deleted", zap.String("discount_id", id.String()))
	return nil
}

func (s *discountServiceImpl) ListDiscounts(ctx context.Context, page, limit int) ([]models.Discount, int64, *ServiceError) {
	discounts, total, err := s.repos.Discounts.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list discounts", zap.Error(err))
		return nil, 0, internalError("Failed to list discounts")
	}
	return discounts, total, nil
}

func (s *discountServiceImpl) ToggleLock(ctx context.Context, id uuid.UUID) (*models.Discount, *ServiceError) {
	discount, svcErr := s.findDiscount(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if err := s.repos.Discounts.SetLock(ctx, id, !discount.IsLock); err != nil {
		s.logger.Error("Failed to toggle discount lock", zap.String("discount_id", id.String()), zap.Error(err))
		return nil, internalError("Failed to update discount")
	}
	discount.IsLock = !discount.IsLock
	s.logger.Info("Discount lock toggled", zap.String("discount_id", id.String()), zap.Bool("locked", discount.IsLock))
	return discount, nil
}

func (s *discountServiceImpl) findDiscount(ctx context.Context, id uuid.UUID) (*models.Discount, *ServiceError) {
	discount, err := s.repos.Discounts.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError(CodeDiscountNotFound, "Discount not found")
		}
		s.logger.Error("Failed to load discount", zap.String("discount_id", id.String()), zap.Error(err))
		return nil, internalError("Failed to load discount")
	}
	return discount, nil
}

// checkUsable rejects locked and expired discounts.
func (s *discountServiceImpl) checkUsable(discount *models.Discount) *ServiceError {
	if discount.IsLock {
		return preconditionError(CodeDiscountLocked, "This discount code is locked")
	}
	if s.now().After(discount.ExpiryDate) {
		return preconditionError(CodeDiscountExpired, "This discount code has expired")
	}
	return nil
}

// publishDiscountApplied publishes a discount_applied event to SNS.
func (s *discountServiceImpl) publishDiscountApplied(ctx context.Context, userID string, discount *models.Discount, amount, subtotal int64) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		s.logger.Debug("SNS client not configured, skipping discount_applied event")
		return
	}

	event := models.DiscountAppliedEvent{
		EventType:      "discount_applied",
		UserID:         userID,
		DiscountID:     discount.ID.String(),
		PromotionCode:  discount.PromotionCode,
		DiscountAmount: amount,
		Subtotal:       subtotal,
		Timestamp:      s.now(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal discount_applied event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, eventBytes); err != nil {
		s.logger.Error("Failed to publish discount_applied event", zap.Error(err))
	}
}

// releaseDiscount sets the user's ledger entry for promotionCode back to
// unused. Unknown codes and entries that are already unused are no-ops.
func releaseDiscount(ctx context.Context, repos repository.Repositories, userID, promotionCode string, logger *zap.Logger) error {
	discount, err := repos.Discounts.FindByCode(ctx, promotionCode)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.Warn("Promo code no longer exists, nothing to release",
				zap.String("user_id", userID),
				zap.String("promo_code", promotionCode),
			)
			return nil
		}
		return err
	}
	released, err := repos.UserDiscounts.Release(ctx, userID, discount.ID)
	if err != nil {
		return err
	}
	if released {
		logger.Info("Discount released", zap.String("user_id", userID), zap.String("promo_code", discount.PromotionCode))
	}
	return nil
}

func generatePromotionCode() string {
	return fmt.Sprintf("TCC-%06d", rand.IntN(1000000))
}
