package controllers

import (
	"net/http"

	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
)

// LoyaltyController handles loyalty points and point redemption.
type LoyaltyController struct {
	loyaltyService  services.LoyaltyService
	discountService services.DiscountService
}

// NewLoyaltyController creates a new LoyaltyController.
func NewLoyaltyController(loyaltyService services.LoyaltyService, discountService services.DiscountService) *LoyaltyController {
	return &LoyaltyController{loyaltyService: loyaltyService, discountService: discountService}
}

// GetPoints handles GET /loyalty/points.
func (lc *LoyaltyController) GetPoints(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	resp, svcErr := lc.loyaltyService.GetPoints(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListPromotions handles GET /loyalty/promotions.
func (lc *LoyaltyController) ListPromotions(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	promotions, svcErr := lc.loyaltyService.ListAvailablePromotions(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"promotions": promotions})
}

// ListCoupons handles GET /loyalty/coupons.
func (lc *LoyaltyController) ListCoupons(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	coupons, svcErr := lc.loyaltyService.ListUserCoupons(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// Redeem handles POST /loyalty/redeem/:discountId.
func (lc *LoyaltyController) Redeem(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	discountID, ok := uuidParam(ctx, "discountId")
	if !ok {
		return
	}
	resp, svcErr := lc.discountService.RedeemForPoints(ctx.Request.Context(), userID, discountID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
