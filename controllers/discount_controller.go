package controllers

import (
	"net/http"
	"strconv"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
)

// DiscountController handles discount administration and the user ledger.
type DiscountController struct {
	discountService services.DiscountService
}

// NewDiscountController creates a new DiscountController.
func NewDiscountController(discountService services.DiscountService) *DiscountController {
	return &DiscountController{discountService: discountService}
}

// ListDiscounts handles GET /discounts.
func (dc *DiscountController) ListDiscounts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	discounts, total, svcErr := dc.discountService.ListDiscounts(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if discounts == nil {
		discounts = []models.Discount{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"discounts": discounts,
		"meta":      services.NewMetaData(page, limit, total),
	})
}

// CreateDiscount handles POST /discounts (admin only).
func (dc *DiscountController) CreateDiscount(ctx *gin.Context) {
	var req models.CreateDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	discount, svcErr := dc.discountService.CreateDiscount(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"discount": discount})
}

// UpdateDiscount handles PUT /discounts/:id (admin only).
func (dc *DiscountController) UpdateDiscount(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req models.UpdateDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	discount, svcErr := dc.discountService.UpdateDiscount(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"discount": discount})
}

// DeleteDiscount handles DELETE /discounts/:id (admin only).
func (dc *DiscountController) DeleteDiscount(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	if svcErr := dc.discountService.DeleteDiscount(ctx.Request.Context(), id); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Discount deleted"})
}

// ToggleLock handles PATCH /discounts/:id/lock (admin only).
func (dc *DiscountController) ToggleLock(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	discount, svcErr := dc.discountService.ToggleLock(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"discount": discount})
}

// ListUserDiscounts handles GET /user-discounts?isUsed=true|false.
func (dc *DiscountController) ListUserDiscounts(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var isUsed *bool
	if raw := ctx.Query("isUsed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadParam(ctx, "isUsed must be true or false")
			return
		}
		isUsed = &v
	}

	entries, svcErr := dc.discountService.ListUserDiscounts(ctx.Request.Context(), userID, isUsed)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if entries == nil {
		entries = []models.UserDiscount{}
	}
	ctx.JSON(http.StatusOK, gin.H{"userDiscounts": entries})
}
