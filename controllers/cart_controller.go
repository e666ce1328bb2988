package controllers

import (
	"net/http"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
)

// CartController handles HTTP requests for the caller's cart.
type CartController struct {
	cartService     services.CartService
	discountService services.DiscountService
}

// NewCartController creates a new CartController.
func NewCartController(cartService services.CartService, discountService services.DiscountService) *CartController {
	return &CartController{cartService: cartService, discountService: discountService}
}

// AddItem handles POST /cart.
func (cc *CartController) AddItem(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	cart, svcErr := cc.cartService.AddItem(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, cart)
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.GetCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// UpdateItem handles PUT /cart/item/:itemId.
func (cc *CartController) UpdateItem(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	itemID, ok := uuidParam(ctx, "itemId")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	cart, svcErr := cc.cartService.UpdateItemQuantity(ctx.Request.Context(), userID, itemID, *req.Quantity)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/item/:itemId.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	itemID, ok := uuidParam(ctx, "itemId")
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.RemoveItem(ctx.Request.Context(), userID, itemID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.ClearCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// ApplyDiscount handles POST /cart/apply-discount.
func (cc *CartController) ApplyDiscount(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	var req models.ApplyDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	cart, svcErr := cc.discountService.ApplyDiscount(ctx.Request.Context(), userID, req.PromotionCode)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// RemoveDiscount handles DELETE /cart/apply-discount.
func (cc *CartController) RemoveDiscount(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	var req models.ApplyDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	cart, svcErr := cc.discountService.ReverseDiscount(ctx.Request.Context(), userID, req.PromotionCode)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}
