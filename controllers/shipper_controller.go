package controllers

import (
	"net/http"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
)

// ShipperController handles the delivery workflow.
type ShipperController struct {
	shipperService services.ShipperService
}

// NewShipperController creates a new ShipperController.
func NewShipperController(shipperService services.ShipperService) *ShipperController {
	return &ShipperController{shipperService: shipperService}
}

type deliveryStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=completed"`
}

// ListOrders handles GET /shipper/orders.
func (sc *ShipperController) ListOrders(ctx *gin.Context) {
	shipperID, ok := callerID(ctx)
	if !ok {
		return
	}
	statuses, ok := statusFilter(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	resp, svcErr := sc.shipperService.ListAssignedOrders(ctx.Request.Context(), shipperID, statuses, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateStatus handles PUT /shipper/orders/:orderId/status.
func (sc *ShipperController) UpdateStatus(ctx *gin.Context) {
	shipperID, ok := callerID(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "orderId")
	if !ok {
		return
	}
	var req deliveryStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, svcErr := sc.shipperService.UpdateDeliveryStatus(ctx.Request.Context(), shipperID, orderID, req.Status)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// History handles GET /shipper/history.
func (sc *ShipperController) History(ctx *gin.Context) {
	shipperID, ok := callerID(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	resp, svcErr := sc.shipperService.DeliveryHistory(ctx.Request.Context(), shipperID, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Earnings handles GET /shipper/earnings?startDate=&endDate=.
func (sc *ShipperController) Earnings(ctx *gin.Context) {
	shipperID, ok := callerID(ctx)
	if !ok {
		return
	}
	from, err := parseDate(ctx.Query("startDate"), false)
	if err != nil {
		respondBadParam(ctx, "startDate must be YYYY-MM-DD")
		return
	}
	to, err := parseDate(ctx.Query("endDate"), true)
	if err != nil {
		respondBadParam(ctx, "endDate must be YYYY-MM-DD")
		return
	}

	resp, svcErr := sc.shipperService.Earnings(ctx.Request.Context(), shipperID, from, to)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ToggleAvailability handles PATCH /shipper/availability.
func (sc *ShipperController) ToggleAvailability(ctx *gin.Context) {
	shipperID, ok := callerID(ctx)
	if !ok {
		return
	}
	user, svcErr := sc.shipperService.ToggleAvailability(ctx.Request.Context(), shipperID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"isAvailable": user.IsAvailable})
}
