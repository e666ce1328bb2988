package controllers

import (
	"net/http"
	"strings"

	"github.com/CodeForFun2004/The-Chill-Cup-API/middleware"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

// OrderController handles checkout and order management.
type OrderController struct {
	orderService services.OrderService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /orders. A repeated Idempotency-Key returns the
// original order with 200 instead of 201.
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	key := strings.TrimSpace(ctx.GetHeader(idempotencyHeader))
	resp, replayed, svcErr := oc.orderService.CreateOrder(ctx.Request.Context(), userID, &req, key)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	if replayed {
		ctx.JSON(http.StatusOK, resp)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetOrder handles GET /orders/:orderId.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "orderId")
	if !ok {
		return
	}
	actor := services.Actor{ID: userID, Role: middleware.GetRole(ctx)}
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), actor, orderID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// ListUserOrders handles GET /orders/user.
func (oc *OrderController) ListUserOrders(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	statuses, ok := statusFilter(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	resp, svcErr := oc.orderService.ListUserOrders(ctx.Request.Context(), userID, statuses, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListAdminOrders handles GET /orders/admin with status, startDate, endDate
// and userId filters.
func (oc *OrderController) ListAdminOrders(ctx *gin.Context) {
	statuses, ok := statusFilter(ctx)
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
	page, limit := parsePaginationParams(ctx)

	filter := models.OrderFilter{
		UserID:   strings.TrimSpace(ctx.Query("userId")),
		Statuses: statuses,
		From:     from,
		To:       to,
	}
	resp, svcErr := oc.orderService.ListOrders(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateAdminOrder handles PUT /orders/admin/:orderId.
func (oc *OrderController) UpdateAdminOrder(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "orderId")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, svcErr := oc.orderService.UpdateStatusByAdmin(ctx.Request.Context(), userID, orderID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// ListStaffOrders handles GET /orders/staff.
func (oc *OrderController) ListStaffOrders(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	statuses, ok := statusFilter(ctx)
	if !ok {
		return
	}
	page, limit := parsePaginationParams(ctx)

	resp, svcErr := oc.orderService.ListStaffOrders(ctx.Request.Context(), userID, statuses, page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateStaffOrder handles PUT /orders/staff/:orderId.
func (oc *OrderController) UpdateStaffOrder(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}
	orderID, ok := uuidParam(ctx, "orderId")
	if !ok {
		return
	}
	var req models.StaffUpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, svcErr := oc.orderService.UpdateStatusByStaff(ctx.Request.Context(), userID, orderID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}
