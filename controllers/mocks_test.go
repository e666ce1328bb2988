package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/controllers"
	"github.com/CodeForFun2004/The-Chill-Cup-API/middleware"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := controllers.RegisterValidators(); err != nil {
		panic(err)
	}
}

// --- Mock CartService ---

type mockCartService struct {
	addFn    func(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartResponse, *services.ServiceError)
	getFn    func(ctx context.Context, userID string) (*models.CartResponse, *services.ServiceError)
	updateFn func(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.CartResponse, *services.ServiceError)
	removeFn func(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartResponse, *services.ServiceError)
	clearFn  func(ctx context.Context, userID string) (*models.CartResponse, *services.ServiceError)
}

func (m *mockCartService) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartResponse, *services.ServiceError) {
	return m.addFn(ctx, userID, req)
}
func (m *mockCartService) GetCart(ctx context.Context, userID string) (*models.CartResponse, *services.ServiceError) {
	return m.getFn(ctx, userID)
}
func (m *mockCartService) UpdateItemQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.CartResponse, *services.ServiceError) {
	return m.updateFn(ctx, userID, itemID, quantity)
}
func (m *mockCartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartResponse, *services.ServiceError) {
	return m.removeFn(ctx, userID, itemID)
}
func (m *mockCartService) ClearCart(ctx context.Context, userID string) (*models.CartResponse, *services.ServiceError) {
	return m.clearFn(ctx, userID)
}

// --- Mock DiscountService ---

type mockDiscountService struct {
	applyFn      func(ctx context.Context, userID, code string) (*models.CartResponse, *services.ServiceError)
	reverseFn    func(ctx context.Context, userID, code string) (*models.CartResponse, *services.ServiceError)
	redeemFn     func(ctx context.Context, userID string, discountID uuid.UUID) (*models.RedeemResponse, *services.ServiceError)
	listUserFn   func(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, *services.ServiceError)
	createFn     func(ctx context.Context, req *models.CreateDiscountRequest) (*models.Discount, *services.ServiceError)
	updateFn     func(ctx context.Context, id uuid.UUID, req *models.UpdateDiscountRequest) (*models.Discount, *services.ServiceError)
	deleteFn     func(ctx context.Context, id uuid.UUID) *services.ServiceError
	listFn       func(ctx context.Context, page, limit int) ([]models.Discount, int64, *services.ServiceError)
	toggleLockFn func(ctx context.Context, id uuid.UUID) (*models.Discount, *services.ServiceError)
}

func (m *mockDiscountService) ApplyDiscount(ctx context.Context, userID, code string) (*models.CartResponse, *services.ServiceError) {
	return m.applyFn(ctx, userID, code)
}
func (m *mockDiscountService) ReverseDiscount(ctx context.Context, userID, code string) (*models.CartResponse, *services.ServiceError) {
	return m.reverseFn(ctx, userID, code)
}
func (m *mockDiscountService) RedeemForPoints(ctx context.Context, userID string, discountID uuid.UUID) (*models.RedeemResponse, *services.ServiceError) {
	return m.redeemFn(ctx, userID, discountID)
}
func (m *mockDiscountService) ListUserDiscounts(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, *services.ServiceError) {
	return m.listUserFn(ctx, userID, isUsed)
}
func (m *mockDiscountService) CreateDiscount(ctx context.Context, req *models.CreateDiscountRequest) (*models.Discount, *services.ServiceError) {
	return m.createFn(ctx, req)
}
func (m *mockDiscountService) UpdateDiscount(ctx context.Context, id uuid.UUID, req *models.UpdateDiscountRequest) (*models.Discount, *services.ServiceError) {
	return m.updateFn(ctx, id, req)
}
func (m *mockDiscountService) DeleteDiscount(ctx context.Context, id uuid.UUID) *services.ServiceError {
	return m.deleteFn(ctx, id)
}
func (m *mockDiscountService) ListDiscounts(ctx context.Context, page, limit int) ([]models.Discount, int64, *services.ServiceError) {
	return m.listFn(ctx, page, limit)
}
func (m *mockDiscountService) ToggleLock(ctx context.Context, id uuid.UUID) (*models.Discount, *services.ServiceError) {
	return m.toggleLockFn(ctx, id)
}

// --- Mock OrderService ---

type mockOrderService struct {
	createFn      func(ctx context.Context, userID string, req *models.CreateOrderRequest, key string) (*models.CreateOrderResponse, bool, *services.ServiceError)
	getFn         func(ctx context.Context, actor services.Actor, orderID uuid.UUID) (*models.Order, *services.ServiceError)
	listUserFn    func(ctx context.Context, userID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError)
	listFn        func(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *services.ServiceError)
	listStaffFn   func(ctx context.Context, staffID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError)
	adminUpdateFn func(ctx context.Context, adminID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, *services.ServiceError)
	staffUpdateFn func(ctx context.Context, staffID string, orderID uuid.UUID, req *models.StaffUpdateOrderRequest) (*models.Order, *services.ServiceError)
	deliveryFn    func(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError)
	confirmFn     func(ctx context.Context, orderNumber string, amount int64, reference string) *services.ServiceError
}

func (m *mockOrderService) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest, key string) (*models.CreateOrderResponse, bool, *services.ServiceError) {
	return m.createFn(ctx, userID, req, key)
}
func (m *mockOrderService) GetOrder(ctx context.Context, actor services.Actor, orderID uuid.UUID) (*models.Order, *services.ServiceError) {
	return m.getFn(ctx, actor, orderID)
}
func (m *mockOrderService) ListUserOrders(ctx context.Context, userID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError) {
	return m.listUserFn(ctx, userID, statuses, page, limit)
}
func (m *mockOrderService) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *services.ServiceError) {
	return m.listFn(ctx, filter, page, limit)
}
func (m *mockOrderService) ListStaffOrders(ctx context.Context, staffID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError) {
	return m.listStaffFn(ctx, staffID, statuses, page, limit)
}
func (m *mockOrderService) UpdateStatusByAdmin(ctx context.Context, adminID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, *services.ServiceError) {
	return m.adminUpdateFn(ctx, adminID, orderID, req)
}
func (m *mockOrderService) UpdateStatusByStaff(ctx context.Context, staffID string, orderID uuid.UUID, req *models.StaffUpdateOrderRequest) (*models.Order, *services.ServiceError) {
	return m.staffUpdateFn(ctx, staffID, orderID, req)
}
func (m *mockOrderService) UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError) {
	return m.deliveryFn(ctx, shipperID, orderID, status)
}
func (m *mockOrderService) ConfirmPayment(ctx context.Context, orderNumber string, amount int64, reference string) *services.ServiceError {
	return m.confirmFn(ctx, orderNumber, amount, reference)
}

// --- Mock LoyaltyService ---

type mockLoyaltyService struct {
	pointsFn     func(ctx context.Context, userID string) (*models.LoyaltyResponse, *services.ServiceError)
	promotionsFn func(ctx context.Context, userID string) ([]models.Discount, *services.ServiceError)
	couponsFn    func(ctx context.Context, userID string) ([]models.UserCouponResponse, *services.ServiceError)
}

func (m *mockLoyaltyService) GetPoints(ctx context.Context, userID string) (*models.LoyaltyResponse, *services.ServiceError) {
	return m.pointsFn(ctx, userID)
}
func (m *mockLoyaltyService) ListAvailablePromotions(ctx context.Context, userID string) ([]models.Discount, *services.ServiceError) {
	return m.promotionsFn(ctx, userID)
}
func (m *mockLoyaltyService) ListUserCoupons(ctx context.Context, userID string) ([]models.UserCouponResponse, *services.ServiceError) {
	return m.couponsFn(ctx, userID)
}

// --- Mock ShipperService ---

type mockShipperService struct {
	listFn     func(ctx context.Context, shipperID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError)
	updateFn   func(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError)
	historyFn  func(ctx context.Context, shipperID string, page, limit int) (*models.OrderListResponse, *services.ServiceError)
	earningsFn func(ctx context.Context, shipperID string, from, to *time.Time) (*models.ShipperEarnings, *services.ServiceError)
	toggleFn   func(ctx context.Context, shipperID string) (*models.User, *services.ServiceError)
}

func (m *mockShipperService) ListAssignedOrders(ctx context.Context, shipperID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *services.ServiceError) {
	return m.listFn(ctx, shipperID, statuses, page, limit)
}
func (m *mockShipperService) UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError) {
	return m.updateFn(ctx, shipperID, orderID, status)
}
func (m *mockShipperService) DeliveryHistory(ctx context.Context, shipperID string, page, limit int) (*models.OrderListResponse, *services.ServiceError) {
	return m.historyFn(ctx, shipperID, page, limit)
}
func (m *mockShipperService) Earnings(ctx context.Context, shipperID string, from, to *time.Time) (*models.ShipperEarnings, *services.ServiceError) {
	return m.earningsFn(ctx, shipperID, from, to)
}
func (m *mockShipperService) ToggleAvailability(ctx context.Context, shipperID string) (*models.User, *services.ServiceError) {
	return m.toggleFn(ctx, shipperID)
}

// --- Helpers ---

// withCaller sets the identity AuthMiddleware would set.
func withCaller(r *gin.Engine, userID string, role models.Role) *gin.Engine {
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, userID)
		c.Set(middleware.RoleContextKey, role)
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	switch p := payload.(type) {
	case nil:
		body = &bytes.Buffer{}
	case string:
		body = bytes.NewBufferString(p)
	default:
		b, _ := json.Marshal(p)
		body = bytes.NewBuffer(b)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func svcError(status int, code string) *services.ServiceError {
	return &services.ServiceError{StatusCode: status, Code: code, Message: code}
}

func stringsReader(s string) *bytes.Reader { return bytes.NewReader([]byte(s)) }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
