package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	aws_pkg "github.com/CodeForFun2004/The-Chill-Cup-API/pkg/aws"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	orderNumberPrefix   = "#ORD-"
	orderNumberLength   = 7
	orderNumberAttempts = 3
	orderNumberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	defaultIdempotency  = 24 * time.Hour
)

// systemRole marks transitions made by payment processing.
const systemRole models.Role = "system"

var errOrderNumberTaken = errors.New("order number already taken")

// Actor is the authenticated caller of an order operation.
type Actor struct {
	ID   string
	Role models.Role
}

// OrderService defines the interface for checkout and the order lifecycle.
type OrderService interface {
	// CreateOrder converts the user's cart into an order. The boolean is true
	// when the response was replayed for a repeated idempotency key.
	CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest, idempotencyKey string) (*models.CreateOrderResponse, bool, *ServiceError)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, *ServiceError)
	ListUserOrders(ctx context.Context, userID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError)
	ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *ServiceError)
	ListStaffOrders(ctx context.Context, staffID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError)
	UpdateStatusByAdmin(ctx context.Context, adminID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, *ServiceError)
	UpdateStatusByStaff(ctx context.Context, staffID string, orderID uuid.UUID, req *models.StaffUpdateOrderRequest) (*models.Order, *ServiceError)
	UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError)
	ConfirmPayment(ctx context.Context, orderNumber string, amount int64, reference string) *ServiceError
}

// OrderServiceOptions carries the optional collaborators of OrderService.
// Nil collaborators disable the matching integration.
type OrderServiceOptions struct {
	Producer       OrderEventProducer
	SNSClient      aws_pkg.SNSPublisher
	SNSTopicArn    string
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	Cards          CardPaymentGateway
	Metrics        MetricsRecorder
	VietQR         VietQRConfig
	// OrderNumbers overrides the random order number source.
	OrderNumbers func() string
}

// orderServiceImpl implements OrderService.
type orderServiceImpl struct {
	tx     repository.TxManager
	repos  repository.Repositories
	opts   OrderServiceOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(tx repository.TxManager, repos repository.Repositories, opts OrderServiceOptions, logger *zap.Logger) OrderService {
	if opts.OrderNumbers == nil {
		opts.OrderNumbers = GenerateOrderNumber
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = defaultIdempotency
	}
	return &orderServiceImpl{
		tx:     tx,
		repos:  repos,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateOrderNumber returns "#ORD-" followed by 7 random base-36 characters.
func GenerateOrderNumber() string {
	var b strings.Builder
	b.WriteString(orderNumberPrefix)
	for i := 0; i < orderNumberLength; i++ {
		b.WriteByte(orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))])
	}
	return b.String()
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest, idempotencyKey string) (*models.CreateOrderResponse, bool, *ServiceError) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, false, validationError(CodeValidation, "Invalid store id")
	}

	idemKey := ""
	if idempotencyKey != "" && s.opts.Idempotency != nil {
		idemKey = userID + ":" + idempotencyKey
		if resp := s.replay(ctx, idemKey); resp != nil {
			return resp, true, nil
		}
	}

	var (
		order  *models.Order
		earned int64
	)
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order, earned, err = s.checkout(ctx, userID, storeID, req)
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		s.logger.Warn("Order number collision, retrying", zap.String("user_id", userID), zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, errOrderNumberTaken) {
			s.logger.Error("Could not allocate a unique order number", zap.String("user_id", userID))
			return nil, false, internalError("Failed to create order")
		}
		svcErr := asServiceError(err, "Failed to create order")
		if svcErr.StatusCode >= 500 {
			s.logger.Error("Checkout failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false, svcErr
	}

	s.logger.Info("Order created",
		zap.String("user_id", userID),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
		zap.Int64("earned_points", earned),
	)

	if idemKey != "" {
		if err := s.opts.Idempotency.Set(ctx, idemKey, order.ID.String(), s.opts.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	s.publishOrderCreated(ctx, order, earned)
	s.recordCount(ctx, aws_pkg.MetricOrdersCreated, map[string]string{"PaymentMethod": order.PaymentMethod})

	return s.paymentResponse(ctx, order), false, nil
}

// checkout runs the whole cart-to-order conversion in one transaction.
func (s *orderServiceImpl) checkout(ctx context.Context, userID string, storeID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, int64, error) {
	var (
		order  *models.Order
		earned int64
	)
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		store, err := repos.Stores.FindByID(ctx, storeID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		if store == nil || !store.IsActive {
			return preconditionError(CodeStoreInactive, "Store is not available")
		}

		cart, err := repos.Carts.FindByUserID(ctx, userID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return preconditionError(CodeEmptyCart, "Cart is empty")
		}

		var discount *models.Discount
		if cart.PromoCode != "" {
			discount, err = repos.Discounts.FindByCode(ctx, cart.PromoCode)
			if err != nil {
				if repository.IsNotFound(err) {
					return notFoundError(CodeDiscountNotFound, "Applied discount code no longer exists")
				}
				return err
			}
		}

		totals := ComputeCartTotals(cart.Items, cart.DeliveryFee, cart.Discount, cart.PromoCode)
		if totals.DiscountReset && discount != nil {
			if _, err := repos.UserDiscounts.Release(ctx, userID, discount.ID); err != nil {
				return err
			}
			discount = nil
		}
		subtotalWithoutDelivery := totals.Total - totals.DeliveryFee
		tax := Tax(subtotalWithoutDelivery)

		order = &models.Order{
			UserID:           userID,
			StoreID:          store.ID,
			OrderNumber:      s.opts.OrderNumbers(),
			Items:            snapshotItems(cart.Items),
			Subtotal:         subtotalWithoutDelivery,
			Discount:         totals.Discount,
			Tax:              tax,
			DeliveryFee:      totals.DeliveryFee,
			Total:            subtotalWithoutDelivery + tax,
			DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
			Phone:            strings.TrimSpace(req.Phone),
			PaymentMethod:    strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
			PaymentStatus:    models.PaymentStatusUnpaid,
			DeliveryTime:     models.DefaultDeliveryTime,
			Status:           models.OrderStatusPending,
			AppliedPromoCode: totals.PromoCode,
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			if repository.IsUniqueViolation(err) {
				return errOrderNumberTaken
			}
			return err
		}

		if err := repos.Carts.Delete(ctx, cart); err != nil {
			return err
		}
		if discount != nil {
			if err := repos.UserDiscounts.Settle(ctx, userID, discount.ID); err != nil {
				return err
			}
		}

		earned = s.creditLoyalty(ctx, repos, order)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return order, earned, nil
}

// creditLoyalty awards points inside a savepoint. A failure rolls back the
// savepoint only and the checkout still commits.
func (s *orderServiceImpl) creditLoyalty(ctx context.Context, repos repository.Repositories, order *models.Order) int64 {
	points := EarnedPoints(order.Total)
	if points == 0 {
		return 0
	}
	err := repos.Nested.WithTransaction(ctx, func(inner repository.Repositories) error {
		orderID := order.ID
		return inner.Loyalty.Credit(ctx, order.UserID, points, &models.LoyaltyHistory{
			OrderID:     &orderID,
			Type:        models.LoyaltyEarn,
			Description: "Earned from order " + order.OrderNumber,
		})
	})
	if err != nil {
		s.logger.Error("Failed to credit loyalty points",
			zap.String("user_id", order.UserID),
			zap.String("order_id", order.ID.String()),
			zap.Int64("points", points),
			zap.Error(err),
		)
		return 0
	}
	return points
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		toppings := make([]models.OrderItemTopping, 0, len(item.Toppings))
		for _, t := range item.Toppings {
			toppings = append(toppings, models.OrderItemTopping{ToppingID: t.ID, Name: t.Name, Price: t.Price})
		}
		out = append(out, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Size:      item.Size,
			Toppings:  toppings,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}

// replay returns the stored response for a repeated idempotency key, or nil.
func (s *orderServiceImpl) replay(ctx context.Context, key string) *models.CreateOrderResponse {
	stored, ok, err := s.opts.Idempotency.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed, processing request", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	orderID, err := uuid.Parse(stored)
	if err != nil {
		return nil
	}
	order, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("Idempotent order not found, processing request", zap.String("order_id", stored), zap.Error(err))
		return nil
	}

	resp := &models.CreateOrderResponse{Order: order, Message: "Order already created"}
	if order.PaymentMethod == models.PaymentMethodVietQR && s.opts.VietQR.Enabled() {
		resp.QRCodeURL = BuildVietQRURL(s.opts.VietQR, order.Total, order.OrderNumber)
	}
	return resp
}

// paymentResponse shapes the checkout response by payment method. Unknown
// methods are accepted with a generic confirmation.
func (s *orderServiceImpl) paymentResponse(ctx context.Context, order *models.Order) *models.CreateOrderResponse {
	resp := &models.CreateOrderResponse{Order: order, Message: "Order placed successfully"}

	switch order.PaymentMethod {
	case models.PaymentMethodCOD:
		resp.Message = "Order placed successfully. Please pay on delivery"
	case models.PaymentMethodVietQR:
		if !s.opts.VietQR.Enabled() {
			s.logger.Warn("VietQR bank routing not configured", zap.String("order_id", order.ID.String()))
			break
		}
		resp.QRCodeURL = BuildVietQRURL(s.opts.VietQR, order.Total, order.OrderNumber)
		resp.Message = "Scan the QR code to complete payment"
	case models.PaymentMethodCard:
		if s.opts.Cards == nil {
			s.logger.Warn("Card payments not configured", zap.String("order_id", order.ID.String()))
			break
		}
		intent, err := s.opts.Cards.CreatePaymentIntent(ctx, order.Total, order.OrderNumber)
		if err != nil {
			s.logger.Error("Failed to create payment intent", zap.String("order_id", order.ID.String()), zap.Error(err))
			break
		}
		resp.ClientSecret = intent.ClientSecret
		resp.Message = "Complete the card payment to confirm your order"
	}
	return resp
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	switch actor.Role {
	case models.RoleAdmin:
		return order, nil
	case models.RoleShipper:
		if order.ShipperAssigned != nil && *order.ShipperAssigned == actor.ID {
			return order, nil
		}
	case models.RoleStaff:
		if svcErr := s.checkStaffStore(ctx, actor.ID, order); svcErr == nil {
			return order, nil
		}
	default:
		if order.UserID == actor.ID {
			return order, nil
		}
	}
	return nil, forbiddenError("You do not have access to this order")
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError) {
	return s.list(ctx, models.OrderFilter{UserID: userID, Statuses: statuses}, page, limit)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *ServiceError) {
	return s.list(ctx, filter, page, limit)
}

// ListStaffOrders lists orders of the staff member's store. Without a status
// filter only active orders are returned.
func (s *orderServiceImpl) ListStaffOrders(ctx context.Context, staffID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError) {
	staff, svcErr := s.findUser(ctx, staffID)
	if svcErr != nil {
		return nil, svcErr
	}
	if staff.StoreID == nil {
		return nil, forbiddenError("Staff account is not assigned to a store")
	}
	if len(statuses) == 0 {
		statuses = ActiveOrderStatuses
	}
	return s.list(ctx, models.OrderFilter{StoreID: staff.StoreID, Statuses: statuses}, page, limit)
}

func (s *orderServiceImpl) list(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *ServiceError) {
	orders, total, err := s.repos.Orders.List(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, internalError("Failed to fetch orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderListResponse{Orders: orders, Meta: NewMetaData(page, limit, total)}, nil
}

// UpdateStatusByAdmin sets any known status, overriding the state machine.
// Cancelling needs a reason.
func (s *orderServiceImpl) UpdateStatusByAdmin(ctx context.Context, adminID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, *ServiceError) {
	if req.Status == models.OrderStatusCancelled && strings.TrimSpace(req.CancelReason) == "" {
		return nil, validationError(CodeValidation, "Cancel reason is required")
	}
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	fields := map[string]interface{}{}
	if req.Status == models.OrderStatusCancelled {
		fields["cancel_reason"] = strings.TrimSpace(req.CancelReason)
	}
	if svcErr := s.transition(ctx, Actor{ID: adminID, Role: models.RoleAdmin}, order, req.Status, fields); svcErr != nil {
		return nil, svcErr
	}
	return order, nil
}

// UpdateStatusByStaff moves orders of the staff member's own store. Assigning
// a shipper is allowed only from ready and moves the order to delivering.
func (s *orderServiceImpl) UpdateStatusByStaff(ctx context.Context, staffID string, orderID uuid.UUID, req *models.StaffUpdateOrderRequest) (*models.Order, *ServiceError) {
	assign := strings.TrimSpace(req.AssignShipperID)
	if req.Status == "" && assign == "" {
		return nil, validationError(CodeValidation, "Either status or assignShipperId is required")
	}

	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.checkStaffStore(ctx, staffID, order); svcErr != nil {
		return nil, svcErr
	}
	actor := Actor{ID: staffID, Role: models.RoleStaff}

	if assign != "" {
		if order.Status != models.OrderStatusReady {
			return nil, preconditionError(CodeInvalidTransition, "A shipper can only be assigned to a ready order")
		}
		shipper, svcErr := s.findUser(ctx, assign)
		if svcErr != nil {
			return nil, svcErr
		}
		if shipper.Role != models.RoleShipper || shipper.IsBanned {
			return nil, validationError(CodeValidation, "Assigned user is not an active shipper")
		}
		fields := map[string]interface{}{"shipper_assigned": shipper.ID}
		// ready -> delivering is outside the staff targets; the assignment
		// itself is the staff capability here.
		if svcErr := s.applyTransition(ctx, actor, order, models.OrderStatusDelivering, fields); svcErr != nil {
			return nil, svcErr
		}
		order.ShipperAssigned = &shipper.ID
		return order, nil
	}

	fields := map[string]interface{}{}
	if req.Status == models.OrderStatusCancelled && strings.TrimSpace(req.CancelReason) != "" {
		fields["cancel_reason"] = strings.TrimSpace(req.CancelReason)
	}
	if svcErr := s.transition(ctx, actor, order, req.Status, fields); svcErr != nil {
		return nil, svcErr
	}
	return order, nil
}

// UpdateDeliveryStatus lets the assigned shipper complete a delivery.
func (s *orderServiceImpl) UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError) {
	order, svcErr := s.findOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if order.ShipperAssigned == nil || *order.ShipperAssigned != shipperID {
		return nil, forbiddenError("Order is not assigned to you")
	}
	if svcErr := s.transition(ctx, Actor{ID: shipperID, Role: models.RoleShipper}, order, status, map[string]interface{}{}); svcErr != nil {
		return nil, svcErr
	}
	return order, nil
}

// ConfirmPayment records a settled payment and confirms a pending order.
// Confirming an already paid order is a no-op.
func (s *orderServiceImpl) ConfirmPayment(ctx context.Context, orderNumber string, amount int64, reference string) *ServiceError {
	var (
		order     *models.Order
		confirmed bool
	)
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = repos.Orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeOrderNotFound, "Order not found")
			}
			return err
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			order = nil
			return nil
		}
		if amount != order.Total {
			return validationError(CodeValidation, fmt.Sprintf("Payment amount %d does not match order total %d", amount, order.Total))
		}

		paid, err := repos.Orders.MarkPaid(ctx, order.ID, reference)
		if err != nil {
			return err
		}
		if !paid {
			order = nil
			return nil
		}
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaymentReference = reference

		if order.Status == models.OrderStatusPending {
			confirmed, err = repos.Orders.Transition(ctx, order.ID, models.OrderStatusPending,
				map[string]interface{}{"status": models.OrderStatusConfirmed})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		svcErr := asServiceError(err, "Failed to confirm payment")
		if svcErr.StatusCode >= 500 {
			s.logger.Error("Failed to confirm payment", zap.String("order_number", orderNumber), zap.Error(err))
		}
		return svcErr
	}
	if order == nil {
		s.logger.Info("Payment already confirmed, skipping", zap.String("order_number", orderNumber))
		return nil
	}

	s.logger.Info("Payment confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", orderNumber),
		zap.String("reference", reference),
	)
	s.recordCount(ctx, aws_pkg.MetricPaymentSucceeded, map[string]string{"PaymentMethod": order.PaymentMethod})
	if confirmed {
		order.Status = models.OrderStatusConfirmed
		s.publishStatusChanged(ctx, order, models.OrderStatusPending, Actor{ID: reference, Role: systemRole})
	}
	return nil
}

// transition checks the role policy before applying the change.
func (s *orderServiceImpl) transition(ctx context.Context, actor Actor, order *models.Order, to models.OrderStatus, fields map[string]interface{}) *ServiceError {
	if !CanActorTransition(actor.Role, order.Status, to) {
		return preconditionError(CodeInvalidTransition,
			fmt.Sprintf("Cannot change order status from %s to %s", order.Status, to))
	}
	return s.applyTransition(ctx, actor, order, to, fields)
}

// applyTransition writes the new status guarded by the current one. The
// caller has already checked that the move is allowed.
func (s *orderServiceImpl) applyTransition(ctx context.Context, actor Actor, order *models.Order, to models.OrderStatus, fields map[string]interface{}) *ServiceError {
	from := order.Status
	fields["status"] = to
	ok, err := s.repos.Orders.Transition(ctx, order.ID, from, fields)
	if err != nil {
		s.logger.Error("Failed to update order status", zap.String("order_id", order.ID.String()), zap.Error(err))
		return internalError("Failed to update order status")
	}
	if !ok {
		return conflictError(CodeConcurrentUpdate, "Order was modified by another request")
	}

	order.Status = to
	if reason, ok := fields["cancel_reason"].(string); ok {
		order.CancelReason = &reason
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID),
		zap.String("role", string(actor.Role)),
	)
	if to == models.OrderStatusCompleted {
		s.recordCount(ctx, aws_pkg.MetricOrdersCompleted, nil)
	}
	s.publishStatusChanged(ctx, order, from, actor)
	return nil
}

func (s *orderServiceImpl) checkStaffStore(ctx context.Context, staffID string, order *models.Order) *ServiceError {
	staff, svcErr := s.findUser(ctx, staffID)
	if svcErr != nil {
		return svcErr
	}
	if staff.StoreID == nil || *staff.StoreID != order.StoreID {
		return forbiddenError("Order does not belong to your store")
	}
	return nil
}

func (s *orderServiceImpl) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError(CodeOrderNotFound, "Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch order")
	}
	return order, nil
}

func (s *orderServiceImpl) findUser(ctx context.Context, userID string) (*models.User, *ServiceError) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError(CodeUserNotFound, "User not found")
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to fetch user")
	}
	return user, nil
}

func (s *orderServiceImpl) publishOrderCreated(ctx context.Context, order *models.Order, earned int64) {
	if s.opts.Producer == nil {
		return
	}
	event := models.OrderCreatedEvent{
		EventType:     "order.created",
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		StoreID:       order.StoreID.String(),
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
		EarnedPoints:  earned,
		Timestamp:     s.now().UTC(),
	}
	if err := s.opts.Producer.SendOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish order.created", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

// publishStatusChanged publishes an order.status_changed event to SNS.
func (s *orderServiceImpl) publishStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus, actor Actor) {
	if s.opts.SNSClient == nil || s.opts.SNSTopicArn == "" {
		s.logger.Debug("SNS client not configured, skipping order.status_changed event")
		return
	}
	event := models.OrderStatusChangedEvent{
		EventType:   "order.status_changed",
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		From:        from,
		To:          order.Status,
		ChangedBy:   actor.ID,
		Role:        actor.Role,
		Timestamp:   s.now().UTC(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal order.status_changed event", zap.Error(err))
		return
	}
	if err := s.opts.SNSClient.Publish(ctx, s.opts.SNSTopicArn, eventBytes); err != nil {
		s.logger.Error("Failed to publish order.status_changed event", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *orderServiceImpl) recordCount(ctx context.Context, metric string, dims map[string]string) {
	if s.opts.Metrics == nil {
		return
	}
	if err := s.opts.Metrics.RecordCount(ctx, metric, dims); err != nil {
		s.logger.Debug("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

// NewMetaData builds the pagination envelope.
func NewMetaData(page, limit int, total int64) models.MetaData {
	return models.MetaData{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: calculateTotalPages(total, limit),
		HasMore:    total > int64(page*limit),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
