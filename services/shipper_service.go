package services

import (
	"context"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShipperService defines the delivery workflow of shippers.
type ShipperService interface {
	ListAssignedOrders(ctx context.Context, shipperID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError)
	UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError)
	DeliveryHistory(ctx context.Context, shipperID string, page, limit int) (*models.OrderListResponse, *ServiceError)
	Earnings(ctx context.Context, shipperID string, from, to *time.Time) (*models.ShipperEarnings, *ServiceError)
	ToggleAvailability(ctx context.Context, shipperID string) (*models.User, *ServiceError)
}

// shipperServiceImpl implements ShipperService.
type shipperServiceImpl struct {
	repos  repository.Repositories
	orders OrderService
	logger *zap.Logger
}

// NewShipperService creates a new ShipperService. Status changes go through
// orders so that the role policy and events stay in one place.
func NewShipperService(repos repository.Repositories, orders OrderService, logger *zap.Logger) ShipperService {
	return &shipperServiceImpl{repos: repos, orders: orders, logger: logger}
}

func (s *shipperServiceImpl) ListAssignedOrders(ctx context.Context, shipperID string, statuses []models.OrderStatus, page, limit int) (*models.OrderListResponse, *ServiceError) {
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{models.OrderStatusDelivering}
	}
	return s.list(ctx, models.OrderFilter{ShipperID: shipperID, Statuses: statuses}, page, limit)
}

func (s *shipperServiceImpl) UpdateDeliveryStatus(ctx context.Context, shipperID string, orderID uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError) {
	return s.orders.UpdateDeliveryStatus(ctx, shipperID, orderID, status)
}

func (s *shipperServiceImpl) DeliveryHistory(ctx context.Context, shipperID string, page, limit int) (*models.OrderListResponse, *ServiceError) {
	return s.list(ctx, models.OrderFilter{
		ShipperID: shipperID,
		Statuses:  []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled},
	}, page, limit)
}

// Earnings sums the delivery fees of completed deliveries in [from, to).
func (s *shipperServiceImpl) Earnings(ctx context.Context, shipperID string, from, to *time.Time) (*models.ShipperEarnings, *ServiceError) {
	count, sum, err := s.repos.Orders.SumDeliveryFees(ctx, models.OrderFilter{
		ShipperID: shipperID,
		Statuses:  []models.OrderStatus{models.OrderStatusCompleted},
		From:      from,
		To:        to,
	})
	if err != nil {
		s.logger.Error("Failed to compute earnings", zap.String("shipper_id", shipperID), zap.Error(err))
		return nil, internalError("Failed to compute earnings")
	}
	return &models.ShipperEarnings{CompletedOrders: count, TotalEarnings: sum}, nil
}

func (s *shipperServiceImpl) ToggleAvailability(ctx context.Context, shipperID string) (*models.User, *ServiceError) {
	user, err := s.repos.Users.FindByID(ctx, shipperID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError(CodeUserNotFound, "User not found")
		}
		s.logger.Error("Failed to load shipper", zap.String("shipper_id", shipperID), zap.Error(err))
		return nil, internalError("Failed to update availability")
	}
	if user.IsBanned {
		return nil, forbiddenError("Your account has been banned")
	}

	user.IsAvailable = !user.IsAvailable
	if err := s.repos.Users.SetAvailability(ctx, shipperID, user.IsAvailable); err != nil {
		s.logger.Error("Failed to update availability", zap.String("shipper_id", shipperID), zap.Error(err))
		return nil, internalError("Failed to update availability")
	}
	s.logger.Info("Shipper availability changed", zap.String("shipper_id", shipperID), zap.Bool("available", user.IsAvailable))
	return user, nil
}

func (s *shipperServiceImpl) list(ctx context.Context, filter models.OrderFilter, page, limit int) (*models.OrderListResponse, *ServiceError) {
	orders, total, err := s.repos.Orders.List(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to list shipper orders", zap.String("shipper_id", filter.ShipperID), zap.Error(err))
		return nil, internalError("Failed to fetch orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderListResponse{Orders: orders, Meta: NewMetaData(page, limit, total)}, nil
}
