package services

import "github.com/CodeForFun2004/The-Chill-Cup-API/models"

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {
		models.OrderStatusProcessing,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusCancelled,
	},
	models.OrderStatusProcessing: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:  {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:      {models.OrderStatusDelivering, models.OrderStatusCancelled},
	models.OrderStatusDelivering: {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:  nil,
	models.OrderStatusCancelled:  nil,
}

var staffTargets = map[models.OrderStatus]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusConfirmed:  true,
	models.OrderStatusPreparing:  true,
	models.OrderStatusReady:      true,
	models.OrderStatusCancelled:  true,
}

// ActiveOrderStatuses are the statuses staff see by default.
var ActiveOrderStatuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
	models.OrderStatusConfirmed,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
	models.OrderStatusDelivering,
}

// IsValidOrderStatus reports whether s is a known status.
func IsValidOrderStatus(s models.OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusCompleted || s == models.OrderStatusCancelled
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanActorTransition applies the role policy. Admins override the state
// machine and may set any known status other than the current one; every
// other role is bound by CanTransition. Ownership checks (store, assigned
// shipper) are done by the caller.
func CanActorTransition(role models.Role, from, to models.OrderStatus) bool {
	if role == models.RoleAdmin {
		return IsValidOrderStatus(to) && from != to
	}
	if !CanTransition(from, to) {
		return false
	}
	switch role {
	case models.RoleStaff:
		return staffTargets[to]
	case models.RoleShipper:
		return from == models.OrderStatusDelivering && to == models.OrderStatusCompleted
	default:
		return false
	}
}
