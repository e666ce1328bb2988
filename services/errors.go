package services

import (
	"errors"
	"net/http"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Error codes. Each belongs to one of the validation, not-found, conflict,
// precondition or internal families.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidSize        = "INVALID_SIZE"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeCartNotFound       = "CART_NOT_FOUND"
	CodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CodeDiscountNotFound   = "DISCOUNT_NOT_FOUND"
	CodeOrderNotFound      = "ORDER_NOT_FOUND"
	CodeStoreNotFound      = "STORE_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeDiscountUsed       = "DISCOUNT_ALREADY_USED"
	CodeAlreadyRedeemed    = "ALREADY_REDEEMED"
	CodeDuplicateCode      = "DUPLICATE_PROMOTION_CODE"
	CodeConcurrentUpdate   = "CONCURRENT_UPDATE"
	CodeStoreInactive      = "STORE_INACTIVE"
	CodeEmptyCart          = "EMPTY_CART"
	CodeMinimumOrderNotMet = "MINIMUM_ORDER_NOT_MET"
	CodeDiscountExpired    = "DISCOUNT_EXPIRED"
	CodeDiscountLocked     = "DISCOUNT_LOCKED"
	CodeInsufficientPoints = "INSUFFICIENT_POINTS"
	CodeNotRedeemable      = "DISCOUNT_NOT_REDEEMABLE"
	CodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

func validationError(code, message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

func notFoundError(code, message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

func conflictError(code, message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Code: code, Message: message}
}

func preconditionError(code, message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

func forbiddenError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

func internalError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// asServiceError unwraps a *ServiceError returned through a transaction
// callback, or wraps anything else as an internal error.
func asServiceError(err error, fallback string) *ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return internalError(fallback)
}
