package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService defines the interface for cart business logic.
type CartService interface {
	AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartResponse, *ServiceError)
	GetCart(ctx context.Context, userID string) (*models.CartResponse, *ServiceError)
	UpdateItemQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.CartResponse, *ServiceError)
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartResponse, *ServiceError)
	ClearCart(ctx context.Context, userID string) (*models.CartResponse, *ServiceError)
}

// cartServiceImpl implements CartService.
type cartServiceImpl struct {
	tx          repository.TxManager
	deliveryFee int64
	logger      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(tx repository.TxManager, deliveryFee int64, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		tx:          tx,
		deliveryFee: deliveryFee,
		logger:      logger,
	}
}

// AddItem prices a new line item and appends it to the user's cart, creating
// the cart on first use.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.CartResponse, *ServiceError) {
	if req.Quantity <= 0 {
		return nil, validationError(CodeValidation, "Quantity must be greater than 0")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, validationError(CodeValidation, "Invalid product id")
	}
	toppingIDs := make([]uuid.UUID, 0, len(req.Toppings))
	for _, raw := range req.Toppings {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationError(CodeValidation, "Invalid topping id")
		}
		toppingIDs = append(toppingIDs, id)
	}

	var cart *models.Cart
	err = s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		product, err := repos.Catalog.FindProductByID(ctx, productID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeProductNotFound, "Product not found")
			}
			return err
		}

		toppings, err := s.resolveToppings(ctx, repos, toppingIDs)
		if err != nil {
			return err
		}

		price, err := PriceLineItem(product, req.Size, toppings, req.Quantity)
		if err != nil {
			return pricingError(err)
		}

		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if !repository.IsNotFound(err) {
				return err
			}
			cart = &models.Cart{UserID: userID, DeliveryFee: s.deliveryFee, Total: s.deliveryFee}
			if err := repos.Carts.Create(ctx, cart); err != nil {
				return err
			}
		}

		item := models.CartItem{
			CartID:    cart.ID,
			UserID:    userID,
			ProductID: product.ID,
			Product:   *product,
			Size:      strings.ToUpper(req.Size),
			Toppings:  toppings,
			Quantity:  req.Quantity,
			Price:     price,
		}
		if err := repos.Carts.AddItem(ctx, &item); err != nil {
			return err
		}
		cart.Items = append(cart.Items, item)

		return s.recompute(ctx, repos, cart)
	})
	if err != nil {
		return nil, s.fail(err, "Failed to add item to cart", zap.String("user_id", userID))
	}

	s.logger.Info("Cart item added", zap.String("user_id", userID), zap.String("product_id", productID.String()))
	return toCartResponse(cart), nil
}

// GetCart returns the cart with freshly recomputed totals. A user without a
// cart gets a zero-valued snapshot and nothing is persisted.
func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*models.CartResponse, *ServiceError) {
	var cart *models.Cart
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		return s.recompute(ctx, repos, cart)
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return s.emptyCart(), nil
		}
		return nil, s.fail(err, "Failed to load cart", zap.String("user_id", userID))
	}
	return toCartResponse(cart), nil
}

// UpdateItemQuantity re-prices the item from current catalog data.
func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.CartResponse, *ServiceError) {
	if quantity <= 0 {
		return nil, validationError(CodeValidation, "Quantity must be greater than 0")
	}

	var cart *models.Cart
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		item, err := repos.Carts.FindItem(ctx, userID, itemID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeCartItemNotFound, "Cart item not found")
			}
			return err
		}

		product, err := repos.Catalog.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeProductNotFound, "Product not found")
			}
			return err
		}

		ids := make([]uuid.UUID, 0, len(item.Toppings))
		for _, t := range item.Toppings {
			ids = append(ids, t.ID)
		}
		toppings, err := s.resolveToppings(ctx, repos, ids)
		if err != nil {
			return err
		}

		price, err := PriceLineItem(product, item.Size, toppings, quantity)
		if err != nil {
			return pricingError(err)
		}
		item.Quantity = quantity
		item.Price = price
		if err := repos.Carts.UpdateItemPricing(ctx, item); err != nil {
			return err
		}

		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeCartNotFound, "Cart not found")
			}
			return err
		}
		return s.recompute(ctx, repos, cart)
	})
	if err != nil {
		return nil, s.fail(err, "Failed to update cart item", zap.String("user_id", userID), zap.String("item_id", itemID.String()))
	}
	return toCartResponse(cart), nil
}

// RemoveItem deletes one line item.
func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartResponse, *ServiceError) {
	var cart *models.Cart
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		cart, err = repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundError(CodeCartNotFound, "Cart not found")
			}
			return err
		}

		idx := -1
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFoundError(CodeCartItemNotFound, "Cart item not found")
		}

		if err := repos.Carts.DeleteItem(ctx, &cart.Items[idx]); err != nil {
			return err
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		return s.recompute(ctx, repos, cart)
	})
	if err != nil {
		return nil, s.fail(err, "Failed to remove cart item", zap.String("user_id", userID), zap.String("item_id", itemID.String()))
	}
	return toCartResponse(cart), nil
}

// ClearCart releases any applied promo code and deletes the cart. Clearing a
// missing cart is not an error.
func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) (*models.CartResponse, *ServiceError) {
	err := s.tx.WithTransaction(ctx, func(repos repository.Repositories) error {
		cart, err := repos.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}

		if cart.PromoCode != "" {
			if err := releaseDiscount(ctx, repos, userID, cart.PromoCode, s.logger); err != nil {
				return err
			}
		}
		return repos.Carts.Delete(ctx, cart)
	})
	if err != nil {
		return nil, s.fail(err, "Failed to clear cart", zap.String("user_id", userID))
	}

	s.logger.Info("Cart cleared", zap.String("user_id", userID))
	return s.emptyCart(), nil
}

// recompute derives totals from the loaded items, releases a promo code that
// no longer fits, and persists the result.
func (s *cartServiceImpl) recompute(ctx context.Context, repos repository.Repositories, cart *models.Cart) error {
	previousCode := cart.PromoCode
	totals := ComputeCartTotals(cart.Items, s.deliveryFee, cart.Discount, cart.PromoCode)
	totals.applyTo(cart)

	if totals.DiscountReset && previousCode != "" {
		s.logger.Info("Discount no longer covered by subtotal, resetting",
			zap.String("user_id", cart.UserID),
			zap.String("promo_code", previousCode),
		)
		if err := releaseDiscount(ctx, repos, cart.UserID, previousCode, s.logger); err != nil {
			return err
		}
	}
	return repos.Carts.SaveTotals(ctx, cart)
}

func (s *cartServiceImpl) resolveToppings(ctx context.Context, repos repository.Repositories, ids []uuid.UUID) ([]models.Topping, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := repos.Catalog.FindToppingsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	resolved, missing := ResolveToppings(ids, found)
	if len(missing) > 0 {
		s.logger.Warn("Skipping unknown toppings", zap.Stringers("topping_ids", missing))
	}
	return resolved, nil
}

func (s *cartServiceImpl) emptyCart() *models.CartResponse {
	return &models.CartResponse{
		Items:       []models.CartItemResponse{},
		DeliveryFee: s.deliveryFee,
		Total:       s.deliveryFee,
	}
}

func (s *cartServiceImpl) fail(err error, message string, fields ...zap.Field) *ServiceError {
	svcErr := asServiceError(err, message)
	if svcErr.StatusCode >= 500 {
		s.logger.Error(message, append(fields, zap.Error(err))...)
	}
	return svcErr
}

func pricingError(err error) *ServiceError {
	switch {
	case errors.Is(err, ErrInvalidSize):
		return validationError(CodeInvalidSize, "Invalid size for this product")
	case errors.Is(err, ErrInvalidQuantity):
		return validationError(CodeValidation, "Quantity must be greater than 0")
	default:
		return internalError("Failed to price item")
	}
}

func toCartResponse(cart *models.Cart) *models.CartResponse {
	items := make([]models.CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		toppings := make([]models.CartItemTopping, 0, len(item.Toppings))
		for _, t := range item.Toppings {
			toppings = append(toppings, models.CartItemTopping{ID: t.ID, Name: t.Name, Price: t.Price})
		}
		items = append(items, models.CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Size:        item.Size,
			Toppings:    toppings,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return &models.CartResponse{
		Items:       items,
		Subtotal:    cart.Subtotal,
		DeliveryFee: cart.DeliveryFee,
		Discount:    cart.Discount,
		Total:       cart.Total,
		PromoCode:   cart.PromoCode,
	}
}
