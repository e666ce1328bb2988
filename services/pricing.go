package services

import (
	"errors"
	"strings"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	taxPercent      = 10
	pointsPerAmount = 1000
)

var (
	ErrInvalidSize     = errors.New("invalid size for product")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// SizeMultiplier finds the multiplier of sizeCode among the product's size options.
func SizeMultiplier(product *models.Product, sizeCode string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(sizeCode))
	for _, size := range product.Sizes {
		if strings.ToUpper(size.Code) != code {
			continue
		}
		multiplier := decimal.NewFromFloat(size.Multiplier)
		if !multiplier.IsPositive() {
			return decimal.Zero, ErrInvalidSize
		}
		return multiplier, nil
	}
	return decimal.Zero, ErrInvalidSize
}

// PriceLineItem computes basePrice*multiplier*quantity + Σ toppingPrice*quantity.
// The size part is rounded half away from zero before toppings are added.
func PriceLineItem(product *models.Product, sizeCode string, toppings []models.Topping, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	multiplier, err := SizeMultiplier(product, sizeCode)
	if err != nil {
		return 0, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	price := decimal.NewFromInt(product.BasePrice).Mul(multiplier).Mul(qty).Round(0)
	for _, topping := range toppings {
		price = price.Add(decimal.NewFromInt(topping.Price).Mul(qty))
	}
	if price.IsNegative() {
		return 0, nil
	}
	return price.IntPart(), nil
}

// ResolveToppings matches requested ids against the toppings that exist.
// Duplicate ids collapse to one topping; ids with no match are returned as missing.
func ResolveToppings(ids []uuid.UUID, found []models.Topping) ([]models.Topping, []uuid.UUID) {
	byID := make(map[uuid.UUID]models.Topping, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	var resolved []models.Topping
	var missing []uuid.UUID
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := byID[id]; ok {
			resolved = append(resolved, t)
		} else {
			missing = append(missing, id)
		}
	}
	return resolved, missing
}

// CartTotals is the derived state of a cart.
type CartTotals struct {
	Subtotal    int64
	DeliveryFee int64
	Discount    int64
	PromoCode   string
	Total       int64
	// DiscountReset is set when the previous discount no longer fit the subtotal.
	DiscountReset bool
}

// ComputeCartTotals recomputes subtotal and total from line items. A discount
// larger than the subtotal is dropped together with its promo code.
func ComputeCartTotals(items []models.CartItem, deliveryFee, discount int64, promoCode string) CartTotals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price
	}

	totals := CartTotals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Discount:    discount,
		PromoCode:   promoCode,
	}
	if discount > subtotal || discount < 0 {
		totals.Discount = 0
		totals.PromoCode = ""
		totals.DiscountReset = discount > 0 || promoCode != ""
	}
	totals.Total = totals.Subtotal + totals.DeliveryFee - totals.Discount
	return totals
}

// applyTo copies the totals onto the cart row.
func (t CartTotals) applyTo(cart *models.Cart) {
	cart.Subtotal = t.Subtotal
	cart.DeliveryFee = t.DeliveryFee
	cart.Discount = t.Discount
	cart.PromoCode = t.PromoCode
	cart.Total = t.Total
}

// PercentOf returns round(amount * percent / 100).
func PercentOf(amount int64, percent float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Tax is 10% of amount, rounded.
func Tax(amount int64) int64 {
	return PercentOf(amount, taxPercent)
}

// EarnedPoints is one point per 1000 of order total, rounded down.
func EarnedPoints(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return total / pointsPerAmount
}
