package routes

import (
	"github.com/CodeForFun2004/The-Chill-Cup-API/controllers"
	"github.com/CodeForFun2004/The-Chill-Cup-API/middleware"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"

	"github.com/gin-gonic/gin"
)

// Controllers bundles the HTTP handlers mounted by RegisterRoutes.
type Controllers struct {
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Discount *controllers.DiscountController
	Loyalty  *controllers.LoyaltyController
	Shipper  *controllers.ShipperController
	Payment  *controllers.PaymentController
}

// RegisterRoutes sets up all API routes.
func RegisterRoutes(r *gin.Engine, parser middleware.TokenParser, c Controllers) {
	// Public, verified by signature
	if c.Payment != nil {
		r.POST("/payments/stripe/webhook", c.Payment.StripeWebhook)
	}

	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(parser))

	customer := middleware.RequireRoles(models.RoleCustomer)
	admin := middleware.RequireRoles(models.RoleAdmin)

	cart := authed.Group("/cart", customer)
	cart.POST("", c.Cart.AddItem)
	cart.GET("", c.Cart.GetCart)
	cart.DELETE("", c.Cart.ClearCart)
	cart.PUT("/item/:itemId", c.Cart.UpdateItem)
	cart.DELETE("/item/:itemId", c.Cart.RemoveItem)
	cart.POST("/apply-discount", c.Cart.ApplyDiscount)
	cart.DELETE("/apply-discount", c.Cart.RemoveDiscount)

	orders := authed.Group("/orders")
	orders.POST("", customer, c.Order.CreateOrder)
	orders.GET("/user", customer, c.Order.ListUserOrders)
	orders.GET("/admin", admin, c.Order.ListAdminOrders)
	orders.PUT("/admin/:orderId", admin, c.Order.UpdateAdminOrder)
	staff := middleware.RequireRoles(models.RoleStaff)
	orders.GET("/staff", staff, c.Order.ListStaffOrders)
	orders.PUT("/staff/:orderId", staff, c.Order.UpdateStaffOrder)
	orders.GET("/:orderId", c.Order.GetOrder)

	discounts := authed.Group("/discounts")
	discounts.GET("", c.Discount.ListDiscounts)
	discounts.POST("", admin, c.Discount.CreateDiscount)
	discounts.PUT("/:id", admin, c.Discount.UpdateDiscount)
	discounts.DELETE("/:id", admin, c.Discount.DeleteDiscount)
	discounts.PATCH("/:id/lock", admin, c.Discount.ToggleLock)

	authed.GET("/user-discounts", customer, c.Discount.ListUserDiscounts)

	loyalty := authed.Group("/loyalty", customer)
	loyalty.GET("/points", c.Loyalty.GetPoints)
	loyalty.GET("/promotions", c.Loyalty.ListPromotions)
	loyalty.GET("/coupons", c.Loyalty.ListCoupons)
	loyalty.POST("/redeem/:discountId", c.Loyalty.Redeem)

	shipper := authed.Group("/shipper", middleware.RequireRoles(models.RoleShipper))
	shipper.GET("/orders", c.Shipper.ListOrders)
	shipper.PUT("/orders/:orderId/status", c.Shipper.UpdateStatus)
	shipper.GET("/history", c.Shipper.History)
	shipper.GET("/earnings", c.Shipper.Earnings)
	shipper.PATCH("/availability", c.Shipper.ToggleAvailability)
}
