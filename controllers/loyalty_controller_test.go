package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/CodeForFun2004/The-Chill-Cup-API/controllers"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLoyaltyRouter(loyalty services.LoyaltyService, discounts services.DiscountService) *gin.Engine {
	r := withCaller(gin.New(), "user-1", models.RoleCustomer)
	lc := controllers.NewLoyaltyController(loyalty, discounts)
	r.GET("/loyalty/points", lc.GetPoints)
	r.GET("/loyalty/promotions", lc.ListPromotions)
	r.GET("/loyalty/coupons", lc.ListCoupons)
	r.POST("/loyalty/redeem/:discountId", lc.Redeem)
	return r
}

func TestLoyaltyController_GetPoints(t *testing.T) {
	svc := &mockLoyaltyService{
		pointsFn: func(_ context.Context, userID string) (*models.LoyaltyResponse, *services.ServiceError) {
			assert.Equal(t, "user-1", userID)
			return &models.LoyaltyResponse{Points: 87, History: []models.LoyaltyHistory{}}, nil
		},
	}
	r := setupLoyaltyRouter(svc, &mockDiscountService{})

	w := doJSON(r, http.MethodGet, "/loyalty/points", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(87), decode(w)["points"])
}

func TestLoyaltyController_Lists(t *testing.T) {
	svc := &mockLoyaltyService{
		promotionsFn: func(context.Context, string) ([]models.Discount, *services.ServiceError) {
			return []models.Discount{{PromotionCode: "OPEN"}}, nil
		},
		couponsFn: func(context.Context, string) ([]models.UserCouponResponse, *services.ServiceError) {
			return nil, svcError(http.StatusInternalServerError, services.CodeInternal)
		},
	}
	r := setupLoyaltyRouter(svc, &mockDiscountService{})

	w := doJSON(r, http.MethodGet, "/loyalty/promotions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(w)["promotions"], 1)

	w = doJSON(r, http.MethodGet, "/loyalty/coupons", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoyaltyController_Redeem(t *testing.T) {
	discountID := uuid.New()
	discounts := &mockDiscountService{
		redeemFn: func(_ context.Context, _ string, id uuid.UUID) (*models.RedeemResponse, *services.ServiceError) {
			if id != discountID {
				return nil, svcError(http.StatusBadRequest, services.CodeInsufficientPoints)
			}
			return &models.RedeemResponse{PointsSpent: 50, RemainingPoints: 37}, nil
		},
	}
	r := setupLoyaltyRouter(&mockLoyaltyService{}, discounts)

	w := doJSON(r, http.MethodPost, "/loyalty/redeem/"+discountID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(37), decode(w)["remainingPoints"])

	w = doJSON(r, http.MethodPost, "/loyalty/redeem/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.CodeInsufficientPoints, decode(w)["code"])
}
