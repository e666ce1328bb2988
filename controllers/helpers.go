package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/middleware"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	dateLayout   = "2006-01-02"
	shopTimeZone = "Asia/Ho_Chi_Minh"
)

// shopLocation is the zone date filters are interpreted in.
var shopLocation = loadShopLocation()

func loadShopLocation() *time.Location {
	loc, err := time.LoadLocation(shopTimeZone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func respondError(ctx *gin.Context, svcErr *services.ServiceError) {
	ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"code":    services.CodeValidation,
		"details": err.Error(),
	})
}

func respondBadParam(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": message, "code": services.CodeValidation})
}

// callerID returns the authenticated user id or writes 401.
func callerID(ctx *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
		return "", false
	}
	return userID, true
}

// uuidParam parses a path parameter or writes 400.
func uuidParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		respondBadParam(ctx, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}
	return pageInt, limitInt
}

// parseStatuses reads a comma separated status filter. Unknown statuses are
// reported back as the second value.
func parseStatuses(raw string) ([]models.OrderStatus, string) {
	if strings.TrimSpace(raw) == "" {
		return nil, ""
	}
	var statuses []models.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		s := models.OrderStatus(strings.ToLower(strings.TrimSpace(part)))
		if s == "" {
			continue
		}
		if !services.IsValidOrderStatus(s) {
			return nil, string(s)
		}
		statuses = append(statuses, s)
	}
	return statuses, ""
}

// parseDate reads a YYYY-MM-DD query value as midnight in the shop's zone.
// endOfDay moves it to the following midnight so the range is half-open.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, shopLocation)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

// statusFilter reads ?status= or writes 400.
func statusFilter(ctx *gin.Context) ([]models.OrderStatus, bool) {
	statuses, bad := parseStatuses(ctx.Query("status"))
	if bad != "" {
		respondBadParam(ctx, "Invalid status: "+bad)
		return nil, false
	}
	return statuses, true
}
