package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockpos/stockpos/internal/webserver"
)

type couponPayload struct {
	Items map[string]float64 `json:"items"` // barcode -> amount
}

// registerCouponRoutes registers coupon code endpoints
func registerCouponRoutes() {
	webserver.ApiPOST("/coupons", createCoupon)
	webserver.ApiGET("/coupons/:code", getCoupon)
}

func createCoupon(c echo.Context) error {
	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon", nil)
	}
	if len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Coupon items are required", nil)
	}
	code, err := GetApp(c).Coupons().Add(payload.Items)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "COUPON_ERROR", "Failed to store coupon", err.Error())
	}
	return ok(c, map[string]string{"code": code})
}

func getCoupon(c echo.Context) error {
	code := c.Param("code")
	items, found, err := GetApp(c).Coupons().Items(code)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "COUPON_ERROR", "Failed to read coupon", err.Error())
	}
	if !found {
		return fail(c, http.StatusNotFound, "COUPON_NOT_FOUND", "Coupon not found", nil)
	}
	return ok(c, map[string]interface{}{"code": code, "items": items})
}
