package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/stockpos/stockpos/internal/app"
	"github.com/stockpos/stockpos/internal/store"
	"github.com/stockpos/stockpos/internal/webserver"
)

// InitRouter registers every admin API route. Call after webserver.Init.
func InitRouter() {
	registerAuthRoutes()
	registerUserRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerCouponRoutes()
	registerDbmsRoutes()
}

// GetApp returns the application stashed into the request context.
func GetApp(c echo.Context) *app.Application {
	return c.Get(webserver.ContextAppKey).(*app.Application)
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return GetApp(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// failStore maps the order-ledger error taxonomy onto HTTP statuses.
func failStore(c echo.Context, err error) error {
	switch {
	case store.IsNotFound(err):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case store.IsDuplicateBarcode(err):
		return fail(c, http.StatusConflict, "DUPLICATE_BARCODE", err.Error(), nil)
	case store.IsProductInUse(err):
		return fail(c, http.StatusConflict, "PRODUCT_IN_USE", err.Error(), nil)
	case store.IsInsufficientStock(err):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), nil)
	case store.IsInvalidAmount(err):
		return fail(c, http.StatusBadRequest, "INVALID_AMOUNT", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Operation failed", err.Error())
	}
}
