package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/stockpos/stockpos/internal/webserver"
)

type orderPayload struct {
	Items       map[string]float64 `json:"items"` // barcode -> requested amount
	Description string             `json:"description"`
}

// registerOrderRoutes registers sales order endpoints
func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/range", listOrdersInRange)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

func listOrders(c echo.Context) error {
	views, err := GetApp(c).Orders().List(c.Request().Context())
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, views)
}

// listOrdersInRange filters on created_at with inclusive unix-second bounds.
// Either bound may be omitted; with both absent all orders are returned.
func listOrdersInRange(c echo.Context) error {
	var start, end *time.Time
	if s := c.QueryParam("start"); s != "" {
		t := time.Unix(cast.ToInt64(s), 0)
		start = &t
	}
	if e := c.QueryParam("end"); e != "" {
		t := time.Unix(cast.ToInt64(e), 0)
		end = &t
	}
	views, err := GetApp(c).Orders().ListRange(c.Request().Context(), start, end)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, views)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	view, err := GetApp(c).Orders().Get(c.Request().Context(), id)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, view)
}

func createOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Order items are required", nil)
	}
	view, err := GetApp(c).Orders().Create(c.Request().Context(), payload.Items, payload.Description)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, view)
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if len(payload.Items) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Order items are required", nil)
	}
	view, err := GetApp(c).Orders().Update(c.Request().Context(), id, payload.Items, payload.Description)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, view)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := GetApp(c).Orders().Delete(c.Request().Context(), id); err != nil {
		return failStore(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
