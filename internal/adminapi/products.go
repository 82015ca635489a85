package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/stockpos/stockpos/internal/domain"
	"github.com/stockpos/stockpos/internal/store"
	"github.com/stockpos/stockpos/internal/webserver"
)

type productPayload struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
}

// registerProductRoutes registers product catalog CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:barcode", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:barcode", updateProduct)
	webserver.ApiDELETE("/products/:barcode", deleteProduct)
}

func listProducts(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	if limit < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must not be negative", nil)
	}
	products, err := GetApp(c).Products().List(c.Request().Context(), limit)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	product, err := GetApp(c).Products().GetByBarcode(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, product)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Barcode = strings.TrimSpace(payload.Barcode)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Barcode == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Barcode is required", nil)
	}
	if payload.Quantity < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quantity must not be negative", nil)
	}

	product := domain.Product{
		Name:        payload.Name,
		Barcode:     payload.Barcode,
		Description: payload.Description,
		Image:       strings.TrimSpace(payload.Image),
		Quantity:    payload.Quantity,
		Unit:        payload.Unit,
		Price:       payload.Price,
	}
	if err := GetApp(c).Products().Insert(c.Request().Context(), &product); err != nil {
		return failStore(c, err)
	}
	return ok(c, product)
}

func updateProduct(c echo.Context) error {
	fields := map[string]interface{}{}
	if err := c.Bind(&fields); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	patch, err := store.DecodeProductPatch(fields)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to decode product fields", err.Error())
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quantity must not be negative", nil)
	}

	product, err := GetApp(c).Products().UpdateByBarcode(c.Request().Context(), c.Param("barcode"), patch)
	if err != nil {
		return failStore(c, err)
	}
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	barcode := c.Param("barcode")
	if err := GetApp(c).Products().DeleteByBarcode(c.Request().Context(), barcode); err != nil {
		return failStore(c, err)
	}
	return ok(c, map[string]interface{}{"barcode": barcode})
}
