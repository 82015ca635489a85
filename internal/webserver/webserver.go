package webserver

import (
	"context"
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/stockpos/stockpos/internal/app"
)

// ContextAppKey is the echo context key the Application is stashed under.
const ContextAppKey = "stockpos.app"

type WebServer struct {
	appCtx *app.Application
	root   *echo.Echo
	pub    *echo.Group
	api    *echo.Group
}

var server *WebServer

// Init builds the web server: public /api group for token issuance and a
// JWT-protected /api group for everything else.
func Init(appCtx *app.Application) *WebServer {
	s := &WebServer{appCtx: appCtx, root: echo.New()}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = appCtx.Config().System.Debug
	s.root.JSONSerializer = NewJsoniterSerializer()

	s.root.Use(middleware.Recover())
	s.root.Use(middleware.CORS())
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextAppKey, appCtx)
			return next(c)
		}
	})

	s.root.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.pub = s.root.Group("/api")
	s.api = s.root.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.JwtSecret),
	}))

	server = s
	return s
}

// Listen starts serving on the configured address, blocking until shutdown.
func Listen() error {
	cfg := server.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("starting web server on %s", addr)
	return server.root.Start(addr)
}

// Shutdown stops the server gracefully.
func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

// PubPOST registers a POST route without JWT protection.
func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}
