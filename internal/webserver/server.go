package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/AvalonLA/atelier/internal/app"
)

const (
	// ContextApp is the context key holding the application container.
	ContextApp = "atelier_app"
	// SessionName is the storefront cookie session.
	SessionName = "atelier_session"
)

var server *WebServer

type WebServer struct {
	root  *echo.Echo
	appl  *app.Application
	api   *echo.Group
	shop  *echo.Group
	login *echo.Group
}

// Init builds the package server instance around the application.
func Init(appl *app.Application) {
	server = NewWebServer(appl)
}

func NewWebServer(appl *app.Application) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(session.Middleware(
		sessions.NewCookieStore([]byte(appl.Config().Web.Secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextApp, appl)
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	})

	// uploaded product images
	e.Static("/files", appl.Files().Root())

	s := &WebServer{
		root:  e,
		appl:  appl,
		login: e.Group(""),
		shop:  e.Group("/shop"),
	}

	s.api = e.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(appl.Config().Web.Secret),
		TokenLookup: "header:Authorization:Bearer ,query:token",
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	}))

	s.login.POST("/login", loginHandler)
	return s
}

// Listen starts the HTTP listener and blocks.
func Listen() error {
	cfg := server.appl.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown gracefully stops the HTTP listener.
func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// ApiGET registers an authenticated admin route.
func ApiGET(path string, h echo.HandlerFunc)    { server.api.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.api.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.api.PUT(path, h) }
func ApiPATCH(path string, h echo.HandlerFunc)  { server.api.PATCH(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// ShopGET registers a public storefront route.
func ShopGET(path string, h echo.HandlerFunc)    { server.shop.GET(path, h) }
func ShopPOST(path string, h echo.HandlerFunc)   { server.shop.POST(path, h) }
func ShopPUT(path string, h echo.HandlerFunc)    { server.shop.PUT(path, h) }
func ShopDELETE(path string, h echo.HandlerFunc) { server.shop.DELETE(path, h) }

// GetApp extracts the application container from the request context.
func GetApp(c echo.Context) *app.Application {
	return c.Get(ContextApp).(*app.Application)
}
