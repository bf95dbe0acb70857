package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketpulse/finrag/config"
	"github.com/marketpulse/finrag/models"
)

// Run builds the app from configuration and serves HTTP until the
// listener fails.
func Run(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	e := newEcho(app)
	log.Printf("listening on %s (%d docs)", cfg.Server.Address, app.Docs())
	return e.Start(cfg.Server.Address)
}

func newEcho(app *App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Healthz{OK: true, Docs: app.Docs()})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/chat", func(c echo.Context) error {
		var req models.ChatRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		res := app.Chat(c.Request().Context(), req.Question)
		return c.JSON(http.StatusOK, models.ChatResponse{Answer: res.Answer, Citations: res.Citations})
	})
	return e
}
