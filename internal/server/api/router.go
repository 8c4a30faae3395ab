package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"wilddough/internal/server/auth"
	"wilddough/internal/server/config"
	"wilddough/internal/server/session"
	"wilddough/internal/server/store"
)

// SetupRouter creates and configures the echo router with all routes and middleware.
func SetupRouter(handler *Handler, tokens *auth.Tokens, sessions *session.Manager, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())

	// Last-resort handler: unmatched routes and uncaught errors become
	// structured responses and analytics events, never leaked internals.
	e.HTTPErrorHandler = errorHandler(handler)

	// Rate limiter on the login endpoint only
	loginLimiter := NewRateLimiter(cfg.LoginRateRPS, cfg.LoginRateBurst)

	requireAdmin := RequireAdmin(tokens, sessions)

	// Health
	e.GET("/health", handler.HandleHealth)

	// Public storefront
	e.GET("/api/gallery", handler.HandleGallery)
	e.GET("/api/images", handler.HandleImageList)
	e.POST("/api/images/:filename/view", handler.HandleImageView)
	e.POST("/api/analytics/track", handler.HandleTrack)
	e.POST("/api/orders", handler.HandleCreateOrder)
	e.GET("/api/orders/:orderId", handler.HandleGetOrder)
	e.POST("/api/contact", handler.HandleContact)

	// Admin
	e.POST("/api/admin/login", handler.HandleLogin, loginLimiter.Middleware())
	e.POST("/api/admin/logout", handler.HandleLogout, requireAdmin)
	e.POST("/api/admin/gallery/upload", handler.HandleUpload, requireAdmin)
	e.DELETE("/api/admin/gallery/:id", handler.HandleDeleteImage, requireAdmin)
	e.GET("/api/admin/analytics", handler.HandleAnalytics, requireAdmin)
	e.GET("/api/admin/orders", handler.HandleAdminOrders, requireAdmin)

	// Uploaded images served byte-for-byte from the upload directory
	e.Static("/uploads", cfg.UploadDir)

	return e
}

// errorHandler builds the catch-all echo error handler. Unmatched paths are
// recorded as route_not_found events; everything else is logged with request
// context, recorded as a server_error event, and answered with a generic 500.
func errorHandler(handler *Handler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound {
			handler.track(store.EventNotFound, map[string]string{
				"path":   c.Request().URL.Path,
				"method": c.Request().Method,
			}, c)
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
			return
		}

		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			_ = c.JSON(httpErr.Code, echo.Map{"error": http.StatusText(httpErr.Code)})
			return
		}

		slog.Error("unhandled error",
			"error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"ip", c.RealIP(),
		)
		handler.track(store.EventServerError, map[string]string{
			"path":   c.Request().URL.Path,
			"method": c.Request().Method,
		}, c)
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
