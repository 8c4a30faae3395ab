package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"wilddough/internal/server/store"
)

// loginRequest is the body accepted by the admin login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles POST /api/admin/login.
// Verifies the static admin credentials, registers a server-side session,
// and issues a bearer token embedding the session id.
func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	if req.Username != h.cfg.AdminUsername ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)) != nil {
		h.track(store.EventLoginFailed, map[string]string{
			"username":  req.Username,
			"userAgent": c.Request().UserAgent(),
		}, c)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	sessionID, err := h.sessions.Create(req.Username, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}

	token, err := h.tokens.Issue(req.Username, sessionID)
	if err != nil {
		h.sessions.Revoke(sessionID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}

	h.track(store.EventLoginOK, map[string]string{"username": req.Username}, c)

	return c.JSON(http.StatusOK, echo.Map{
		"token":     token,
		"expiresIn": int64(h.tokens.TTL().Seconds()),
	})
}

// HandleLogout handles POST /api/admin/logout.
func (h *Handler) HandleLogout(c echo.Context) error {
	if sessionID, ok := c.Get(sessionKey).(string); ok {
		h.sessions.Revoke(sessionID)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// HandleUpload handles POST /api/admin/gallery/upload.
// Accepts a multipart form with an "image" file field.
func (h *Handler) HandleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "image file is required (use form field 'image')",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read uploaded file"})
	}
	defer src.Close()

	uploadedBy, _ := c.Get(usernameKey).(string)

	img, err := h.gallery.Upload(
		fileHeader.Filename,
		src,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		uploadedBy,
	)
	if err != nil {
		h.track(store.EventUploadFailed, map[string]string{
			"filename": fileHeader.Filename,
			"reason":   err.Error(),
		}, c)
		return mapGalleryError(c, err)
	}

	h.track(store.EventUploadOK, map[string]string{"filename": img.Filename}, c)

	return c.JSON(http.StatusCreated, echo.Map{"image": img})
}

// HandleDeleteImage handles DELETE /api/admin/gallery/:id.
func (h *Handler) HandleDeleteImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	}

	img, err := h.gallery.Delete(id)
	if err != nil {
		return mapGalleryError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"deletedImage": img})
}

// HandleAnalytics handles GET /api/admin/analytics.
func (h *Handler) HandleAnalytics(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"stats": h.store.Stats()})
}

// HandleAdminOrders handles GET /api/admin/orders?limit=.
func (h *Handler) HandleAdminOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	return c.JSON(http.StatusOK, echo.Map{
		"orders":      h.store.RecentOrders(limit),
		"totalOrders": h.store.OrderCount(),
	})
}
