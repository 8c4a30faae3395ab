package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"wilddough/internal/server/auth"
	"wilddough/internal/server/config"
	"wilddough/internal/server/gallery"
	"wilddough/internal/server/mailer"
	"wilddough/internal/server/session"
	"wilddough/internal/server/store"
)

// Handler contains the HTTP handlers for the storefront API.
type Handler struct {
	gallery  *gallery.Service
	store    *store.Store
	sessions *session.Manager
	tokens   *auth.Tokens
	mail     mailer.Mailer
	cfg      *config.Config
	started  time.Time
}

// NewHandler creates a handler with its service dependencies.
func NewHandler(g *gallery.Service, st *store.Store, sessions *session.Manager, tokens *auth.Tokens, mail mailer.Mailer, cfg *config.Config) *Handler {
	return &Handler{
		gallery:  g,
		store:    st,
		sessions: sessions,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
		started:  time.Now(),
	}
}

// pagination describes one page of the gallery listing.
type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HandleGallery handles GET /api/gallery.
// Returns the public image list, newest first, optionally paginated via
// ?page= and ?limit=.
func (h *Handler) HandleGallery(c echo.Context) error {
	images := h.gallery.Public()

	pageParam := c.QueryParam("page")
	limitParam := c.QueryParam("limit")
	if pageParam == "" && limitParam == "" {
		return c.JSON(http.StatusOK, echo.Map{"images": images})
	}

	page, _ := strconv.Atoi(pageParam)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitParam)
	if limit < 1 {
		limit = 20
	}

	total := len(images)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, echo.Map{
		"images": images[start:end],
		"pagination": pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// HandleImageList handles GET /api/images.
// Returns the bare stored filenames in insertion order.
func (h *Handler) HandleImageList(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Filenames())
}

// HandleImageView handles POST /api/images/:filename/view.
// An unknown filename reports zero views without error, so a view tick racing
// a delete stays harmless.
func (h *Handler) HandleImageView(c echo.Context) error {
	filename := c.Param("filename")
	views := h.gallery.View(filename)

	if views > 0 {
		h.track(store.EventImageView, map[string]string{"filename": filename}, c)
	}

	return c.JSON(http.StatusOK, echo.Map{"views": views})
}

// trackRequest is the body accepted by the public tracking endpoint.
type trackRequest struct {
	EventType string            `json:"eventType"`
	Data      map[string]string `json:"data"`
}

// HandleTrack handles POST /api/analytics/track.
func (h *Handler) HandleTrack(c echo.Context) error {
	var req trackRequest
	if err := c.Bind(&req); err != nil || req.EventType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventType is required"})
	}

	if req.Data == nil {
		req.Data = map[string]string{}
	}
	req.Data["ip"] = c.RealIP()
	req.Data["userAgent"] = c.Request().UserAgent()

	ev, err := h.store.TrackEvent(req.EventType, req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventType is required"})
	}

	return c.JSON(http.StatusOK, echo.Map{"eventId": ev.ID})
}

// HandleCreateOrder handles POST /api/orders.
// Accepts a multipart form with contact fields, an "items" JSON string, and
// an optional "referenceImage" file.
func (h *Handler) HandleCreateOrder(c echo.Context) error {
	input := store.OrderInput{
		CustomerName: c.FormValue("customerName"),
		Email:        c.FormValue("email"),
		Phone:        c.FormValue("phone"),
	}

	// All validation runs before anything touches disk, so a rejected
	// request leaves no orphaned file behind.
	if input.CustomerName == "" || input.Email == "" || input.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customerName, email and phone are required"})
	}

	if raw := c.FormValue("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Items); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items must be a JSON array of {name, price, quantity}"})
		}
	}

	// Optional customer reference photo; lands in the publicly served upload
	// directory, so it passes the same whitelist and size cap as gallery
	// uploads.
	if fileHeader, err := c.FormFile("referenceImage"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read reference image"})
		}
		defer src.Close()

		storedName, err := h.gallery.SaveReference(
			fileHeader.Filename,
			src,
			fileHeader.Size,
			fileHeader.Header.Get("Content-Type"),
		)
		if err != nil {
			return mapGalleryError(c, err)
		}
		input.ReferenceImage = storedName
	}

	order, err := h.store.AddOrder(input)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "customerName, email and phone are required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	ref := store.FormatOrderRef(order.ID)
	h.track(store.EventOrderPlaced, map[string]string{
		"orderId": ref,
		"amount":  fmt.Sprintf("%.2f", order.TotalAmount),
	}, c)

	mailer.Dispatch(h.mail,
		fmt.Sprintf("New order %s", ref),
		fmt.Sprintf("%s (%s, %s) placed an order totalling %.2f",
			order.CustomerName, order.Email, order.Phone, order.TotalAmount),
	)

	return c.JSON(http.StatusCreated, echo.Map{"orderId": ref})
}

// HandleGetOrder handles GET /api/orders/:orderId where orderId is the
// external reference ("WD0007").
func (h *Handler) HandleGetOrder(c echo.Context) error {
	order, err := h.store.OrderByRef(c.Param("orderId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order":   order,
		"orderId": store.FormatOrderRef(order.ID),
	})
}

// contactRequest is the body accepted by the contact form endpoint.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// HandleContact handles POST /api/contact.
func (h *Handler) HandleContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message are required"})
	}

	h.track(store.EventContact, map[string]string{"email": req.Email}, c)

	mailer.Dispatch(h.mail,
		fmt.Sprintf("Contact form: %s", req.Name),
		fmt.Sprintf("From %s <%s> (%s):\n%s", req.Name, req.Email, req.Phone, req.Message),
	)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"images":         h.store.ImageCount(),
		"orders":         h.store.OrderCount(),
		"events":         h.store.EventCount(),
	})
}

// track records an analytics event enriched with request provenance.
// Recording failures never affect the triggering request.
func (h *Handler) track(eventType string, data map[string]string, c echo.Context) {
	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["ip"]; !ok {
		data["ip"] = c.RealIP()
	}
	_, _ = h.store.TrackEvent(eventType, data)
}

// mapGalleryError translates gallery service errors into HTTP responses.
func mapGalleryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gallery.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	case errors.Is(err, gallery.ErrFileTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file exceeds maximum allowed size"})
	case errors.Is(err, gallery.ErrBadFileType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only jpeg, png, gif and webp images are allowed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
