package handler

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/exploitz3r0/xq/internal/app/model"
	"github.com/exploitz3r0/xq/internal/app/repository"
	"github.com/exploitz3r0/xq/internal/app/service"
	"github.com/exploitz3r0/xq/internal/http/view"
)

const expirationDateLayout = "2006-01-02"

// WebDeps groups dependencies required by the landing-page handlers.
type WebDeps struct {
	Logger      *zap.Logger
	Links       service.LinkService
	RecentLimit int
}

// WebHandler implements the landing page, link creation and deletion flows.
type WebHandler struct {
	logger      *zap.Logger
	links       service.LinkService
	validate    *validator.Validate
	recentLimit int
}

// NewWebHandler creates a web handler with the provided dependencies.
func NewWebHandler(deps WebDeps) *WebHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := deps.RecentLimit
	if limit <= 0 {
		limit = 10
	}
	return &WebHandler{
		logger:      logger,
		links:       deps.Links,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		recentLimit: limit,
	}
}

// Register wires landing-page routes onto the provided router.
func (h *WebHandler) Register(router fiber.Router) {
	router.Get("/", h.Index)
	router.Post("/", h.Create)
	router.Post("/delete", h.Delete)
	router.Get("/health", h.Health)
}

// Health is a simple liveness endpoint so we know the service is running.
func (h *WebHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "xq",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// createLinkForm is the POST / form binding.
type createLinkForm struct {
	LongURL        string `form:"long_url" validate:"required"`
	CustomCode     string `form:"custom_code" validate:"omitempty,max=64"`
	ExpirationDate string `form:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
}

// Index handles GET / and renders the creation form plus recent history.
// Expired links are swept before the history is read.
func (h *WebHandler) Index(c *fiber.Ctx) error {
	shortURL := ""
	if created := c.Query("created"); created != "" {
		// Base URL comes from the request itself so the same deployment can
		// serve any hostname.
		shortURL = c.BaseURL() + "/" + created
	}
	return h.renderLanding(c, fiber.StatusOK, shortURL, "")
}

// Create handles POST / and redirects to /?created=<code> on success.
func (h *WebHandler) Create(c *fiber.Ctx) error {
	var form createLinkForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderLanding(c, fiber.StatusBadRequest, "", "Invalid form submission.")
	}

	if err := h.validate.Struct(form); err != nil {
		return h.renderLanding(c, fiber.StatusBadRequest, "", validationMessage(err))
	}

	var expiresAt *time.Time
	if form.ExpirationDate != "" {
		t, err := time.Parse(expirationDateLayout, form.ExpirationDate)
		if err != nil {
			return h.renderLanding(c, fiber.StatusBadRequest, "", "Expiration date must be a valid date (YYYY-MM-DD).")
		}
		expiresAt = &t
	}

	link, err := h.links.CreateLink(h.ctx(c), service.CreateLinkInput{
		LongURL:    form.LongURL,
		CustomCode: form.CustomCode,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCodeTaken) {
			return h.renderLanding(c, fiber.StatusOK, "", "Custom code already exists.")
		}
		h.logger.Error("failed to create link", zap.Error(err))
		return h.renderLanding(c, fiber.StatusInternalServerError, "", "Something went wrong, please try again.")
	}

	return c.Redirect("/?created="+url.QueryEscape(link.ShortCode), fiber.StatusFound)
}

// Delete handles POST /delete. Deleting an absent code still succeeds.
func (h *WebHandler) Delete(c *fiber.Ctx) error {
	code := c.FormValue("short_code")
	if code != "" {
		if err := h.links.DeleteLink(h.ctx(c), code); err != nil {
			h.logger.Error("failed to delete link", zap.Error(err), zap.String("code", code))
		}
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (h *WebHandler) renderLanding(c *fiber.Ctx, status int, shortURL, errMsg string) error {
	history, err := h.links.RecentLinks(h.ctx(c), h.recentLimit)
	if err != nil {
		h.logger.Error("failed to list recent links", zap.Error(err))
		history = nil
	}

	html, err := view.RenderLandingPage(view.LandingPageData{
		ShortURL: shortURL,
		Error:    errMsg,
		History:  landingHistory(history),
	})
	if err != nil {
		h.logger.Error("failed to render landing page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal server error")
	}

	return c.Status(status).Type("html", "utf-8").SendString(html)
}

// validationMessage maps the first failing form field to its user-facing
// error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].StructField() {
		case "LongURL":
			return "A long URL is required."
		case "CustomCode":
			return "Custom code is too long (64 characters max)."
		case "ExpirationDate":
			return "Expiration date must be a valid date (YYYY-MM-DD)."
		}
	}
	return "Invalid form submission."
}

func landingHistory(links []model.Link) []view.LandingLink {
	rows := make([]view.LandingLink, len(links))
	for i, link := range links {
		expires := "Never"
		if link.ExpiresAt != nil {
			expires = link.ExpiresAt.Format(expirationDateLayout)
		}
		rows[i] = view.LandingLink{
			Code:    link.ShortCode,
			Clicks:  link.Clicks,
			Expires: expires,
		}
	}
	return rows
}

func (h *WebHandler) ctx(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
