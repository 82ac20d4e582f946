package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/exploitz3r0/xq/internal/app/repository"
	"github.com/exploitz3r0/xq/internal/app/service"
	"github.com/exploitz3r0/xq/internal/http/view"
)

// RedirectDeps groups dependencies required by the redirect handler.
type RedirectDeps struct {
	Logger *zap.Logger
	Links  service.LinkService
}

// RedirectHandler implements the redirect and preview flows.
type RedirectHandler struct {
	logger *zap.Logger
	links  service.LinkService
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger: logger,
		links:  deps.Links,
	}
}

// Register wires the catch-all redirect route onto the provided router.
// Must be registered after every static route.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/:code", h.Resolve)
}

// Resolve handles GET /:code. A trailing "+" on the path segment switches to
// preview mode: the destination and click count are shown without redirecting
// and without counting a click.
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")
	preview := strings.HasSuffix(code, "+")
	if preview {
		code = strings.TrimSuffix(code, "+")
	}
	if code == "" {
		return c.Status(fiber.StatusNotFound).SendString("URL not found")
	}

	ctx := c.UserContext()

	link, err := h.links.Resolve(ctx, code, preview)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("URL not found")
		}
		h.logger.Error("failed to resolve link", zap.Error(err), zap.String("code", code))
		return c.Status(fiber.StatusInternalServerError).SendString("internal server error")
	}

	if preview {
		html, err := view.RenderPreviewPage(view.PreviewPageData{
			Code:    link.ShortCode,
			LongURL: link.LongURL,
			Clicks:  link.Clicks,
		})
		if err != nil {
			h.logger.Error("failed to render preview page", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("internal server error")
		}
		return c.Type("html", "utf-8").SendString(html)
	}

	h.logger.Debug("redirecting short link", zap.String("code", code), zap.String("target", link.LongURL))
	return c.Redirect(link.LongURL, fiber.StatusFound)
}
