package handler

import (
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/stripe/webhook のHTTP。
// 署名検証があるので生のボディをそのまま渡す
type WebhookHandler struct {
	uc *usecase.WebhookUsecase
}

// DI
func NewWebhookHandler(uc *usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/stripe/webhook", h.handle)
}

func (h *WebhookHandler) handle(c echo.Context) error {
	//ボディは大きくても64KBまで
	body := http.MaxBytesReader(c.Response(), c.Request().Body, 65536)
	payload, err := io.ReadAll(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if sig == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing stripe-signature header"})
	}

	if err := h.uc.HandleEvent(c.Request().Context(), payload, sig); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
