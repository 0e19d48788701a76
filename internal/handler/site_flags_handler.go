package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入停止フラグのHTTP。
// 公開GETはフロントが購入ボタンを消すのに使う
type SiteFlagsHandler struct {
	uc *usecase.SiteSettingsUsecase
}

// DI
func NewSiteFlagsHandler(uc *usecase.SiteSettingsUsecase) *SiteFlagsHandler {
	return &SiteFlagsHandler{uc: uc}
}

type SiteFlagsRequest struct {
	PurchasingPaused *bool `json:"purchasing_paused"`
}

func (h *SiteFlagsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/api/site-flags", h.get)

	g := e.Group("/api/admin/site-flags")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())
	g.POST("", h.set)
}

func (h *SiteFlagsHandler) get(c echo.Context) error {
	out, err := h.uc.GetFlags(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SiteFlagsHandler) set(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SiteFlagsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	//boolは省略と区別するためポインタで受ける
	if req.PurchasingPaused == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input"})
	}

	if err := h.uc.AdminSetPurchasingPaused(c.Request().Context(), userID, *req.PurchasingPaused); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
