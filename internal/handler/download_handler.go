package handler

import (
	"net/http"
	"time"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/pattern-download のHTTP。
// メールのリンクから開くのでログインは要求しない（トークンが認可そのもの）
type DownloadHandler struct {
	uc *usecase.DownloadUsecase
}

// DI
func NewDownloadHandler(uc *usecase.DownloadUsecase) *DownloadHandler {
	return &DownloadHandler{uc: uc}
}

func (h *DownloadHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/pattern-download", h.download)
}

func (h *DownloadHandler) download(c echo.Context) error {
	token := c.QueryParam("token")

	url, err := h.uc.Resolve(c.Request().Context(), token, time.Now())
	if err != nil {
		return writeError(c, err)
	}

	return c.Redirect(http.StatusFound, url)
}
