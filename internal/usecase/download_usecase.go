package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/downloadtoken"
	repo "app/internal/repository"
)

type DownloadUsecase struct {
	signer        *downloadtoken.Signer
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	productRepo   repo.ProductRepository
}

// DI
func NewDownloadUsecase(
	signer *downloadtoken.Signer,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	productRepo repo.ProductRepository,
) *DownloadUsecase {
	return &DownloadUsecase{
		signer:        signer,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
	}
}

// Resolveはトークンを検証して型紙ファイルのURLを返す。
// 読み取り専用なので期限内なら何度呼んでもよい
func (u *DownloadUsecase) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", NewHTTPError(http.StatusBadRequest, "missing token")
	}

	//なぜ無効かは返さない（推測の手がかりになる）
	claims, err := u.signer.Verify(token, now)
	if err != nil {
		return "", NewHTTPError(http.StatusForbidden, "invalid or expired token")
	}

	order, err := u.orderRepo.FindByID(ctx, claims.OrderID)
	if err == repo.ErrNotFound {
		return "", NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//トークンの使い回し対策。注文のメールと一致しなければ拒否
	if !strings.EqualFold(order.CustomerEmail, claims.Email) {
		return "", NewHTTPError(http.StatusForbidden, "pattern not found in order")
	}

	items, err := u.orderItemRepo.ListByOrderID(ctx, claims.OrderID)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//この注文にこの商品が含まれているか
	var inOrder bool
	for _, it := range items {
		if it.ProductID == claims.ProductID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		return "", NewHTTPError(http.StatusForbidden, "pattern not found in order")
	}

	p, err := u.productRepo.FindByID(ctx, claims.ProductID)
	if err == repo.ErrNotFound {
		return "", NewHTTPError(http.StatusForbidden, "pattern not found in order")
	}
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsPattern || p.PatternURL == "" {
		return "", NewHTTPError(http.StatusForbidden, "pattern not found in order")
	}

	return p.PatternURL, nil
}
