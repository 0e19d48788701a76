package usecase

import (
	"context"
	"net/http"
	"sync"
	"time"

	repo "app/internal/repository"
)

// SiteSettingsUsecaseは購入停止フラグの読み書き。
// 読み側はTTL付きでキャッシュするので、checkoutのたびにDBへは行かない。
// TTLの間は古い値が見えることがある（仕様として許容）
type SiteSettingsUsecase struct {
	settingsRepo repo.SiteSettingsRepository
	ttl          time.Duration

	mu        sync.Mutex
	cached    bool
	paused    bool
	fetchedAt time.Time
}

// DI
func NewSiteSettingsUsecase(settingsRepo repo.SiteSettingsRepository, ttl time.Duration) *SiteSettingsUsecase {
	return &SiteSettingsUsecase{
		settingsRepo: settingsRepo,
		ttl:          ttl,
	}
}

type SiteFlagsOutput struct {
	PurchasingPaused bool `json:"purchasing_paused"`
}

// PurchasingPausedはキャッシュ済みの値を返す。期限切れならDBから引き直す
func (u *SiteSettingsUsecase) PurchasingPaused(ctx context.Context) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now()
	if u.cached && now.Sub(u.fetchedAt) < u.ttl {
		return u.paused, nil
	}

	s, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cached = true
	u.paused = s.PurchasingPaused
	u.fetchedAt = now
	return u.paused, nil
}

func (u *SiteSettingsUsecase) GetFlags(ctx context.Context) (SiteFlagsOutput, error) {
	paused, err := u.PurchasingPaused(ctx)
	if err != nil {
		return SiteFlagsOutput{}, err
	}
	return SiteFlagsOutput{PurchasingPaused: paused}, nil
}

// AdminSetPurchasingPausedは管理者だけが呼ぶ。書いたらキャッシュも即更新
func (u *SiteSettingsUsecase) AdminSetPurchasingPaused(ctx context.Context, adminUserID int64, paused bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.settingsRepo.SetPurchasingPaused(ctx, paused); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.mu.Lock()
	u.cached = true
	u.paused = paused
	u.fetchedAt = time.Now()
	u.mu.Unlock()

	return nil
}
