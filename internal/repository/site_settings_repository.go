package repository

import (
	"context"

	"app/internal/domain/model"
)

// サイトフラグ（購入停止など）の読み書きの約束。
type SiteSettingsRepository interface {
	//設定行を取得。無ければデフォルト値で作る
	Get(ctx context.Context) (model.SiteSettings, error)
	SetPurchasingPaused(ctx context.Context, paused bool) error
}
