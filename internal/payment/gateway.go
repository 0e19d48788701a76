package payment

import (
	"context"
	"errors"
)

// 署名検証に失敗（偽物のwebhook）
var ErrInvalidSignature = errors.New("invalid webhook signature")

// 決済画面に渡す1行分。値は必ずDBから引いたものを入れる
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ImageURL   string
}

type CreateSessionInput struct {
	CustomerEmail string
	LineItems     []LineItem
	//完了イベントでそのまま返してもらう付帯情報（カートの中身など）
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// Eventはwebhookのペイロードを種類ごとに分けたもの。
// 知らない種類はIgnoredEventになり、呼び出し側は何もしない
type Event interface {
	isEvent()
}

// checkout.session.completed
type CheckoutCompletedEvent struct {
	SessionID     string
	CustomerEmail string
	Metadata      map[string]string
}

func (CheckoutCompletedEvent) isEvent() {}

// 処理対象外のイベント。ACKだけ返す
type IgnoredEvent struct {
	Type string
}

func (IgnoredEvent) isEvent() {}

// 決済プロバイダの約束。
type Gateway interface {
	//決済セッションを作ってリダイレクトURLを返す
	CreateCheckoutSession(ctx context.Context, in CreateSessionInput) (string, error)
	//署名を検証してからイベントをデコードする
	ParseEvent(payload []byte, sigHeader string) (Event, error)
}
