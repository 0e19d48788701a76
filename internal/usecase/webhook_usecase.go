package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/downloadtoken"
	"app/internal/mailer"
	"app/internal/payment"
	repo "app/internal/repository"
)

type WebhookUsecase struct {
	tx       repo.TransactionManager
	gateway  payment.Gateway
	mailer   mailer.Mailer
	signer   *downloadtoken.Signer
	baseURL  string
	shopName string
	logger   *slog.Logger
}

// DI
func NewWebhookUsecase(
	tx repo.TransactionManager,
	gateway payment.Gateway,
	m mailer.Mailer,
	signer *downloadtoken.Signer,
	baseURL string,
	shopName string,
	logger *slog.Logger,
) *WebhookUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookUsecase{
		tx:       tx,
		gateway:  gateway,
		mailer:   m,
		signer:   signer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		shopName: shopName,
		logger:   logger,
	}
}

// 注文確定後のメール送信に必要な分だけ持つ
type fanoutItem struct {
	ProductID  int64
	Name       string
	Quantity   int64
	Size       string
	IsPattern  bool
	PatternURL string
}

// HandleEventはwebhookの本体。
// 署名NG・ペイロード不正だけがエラーで、注文が保存できたら
// その後のメール失敗では決してエラーを返さない（再配送で二重注文になるため）
func (u *WebhookUsecase) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := u.gateway.ParseEvent(payload, sigHeader)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	switch ev := event.(type) {
	case payment.CheckoutCompletedEvent:
		return u.processCheckoutCompleted(ctx, ev)
	case payment.IgnoredEvent:
		//ACKだけ返す（返さないとプロバイダが再送してくる）
		u.logger.Info("webhook event ignored", slog.String("type", ev.Type))
		return nil
	default:
		return nil
	}
}

func (u *WebhookUsecase) processCheckoutCompleted(ctx context.Context, ev payment.CheckoutCompletedEvent) error {
	email := strings.ToLower(strings.TrimSpace(ev.CustomerEmail))
	rawCart := ev.Metadata[metaKeyRawCart]
	if email == "" || rawCart == "" {
		return NewHTTPError(http.StatusBadRequest, "missing required metadata")
	}

	name := ev.Metadata[metaKeyCustomerName]
	if name == "" {
		name = "Unknown"
	}

	var cart []metaCartLine
	if err := json.Unmarshal([]byte(rawCart), &cart); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid cart format")
	}
	if len(cart) == 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid cart format")
	}

	var (
		created bool
		orderID int64
		total   int64
		fanout  []fanoutItem
	)

	//注文＋明細はひとつのトランザクション。決済セッションIDが冪等キー
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, found, err := r.Orders().FindBySessionID(ctx, ev.SessionID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//同じイベントの再配送。何もせずACK
			return nil
		}

		ids := make([]int64, 0, len(cart))
		for _, line := range cart {
			ids = append(ids, line.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		now := time.Now()
		items := make([]model.OrderItem, 0, len(cart))
		total = 0
		fanout = fanout[:0]

		for _, line := range cart {
			p, ok := byID[line.ProductID]

			//セッション作成時のスナップショット価格を優先。
			//古いセッション（スナップショット無し）は現在価格で埋める
			unitPrice := line.UnitPrice
			if unitPrice <= 0 && ok {
				unitPrice = p.Price
			}

			productName := "Product"
			if ok {
				productName = p.Name
			}

			items = append(items, model.OrderItem{
				ProductID:           line.ProductID,
				ProductNameSnapshot: productName,
				UnitPriceSnapshot:   unitPrice,
				Quantity:            line.Quantity,
				Size:                line.Size,
				CreatedAt:           now,
			})
			total += unitPrice * line.Quantity

			fanout = append(fanout, fanoutItem{
				ProductID:  line.ProductID,
				Name:       productName,
				Quantity:   line.Quantity,
				Size:       line.Size,
				IsPattern:  ok && p.IsPattern,
				PatternURL: p.PatternURL,
			})
		}

		//会員ならuser_idを紐付ける。いなければゲスト注文
		var userID *int64
		user, err := r.Users().FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if user != nil {
			userID = &user.ID
		}

		orderID, err = r.Orders().Create(ctx, model.Order{
			CustomerEmail:   email,
			CustomerName:    name,
			UserID:          userID,
			Status:          model.OrderStatusPaid,
			IsPaid:          true,
			TotalPrice:      total,
			StripeSessionID: ev.SessionID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			//同時配送でユニーク制約に弾かれた場合はもう一度探して既存扱いにする
			_, found2, err2 := r.Orders().FindBySessionID(ctx, ev.SessionID)
			if err2 == nil && found2 {
				return nil
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created = true
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//再配送だった場合はメールも送り直さない
	if !created {
		u.logger.Info("duplicate webhook delivery, order already exists",
			slog.String("session_id", ev.SessionID))
		return nil
	}

	//ここから先は失敗しても注文はもう確定している。
	//ログに残して飲み込む（エラーを返すとプロバイダが再送して二重注文になる）
	u.sendConfirmation(orderID, email, name, total, fanout)
	u.sendPatternLinks(orderID, email, fanout)

	return nil
}

func (u *WebhookUsecase) sendConfirmation(orderID int64, email string, name string, total int64, items []fanoutItem) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your order #%d has been received and is being processed.\n\n", orderID)
	b.WriteString("Order details:\n")
	for _, it := range items {
		if it.Size != "" {
			fmt.Fprintf(&b, "  %s x%d (Size: %s)\n", it.Name, it.Quantity, it.Size)
		} else {
			fmt.Fprintf(&b, "  %s x%d\n", it.Name, it.Quantity)
		}
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n\n", float64(total)/100)
	b.WriteString("You will receive another email when your order ships or is ready for download.\n\n")
	fmt.Fprintf(&b, "Thank you!\n%s\n", u.shopName)

	subject := fmt.Sprintf("Order Confirmation - %s", u.shopName)
	if err := u.mailer.Send(email, subject, b.String()); err != nil {
		u.logger.Error("failed to send confirmation email",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()))
		return
	}
	u.logger.Info("order confirmation email sent", slog.Int64("order_id", orderID))
}

// 型紙商品ごとに署名付きダウンロードリンクをメールする。
// 1通失敗しても残りは送る
func (u *WebhookUsecase) sendPatternLinks(orderID int64, email string, items []fanoutItem) {
	now := time.Now()
	for _, it := range items {
		if !it.IsPattern || it.PatternURL == "" {
			continue
		}

		token, err := u.signer.Mint(downloadtoken.Claims{
			OrderID:   orderID,
			ProductID: it.ProductID,
			Email:     email,
		}, now)
		if err != nil {
			u.logger.Error("failed to mint download token",
				slog.Int64("order_id", orderID),
				slog.Int64("product_id", it.ProductID),
				slog.String("error", err.Error()))
			continue
		}

		link := u.baseURL + "/api/pattern-download?token=" + url.QueryEscape(token)
		days := int(u.signer.TTL().Hours() / 24)

		var b strings.Builder
		fmt.Fprintf(&b, "Your sewing pattern \"%s\" is ready to download:\n\n%s\n\n", it.Name, link)
		fmt.Fprintf(&b, "The link expires in %d days.\n\nThank you!\n%s\n", days, u.shopName)

		subject := fmt.Sprintf("Your Sewing Pattern: %s", it.Name)
		if err := u.mailer.Send(email, subject, b.String()); err != nil {
			u.logger.Error("failed to send pattern download email",
				slog.Int64("order_id", orderID),
				slog.Int64("product_id", it.ProductID),
				slog.String("error", err.Error()))
			continue
		}
		u.logger.Info("pattern download email sent",
			slog.Int64("order_id", orderID),
			slog.Int64("product_id", it.ProductID))
	}
}
