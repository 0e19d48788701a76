package usecase_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/downloadtoken"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type webhookDeps struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	products   *ProductRepoMock
	users      *UserRepoMock
	gateway    *GatewayMock
	mailer     *MailerMock
	signer     *downloadtoken.Signer
}

func newWebhookDeps() webhookDeps {
	d := webhookDeps{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		products:   new(ProductRepoMock),
		users:      new(UserRepoMock),
		gateway:    new(GatewayMock),
		mailer:     new(MailerMock),
		signer:     downloadtoken.NewSigner("test-secret", 48*time.Hour),
	}
	d.tx.Repos = &TxReposMock{
		orders:     d.orders,
		orderItems: d.orderItems,
		products:   d.products,
		users:      d.users,
	}
	return d
}

func (d webhookDeps) usecase() *usecase.WebhookUsecase {
	return usecase.NewWebhookUsecase(d.tx, d.gateway, d.mailer, d.signer,
		"https://shop.example.com", "Test Atelier", discardLogger())
}

func completedEvent(sessionID string, email string, rawCart string) payment.CheckoutCompletedEvent {
	return payment.CheckoutCompletedEvent{
		SessionID:     sessionID,
		CustomerEmail: email,
		Metadata: map[string]string{
			"customerName": "Alice",
			"rawCart":      rawCart,
		},
	}
}

const cartOneDress = `[{"productId":1,"quantity":2,"size":"M","unitPrice":12000}]`

// =====================
// HandleEvent tests
// =====================

func TestWebhookUsecase_HandleEvent_InvalidSignature(t *testing.T) {
	d := newWebhookDeps()
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).Return(nil, payment.ErrInvalidSignature)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "bad-sig")

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid signature")
	d.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestWebhookUsecase_HandleEvent_IgnoredEventAcked(t *testing.T) {
	d := newWebhookDeps()
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(payment.IgnoredEvent{Type: "invoice.paid"}, nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	d.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	d.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_HandleEvent_MissingMetadata(t *testing.T) {
	d := newWebhookDeps()
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(payment.CheckoutCompletedEvent{SessionID: "cs_1", CustomerEmail: "a@example.com"}, nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assertErrContains(t, err, "missing required metadata")
}

func TestWebhookUsecase_HandleEvent_MalformedCart(t *testing.T) {
	d := newWebhookDeps()
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_1", "a@example.com", "not-json"), nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assertErrContains(t, err, "invalid cart format")
}

func TestWebhookUsecase_HandleEvent_CreatesOrderWithSnapshotPrice(t *testing.T) {
	d := newWebhookDeps()

	// DB上の現在価格は15000だがスナップショットの12000で計上する
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_1", "Alice@Example.com", cartOneDress), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_1").Return(model.Order{}, false, nil)
	d.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return([]model.Product{{ID: 1, Name: "Linen Dress", Price: 15000, IsActive: true}}, nil)
	d.users.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, repo.ErrUserNotFound)

	var createdOrder model.Order
	d.orders.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			createdOrder = args.Get(1).(model.Order)
		}).
		Return(int64(42), nil)

	var createdItems []model.OrderItem
	d.orderItems.On("CreateBulk", mock.Anything, int64(42), mock.Anything).
		Run(func(args mock.Arguments) {
			createdItems = args.Get(2).([]model.OrderItem)
		}).
		Return(nil)

	d.mailer.On("Send", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", createdOrder.CustomerEmail)
	assert.Equal(t, "Alice", createdOrder.CustomerName)
	assert.Equal(t, model.OrderStatusPaid, createdOrder.Status)
	assert.True(t, createdOrder.IsPaid)
	assert.Equal(t, int64(24000), createdOrder.TotalPrice)
	assert.Equal(t, "cs_1", createdOrder.StripeSessionID)
	assert.Nil(t, createdOrder.UserID)

	if assert.Equal(t, 1, len(createdItems)) {
		assert.Equal(t, int64(12000), createdItems[0].UnitPriceSnapshot)
		assert.Equal(t, "Linen Dress", createdItems[0].ProductNameSnapshot)
		assert.Equal(t, "M", createdItems[0].Size)
	}

	d.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestWebhookUsecase_HandleEvent_LinksOrderToRegisteredUser(t *testing.T) {
	d := newWebhookDeps()

	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_2", "bob@example.com", cartOneDress), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_2").Return(model.Order{}, false, nil)
	d.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return([]model.Product{{ID: 1, Name: "Linen Dress", Price: 12000, IsActive: true}}, nil)
	d.users.On("FindByEmail", mock.Anything, "bob@example.com").
		Return(&model.User{ID: 77, Email: "bob@example.com"}, nil)

	var createdOrder model.Order
	d.orders.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			createdOrder = args.Get(1).(model.Order)
		}).
		Return(int64(43), nil)
	d.orderItems.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil)
	d.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	if assert.NotNil(t, createdOrder.UserID) {
		assert.Equal(t, int64(77), *createdOrder.UserID)
	}
}

func TestWebhookUsecase_HandleEvent_DuplicateDeliveryIsNoop(t *testing.T) {
	d := newWebhookDeps()

	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_1", "a@example.com", cartOneDress), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_1").
		Return(model.Order{ID: 42, StripeSessionID: "cs_1"}, true, nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	// ACKは返すが注文もメールも作らない
	assert.NoError(t, err)
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	d.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_HandleEvent_InsertConflictTreatedAsDuplicate(t *testing.T) {
	d := newWebhookDeps()

	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_1", "a@example.com", cartOneDress), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)

	// 1回目のlookupでは無いが、同時配送が先にinsertしてユニーク制約で弾かれる
	d.orders.On("FindBySessionID", mock.Anything, "cs_1").
		Return(model.Order{}, false, nil).Once()
	d.products.On("FindByIDs", mock.Anything, []int64{1}).
		Return([]model.Product{{ID: 1, Name: "Linen Dress", Price: 12000}}, nil)
	d.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repo.ErrUserNotFound)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	d.orders.On("FindBySessionID", mock.Anything, "cs_1").
		Return(model.Order{ID: 42, StripeSessionID: "cs_1"}, true, nil).Once()

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	d.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_HandleEvent_EmailFailureDoesNotFailWebhook(t *testing.T) {
	d := newWebhookDeps()

	cart := `[{"productId":1,"quantity":1,"unitPrice":900},{"productId":2,"quantity":1,"unitPrice":1100}]`
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_3", "a@example.com", cart), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_3").Return(model.Order{}, false, nil)
	d.products.On("FindByIDs", mock.Anything, []int64{1, 2}).
		Return([]model.Product{
			{ID: 1, Name: "Skirt Pattern", Price: 900, IsPattern: true, PatternURL: "https://cdn.example.com/p1.pdf"},
			{ID: 2, Name: "Top Pattern", Price: 1100, IsPattern: true, PatternURL: "https://cdn.example.com/p2.pdf"},
		}, nil)
	d.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repo.ErrUserNotFound)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(50), nil)
	d.orderItems.On("CreateBulk", mock.Anything, int64(50), mock.Anything).Return(nil)

	// 全部の送信が失敗してもwebhookは成功のまま
	d.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	// 確認メール1通＋型紙リンク2通、失敗しても全部試す
	d.mailer.AssertNumberOfCalls(t, "Send", 3)
}

func TestWebhookUsecase_HandleEvent_PatternLinksOnlyForPatternProducts(t *testing.T) {
	d := newWebhookDeps()

	cart := `[{"productId":1,"quantity":1,"unitPrice":12000},{"productId":2,"quantity":1,"unitPrice":900}]`
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_4", "a@example.com", cart), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_4").Return(model.Order{}, false, nil)
	d.products.On("FindByIDs", mock.Anything, []int64{1, 2}).
		Return([]model.Product{
			{ID: 1, Name: "Linen Dress", Price: 12000},
			{ID: 2, Name: "Skirt Pattern", Price: 900, IsPattern: true, PatternURL: "https://cdn.example.com/p2.pdf"},
		}, nil)
	d.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repo.ErrUserNotFound)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(51), nil)
	d.orderItems.On("CreateBulk", mock.Anything, int64(51), mock.Anything).Return(nil)

	var patternBodies []string
	d.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			subject := args.String(1)
			if strings.HasPrefix(subject, "Your Sewing Pattern") {
				patternBodies = append(patternBodies, args.String(2))
			}
		}).
		Return(nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")

	assert.NoError(t, err)
	// 確認メール＋型紙メール1通（物販にはリンクを送らない）
	d.mailer.AssertNumberOfCalls(t, "Send", 2)
	if assert.Equal(t, 1, len(patternBodies)) {
		assert.Contains(t, patternBodies[0], "https://shop.example.com/api/pattern-download?token=")
	}
}

func TestWebhookUsecase_HandleEvent_MintedTokenResolvesForBuyer(t *testing.T) {
	d := newWebhookDeps()

	cart := `[{"productId":2,"quantity":1,"unitPrice":900}]`
	d.gateway.On("ParseEvent", mock.Anything, mock.Anything).
		Return(completedEvent("cs_5", "a@example.com", cart), nil)
	d.tx.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindBySessionID", mock.Anything, "cs_5").Return(model.Order{}, false, nil)
	d.products.On("FindByIDs", mock.Anything, []int64{2}).
		Return([]model.Product{{ID: 2, Name: "Skirt Pattern", Price: 900, IsPattern: true, PatternURL: "https://cdn.example.com/p2.pdf"}}, nil)
	d.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, repo.ErrUserNotFound)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(60), nil)
	d.orderItems.On("CreateBulk", mock.Anything, int64(60), mock.Anything).Return(nil)

	var patternLink string
	d.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body := args.String(2)
			if i := strings.Index(body, "?token="); i >= 0 {
				patternLink = body[i+len("?token="):]
				if j := strings.IndexAny(patternLink, "\n "); j >= 0 {
					patternLink = patternLink[:j]
				}
			}
		}).
		Return(nil)

	err := d.usecase().HandleEvent(context.Background(), []byte("{}"), "sig")
	assert.NoError(t, err)

	// メールに入れたトークンは正しい注文・商品・メールを claims に持つ
	if assert.NotEmpty(t, patternLink) {
		claims, err := d.signer.Verify(patternLink, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, int64(60), claims.OrderID)
		assert.Equal(t, int64(2), claims.ProductID)
		assert.Equal(t, "a@example.com", claims.Email)
	}
}
