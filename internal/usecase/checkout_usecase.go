package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"app/internal/payment"
	repo "app/internal/repository"
)

// カート1行。クライアントから来るのはID・数量・サイズだけで、
// 名前や価格は必ずDBから引き直す（改ざん対策）
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

// 決済セッションのmetadataに入れるカート。
// unitPriceはセッション作成時点のスナップショットで、webhook側はこれで合計を出す
type metaCartLine struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
}

const (
	metaKeyCustomerName = "customerName"
	metaKeyRawCart      = "rawCart"
)

type CheckoutUsecase struct {
	productRepo repo.ProductRepository
	settings    *SiteSettingsUsecase
	gateway     payment.Gateway
	baseURL     string
}

// DI
func NewCheckoutUsecase(
	productRepo repo.ProductRepository,
	settings *SiteSettingsUsecase,
	gateway payment.Gateway,
	baseURL string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		productRepo: productRepo,
		settings:    settings,
		gateway:     gateway,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

type CreateSessionInput struct {
	Cart []CartLine
	Name string
}

// ログイン済みユーザーの情報（JWTから）
type CustomerIdentity struct {
	Email string
	Name  string
}

type CreateSessionOutput struct {
	URL string `json:"url"`
}

// CreateSessionはカートを検証して決済セッションを作る。
// この時点ではまだ注文は作らない（webhookが来てから作る）
func (u *CheckoutUsecase) CreateSession(ctx context.Context, customer CustomerIdentity, in CreateSessionInput) (CreateSessionOutput, error) {
	//購入停止中は何も作らず503
	paused, err := u.settings.PurchasingPaused(ctx)
	if err != nil {
		return CreateSessionOutput{}, err
	}
	if paused {
		return CreateSessionOutput{}, NewHTTPError(http.StatusServiceUnavailable, "purchasing is temporarily paused")
	}

	if customer.Email == "" {
		return CreateSessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Cart) == 0 {
		return CreateSessionOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//数量は全行チェックしてから進む（1行でもダメなら全部却下）
	for _, line := range in.Cart {
		if line.Quantity < 1 || line.Quantity > 99 {
			return CreateSessionOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("invalid quantity for product %d", line.ProductID))
		}
	}

	lineItems := make([]payment.LineItem, 0, len(in.Cart))
	metaCart := make([]metaCartLine, 0, len(in.Cart))

	for _, line := range in.Cart {
		p, err := u.productRepo.FindByID(ctx, line.ProductID)
		if err == repo.ErrNotFound {
			return CreateSessionOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("product %d is invalid", line.ProductID))
		}
		if err != nil {
			return CreateSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return CreateSessionOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("product %d is invalid", line.ProductID))
		}

		//名前・価格・画像はDBの値だけを使う
		lineItems = append(lineItems, payment.LineItem{
			Name:       p.Name,
			UnitAmount: p.Price,
			Quantity:   line.Quantity,
			ImageURL:   p.PrimaryImageURL(),
		})
		metaCart = append(metaCart, metaCartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Size:      line.Size,
			UnitPrice: p.Price,
		})
	}

	rawCart, err := json.Marshal(metaCart)
	if err != nil {
		return CreateSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = customer.Name
	}

	url, err := u.gateway.CreateCheckoutSession(ctx, payment.CreateSessionInput{
		CustomerEmail: customer.Email,
		LineItems:     lineItems,
		Metadata: map[string]string{
			metaKeyCustomerName: name,
			metaKeyRawCart:      string(rawCart),
		},
		SuccessURL: u.baseURL + "/checkout/success",
		CancelURL:  u.baseURL + "/cart",
	})
	if err != nil {
		//決済プロバイダの生のエラーはクライアントに出さない
		return CreateSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "something went wrong")
	}

	return CreateSessionOutput{URL: url}, nil
}
