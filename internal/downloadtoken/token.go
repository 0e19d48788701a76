package downloadtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// 型紙ダウンロードリンクに埋める内容。
// トークンを持っていること自体が認可なので、ログイン不要で使える
type Claims struct {
	OrderID   int64
	ProductID int64
	Email     string
}

var ErrInvalidToken = errors.New("invalid or expired token")

type Signer struct {
	secret []byte
	ttl    time.Duration
}

// DI
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) TTL() time.Duration { return s.ttl }

// Mintは署名付きトークンを発行する。期限はnow+TTL
func (s *Signer) Mint(c Claims, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"order_id":   c.OrderID,
		"product_id": c.ProductID,
		"email":      c.Email,
		"iat":        now.Unix(),
		"exp":        now.Add(s.ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verifyは署名と期限を確認してクレームを返す。
// 期限はexpちょうどまで有効、それを過ぎたら無効
func (s *Signer) Verify(tokenString string, now time.Time) (Claims, error) {
	//期限は自前で判定するのでライブラリの検証は署名だけにする
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	exp, err := claimInt64(claims["exp"])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if now.After(time.Unix(exp, 0)) {
		return Claims{}, ErrInvalidToken
	}

	orderID, err := claimInt64(claims["order_id"])
	if err != nil || orderID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	productID, err := claimInt64(claims["product_id"])
	if err != nil || productID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		OrderID:   orderID,
		ProductID: productID,
		Email:     email,
	}, nil
}

func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	default:
		return 0, errors.New("invalid number claim")
	}
}
