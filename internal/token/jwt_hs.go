package token

import (
	"context"
	"errors"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string
	Role   service.Role
	Exp    time.Time
}

// HSVerifier проверяет HS256 токены витрины. Токены storefront несут
// идентификатор в "id", токены OrderHub-формата в "sub".
type HSVerifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewHSVerifier(secret, issuer, audience string) *HSVerifier {
	return &HSVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

type customClaims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (p *HSVerifier) ParseAndValidate(_ context.Context, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	if p.audience != "" {
		opts = append(opts, jwt.WithAudience(p.audience))
	}

	parsed, err := jwt.ParseWithClaims(raw, &customClaims{}, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	cc, ok := parsed.Claims.(*customClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	uid := cc.UserID
	if uid == "" {
		uid = cc.Subject
	}
	if uid == "" {
		return nil, ErrInvalidToken
	}

	role := service.RoleCustomer
	if cc.Role == string(service.RoleAdmin) {
		role = service.RoleAdmin
	}

	out := &Claims{UserID: uid, Role: role}
	if cc.ExpiresAt != nil {
		out.Exp = cc.ExpiresAt.Time
	}
	return out, nil
}

// Sign выпускает токен; нужен тестам и локальной отладке, выдача токенов пользователям не здесь.
func (p *HSVerifier) Sign(userID string, role service.Role, ttl time.Duration) (string, error) {
	now := p.now()
	claims := customClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if p.audience != "" {
		claims.Audience = []string{p.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
