package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const serviceIssuer = "edu-verify"

var ErrInvalidToken = errors.New("invalid token")

// ServiceTokenManager signs and checks the bearer tokens chat adapters present to the API.
type ServiceTokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewServiceTokenManager(secret string, ttl time.Duration) *ServiceTokenManager {
	return &ServiceTokenManager{Secret: []byte(secret), TTL: ttl}
}

type Claims struct {
	Adapter string `json:"adp"`
	jwt.RegisteredClaims
}

// Generate issues a token for the named adapter. A zero TTL issues a token without expiry.
func (m *ServiceTokenManager) Generate(adapter string) (string, time.Time, error) {
	now := time.Now()
	claims := &Claims{
		Adapter: adapter,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   serviceIssuer,
			Subject:  adapter,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var exp time.Time
	if m.TTL > 0 {
		exp = now.Add(m.TTL)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *ServiceTokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithIssuer(serviceIssuer))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Adapter == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
