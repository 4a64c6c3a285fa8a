package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"poker_web/internal/models"
)

// Claims 是 session token 的內容，只用來關聯 session 與使用者
type Claims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	jwt.StandardClaims
}

// TokenIssuer 簽發與驗證 session token
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateToken 生成一個新的 session token
func (i *TokenIssuer) GenerateToken(session models.Session) (string, error) {
	nowTime := i.now()

	claims := Claims{
		SessionID: session.ID,
		UserID:    session.UserID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: nowTime.Unix(),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = nowTime.Add(i.ttl).Unix()
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(i.secret)
}

// ParseToken 解析和驗證 session token。
// 簽章正確但已過期時同時回傳 claims 與 ErrExpiredToken；其餘失敗都視為格式錯誤。
func (i *TokenIssuer) ParseToken(token string) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors == jwt.ValidationErrorExpired && tokenClaims != nil {
			if claims, ok := tokenClaims.Claims.(*Claims); ok && claims.SessionID != "" {
				return claims, fmt.Errorf("%w: %v", models.ErrExpiredToken, err)
			}
		}
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedToken, err)
	}

	claims, ok := tokenClaims.Claims.(*Claims)
	if !ok || !tokenClaims.Valid || claims.SessionID == "" {
		return nil, models.ErrMalformedToken
	}
	return claims, nil
}
