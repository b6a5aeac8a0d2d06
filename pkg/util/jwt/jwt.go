// Package jwt 签发和校验管理员会话 Token
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "tutor_match"

// ErrNotInitialized 未调用 Init 就签发或校验
var ErrNotInitialized = errors.New("jwt: secret not initialized")

type options struct {
	secret []byte
	expiry time.Duration
}

var opts *options

// Init 设置签名密钥和会话有效期（分钟）
func Init(secret string, expiryMinutes int) {
	opts = &options{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

// Claims 管理员会话声明
// Surface 记录登录入口（desktop / mobile），TokenID 便于日志追踪单个会话
type Claims struct {
	Surface string `json:"surface"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// GenerateAdminToken 为通过口令校验的管理员签发 Token，返回 Token 与过期时间
func GenerateAdminToken(surface string) (string, time.Time, error) {
	if opts == nil || len(opts.secret) == 0 {
		return "", time.Time{}, ErrNotInitialized
	}
	now := time.Now()
	expiresAt := now.Add(opts.expiry)
	claims := Claims{
		Surface: surface,
		TokenID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   "admin",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(opts.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析并验证 Token，只接受 HS256 且 subject 为 admin 的 Token
func ParseToken(tokenString string) (*Claims, error) {
	if opts == nil || len(opts.secret) == 0 {
		return nil, ErrNotInitialized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return opts.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithSubject("admin"))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
