package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	config "github.com/phillip/chapter-directory-go/config"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
	issuer       = "chapter-directory"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"` // access or refresh
	jwt.RegisteredClaims
}

func GenerateTokenPair(cfg *config.Config, userID, email, role string) (accessToken, refreshToken string, err error) {
	now := time.Now()

	accessToken, err = sign(cfg.JWTSecret, newClaims(userID, email, role, TokenAccess, now, cfg.JWTAccessExpiry))
	if err != nil {
		return "", "", err
	}
	refreshToken, err = sign(cfg.JWTRefreshSecret, newClaims(userID, email, role, TokenRefresh, now, cfg.JWTRefreshExpiry))
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func ValidateAccessToken(cfg *config.Config, tokenString string) (*Claims, error) {
	return validate(cfg.JWTSecret, tokenString, TokenAccess)
}

func ValidateRefreshToken(cfg *config.Config, tokenString string) (*Claims, error) {
	return validate(cfg.JWTRefreshSecret, tokenString, TokenRefresh)
}

// RefreshTokens exchanges a valid refresh token for a new pair.
func RefreshTokens(cfg *config.Config, refreshToken string) (string, string, error) {
	claims, err := ValidateRefreshToken(cfg, refreshToken)
	if err != nil {
		return "", "", err
	}
	return GenerateTokenPair(cfg, claims.UserID, claims.Email, claims.Role)
}

func newClaims(userID, email, role, kind string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}
}

func sign(secret string, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func validate(secret, tokenString, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Type != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
