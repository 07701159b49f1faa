package utils

import (
	"errors"
	"strconv"
	"time"

	"pawatasty/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	tokenIssuer     = "pawatasty-api"
)

// TokenSecrets signs access and refresh tokens with separate keys, so a
// refresh token is never accepted as an access token.
type TokenSecrets struct {
	Access  string
	Refresh string
}

// GenerateTokens generates an access token and a refresh token for the given user claims.
func GenerateTokens(claims *models.UserClaims, secrets TokenSecrets) (accessToken string, refreshToken string, err error) {
	if secrets.Access == "" || secrets.Refresh == "" {
		return "", "", errors.New("token secrets not configured")
	}

	now := time.Now()
	accessToken, err = sign(claims, now, AccessTokenTTL, secrets.Access)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = sign(claims, now, RefreshTokenTTL, secrets.Refresh)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func sign(claims *models.UserClaims, now time.Time, ttl time.Duration, secret string) (string, error) {
	c := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		},
		UserID:       claims.UserID,
		Email:        claims.Email,
		Tier:         claims.Tier,
		TokenVersion: claims.TokenVersion,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT token string.
// It returns the token if valid, or an error if something is wrong.
func ParseToken(tokenStr, secret string) (*jwt.Token, *models.UserClaims, error) {
	if secret == "" {
		return nil, nil, errors.New("token secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, nil, errors.New("invalid token claims")
	}

	return token, claims, nil
}
