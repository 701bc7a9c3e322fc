package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/spf13/viper"
)

type AuthTokenWrapper struct {
	jwt.StandardClaims
	Secret string `json:"secret"`
}

func GenerateAuthToken(token *AuthTokenWrapper) (string, error) {
	if token.ExpiresAt == 0 {
		token.ExpiresAt = time.Now().Add(24 * time.Hour).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token).
		SignedString([]byte(viper.GetString(constants.ViperSecretKey)))
	if err != nil {
		return "", fmt.Errorf("SignedString: %w", err)
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	token, err := jwt.ParseWithClaims(raw, &AuthTokenWrapper{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString(constants.ViperSecretKey)), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnauthorized, err.Error())
	}

	claims, ok := token.Claims.(*AuthTokenWrapper)
	if !ok || !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	return claims, nil
}
