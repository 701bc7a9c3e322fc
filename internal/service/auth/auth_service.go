package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/utils"
)

const AdminTokenTTL = 24 * time.Hour

type Service struct {
	secret string
}

func NewService(secret string) *Service {
	return &Service{secret: secret}
}

// LoginAdmin выдает токен для cookie secret_token, если секрет совпадает с настроенным.
func (svc *Service) LoginAdmin(ctx context.Context, secret string) (string, error) {
	if svc.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(svc.secret)) != 1 {
		logger.Warn(ctx, "admin login: wrong secret")
		return "", constants.ErrUnauthorized
	}

	token := &utils.AuthTokenWrapper{Secret: secret}
	token.ExpiresAt = time.Now().Add(AdminTokenTTL).Unix()

	authToken, err := utils.GenerateAuthToken(token)
	if err != nil {
		return "", err
	}

	logger.Debugf(ctx, "admin login: token issued")
	return authToken, nil
}

// Authorize проверяет токен из cookie: подпись, срок и совпадение секрета.
func (svc *Service) Authorize(ctx context.Context, raw string) error {
	token, err := utils.ParseAuthToken(raw)
	if err != nil {
		logger.Debugf(ctx, "admin token rejected: %s", err.Error())
		return err
	}

	if svc.secret == "" || subtle.ConstantTimeCompare([]byte(token.Secret), []byte(svc.secret)) != 1 {
		return constants.ErrUnauthorized
	}

	return nil
}
