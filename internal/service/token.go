package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/engagement-backend/internal/models"
)

// TokenManager проверяет access токены и выпускает их для доверенных клиентов.
// Выдача токенов пользователям происходит во внешнем сервисе учётных записей.
type TokenManager struct {
	accessSecret []byte
	accessTTL    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(accessSecret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret: []byte(accessSecret),
		accessTTL:    accessTTL,
	}
}

// Issue выпускает access токен для участника.
func (m *TokenManager) Issue(principal models.Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  principal.ID.String(),
		"role": principal.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// ParseAccess извлекает участника из access токена.
// Токен без sub или с неизвестной ролью отклоняется.
func (m *TokenManager) ParseAccess(token string) (models.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, err
	}
	if !parsed.Valid {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return models.Principal{}, fmt.Errorf("token: некорректный sub: %w", err)
	}

	role, _ := claims["role"].(string)
	if _, ok := models.ValidRoles[role]; !ok {
		return models.Principal{}, fmt.Errorf("token: неизвестная роль %q", role)
	}

	return models.Principal{ID: userID, Role: role}, nil
}
