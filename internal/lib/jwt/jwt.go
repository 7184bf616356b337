package jwt

import (
	"errors"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// NewToken выпускает подписанный HS256 токен сотрудника.
func NewToken(user models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID
	claims["email"] = user.Email
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString([]byte(secret))
}

// ParseActor валидирует токен и возвращает субъекта запроса.
func ParseActor(tokenString, secret string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.Actor{IsAnonymous: true}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{IsAnonymous: true}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return models.Actor{IsAnonymous: true}, ErrInvalidToken
	}

	return models.Actor{Email: email}, nil
}
