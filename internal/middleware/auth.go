package middleware

import (
	"net/http"
	"strings"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"

	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

type ActorParser interface {
	ParseActor(tokenString string) (models.Actor, error)
}

// StaffAuth проверяет Bearer-токен и кладет субъекта в контекст запроса.
// Маршруты портала этим middleware не оборачиваются: клиент анонимен.
func StaffAuth(parser ActorParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}

			actor, err := parser.ParseActor(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFromContext возвращает субъекта запроса, анонимного если токена не было.
func ActorFromContext(c echo.Context) models.Actor {
	if actor, ok := c.Get(actorContextKey).(models.Actor); ok {
		return actor
	}
	return models.Actor{IsAnonymous: true}
}
