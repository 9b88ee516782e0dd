package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// IdentifyRequester validates the bearer token, if present, and places
// the requester's id and role in the request context. A missing or bad
// token leaves the request anonymous; each handler decides whether an
// anonymous caller is acceptable.
func (m *AuthMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyRequester")
		defer span.End()

		if token := bearerToken(c); token != "" {
			session, err := m.auth.Validate(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "token rejected"))
			} else {
				ctx = context.WithValue(ctx, domain.RequesterIDCtxKey, session.UserID)
				ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, session.Role)
				span.SetAttributes(attribute.String("RequesterId", session.UserID.String()))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	split := strings.SplitN(header, " ", 2)
	if len(split) != 2 || !strings.EqualFold(split[0], "Bearer") {
		return ""
	}
	return split[1]
}
