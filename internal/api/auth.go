package api

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"pos-service/internal/entity"
	"pos-service/internal/service"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	authService Authenticator
}

func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges operator credentials for a bearer token --> /login
func (h *AuthHandler) Login(c echo.Context) error {
	login := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}

	if err := c.Bind(&login); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	token, err := h.authService.Login(c.Request().Context(), login.Username, login.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// JWTMiddleware validates the bearer token and stores it under "user".
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.OperatorClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
		},
	})
}

// RequireRole rejects operators whose token does not carry the given role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := operatorFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing or invalid token", Code: "UNAUTHORIZED"})
			}
			if claims.Role != role {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "operator is not allowed to perform this action", Code: "FORBIDDEN"})
			}
			return next(c)
		}
	}
}

func operatorFromContext(c echo.Context) (*service.OperatorClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*service.OperatorClaims)
	return claims, ok
}

// AdminOnly gates catalog writes.
var AdminOnly = RequireRole(entity.RoleAdmin)
