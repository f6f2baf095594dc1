package server

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"interu/internal/cache"
	"interu/internal/middleware"
	"interu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// identity is what a validated bearer token resolves to.
type identity struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// parseToken validates an HMAC-signed token issued by the identity gateway.
func (s *Server) parseToken(tokenString string) (*identity, *models.AppError) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithAudience(s.config.JWTAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	id := &identity{UserID: uint(userID)}
	if jti, ok := claims["jti"].(string); ok {
		id.TokenID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired resolves the bearer token into the current identity. Revoked
// token ids are rejected; a Redis outage skips the revocation check.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		id, appErr := s.parseToken(tokenString)
		if appErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}

		if id.TokenID != "" {
			revoked, err := cache.IsRevoked(c.UserContext(), id.TokenID)
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", slog.String("error", err.Error()))
			} else if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", id.UserID)
		c.Locals("tokenID", id.TokenID)
		c.Locals("tokenExpiresAt", id.ExpiresAt)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, id.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ModeratorRequired rejects identities without the moderator capability.
// Must be placed after AuthRequired.
func (s *Server) ModeratorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := s.store.Users.IsModerator(c.UserContext(), currentUserID(c))
		if err != nil {
			return s.respondError(c, err)
		}
		if !ok {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Moderator capability required"))
		}
		return c.Next()
	}
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Description Blacklists the bearer token id until it expires
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("tokenID").(string)
	if jti == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token carries no id and cannot be revoked"))
	}

	ttl := time.Hour
	if exp, ok := c.Locals("tokenExpiresAt").(time.Time); ok && !exp.IsZero() {
		ttl = time.Until(exp)
	}
	if ttl <= 0 {
		return c.JSON(fiber.Map{"message": "Token already expired"})
	}

	if cache.GetClient() == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			&models.AppError{Code: models.CodeInternal, Message: "Token revocation is unavailable"})
	}
	if err := cache.Revoke(c.UserContext(), jti, ttl); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
