package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"interu/internal/middleware"
	"interu/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError(param, "Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dest, writing a 400 on failure.
func (s *Server) parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "chatId" -> "chat ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// currentUserID returns the identity resolved by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// respondError writes err with the status its code maps to. Internal causes
// are logged and never leaked to the client.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		attrs := []any{slog.String("path", c.Path())}
		if appErr.Err != nil {
			attrs = append(attrs, slog.String("error", appErr.Err.Error()))
		}
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", attrs...)
	}
	return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
}
