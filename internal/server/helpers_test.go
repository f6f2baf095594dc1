package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"interu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"chatId", "chat ID"},
		{"reportedPostId", "reported post ID"},
		{"slug", "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=0&offset=-3", 20, 0},
		{"?limit=1000", maxPaginationLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 20)
				return nil
			})
			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/chats/:chatId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "chatId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/chats/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, raw := range []string{"abc", "0", "-1"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/chats/"+raw, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
		body := decode[models.ErrorResponse](t, resp)
		assert.Equal(t, "Invalid chat ID", body.Error)
		assert.Equal(t, "chatId", body.Field)
	}
}

func TestRespondError_MapsCodes(t *testing.T) {
	s := &Server{}
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{models.NewFieldError("score", "out of range"), http.StatusBadRequest, models.CodeInvalidRequest},
		{models.NewForbiddenError("no"), http.StatusForbidden, models.CodeForbidden},
		{models.NewNotFoundError("Chat", 1), http.StatusNotFound, models.CodeNotFound},
		{models.NewConflictError("dup"), http.StatusConflict, models.CodeConflict},
		{errors.New("db exploded"), http.StatusInternalServerError, models.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return s.respondError(c, tt.err) })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[models.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "db exploded")
		})
	}
}
