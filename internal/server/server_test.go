package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"interu/internal/cache"
	"interu/internal/config"
	"interu/internal/models"
	"interu/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	mr  *miniredis.Miniredis
}

func newTestServer(t *testing.T, rawFlags string) *testServer {
	t.Helper()
	cfg := testutil.TestConfig()
	cfg.FeatureFlags = rawFlags
	db := testutil.NewDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { cache.SetClient(nil) })

	return &testServer{srv: srv, app: srv.NewApp(), db: db, cfg: cfg, mr: mr}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func (ts *testServer) claims(userID uint) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": ts.cfg.JWTIssuer,
		"aud": ts.cfg.JWTAudience,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": uuid.NewString(),
	}
}

func (ts *testServer) token(t *testing.T, userID uint) string {
	return signToken(t, ts.cfg.JWTSecret, ts.claims(userID))
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, "")

	resp := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ts.mr.Close()
	resp = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestReadinessWithoutRedis(t *testing.T) {
	cfg := testutil.TestConfig()
	srv, err := NewServerWithDeps(cfg, testutil.NewDB(t), nil)
	require.NoError(t, err)

	resp, err := srv.NewApp().Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")

	wrongIssuer := ts.claims(user.ID)
	wrongIssuer["iss"] = "someone-else"
	expired := ts.claims(user.ID)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noExpiry := ts.claims(user.ID)
	delete(noExpiry, "exp")
	badSubject := ts.claims(user.ID)
	badSubject["sub"] = "not-a-number"

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage", "not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "another-secret-with-enough-length-xx", ts.claims(user.ID)), http.StatusUnauthorized},
		{"wrong issuer", signToken(t, ts.cfg.JWTSecret, wrongIssuer), http.StatusUnauthorized},
		{"expired", signToken(t, ts.cfg.JWTSecret, expired), http.StatusUnauthorized},
		{"no expiry", signToken(t, ts.cfg.JWTSecret, noExpiry), http.StatusUnauthorized},
		{"bad subject", signToken(t, ts.cfg.JWTSecret, badSubject), http.StatusUnauthorized},
		{"valid", ts.token(t, user.ID), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/chats", tt.token, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "alice")
	token := ts.token(t, user.ID)

	resp := ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/chats", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errBody := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, "Token has been revoked", errBody.Error)

	// A fresh token for the same identity still works.
	resp = ts.do(t, http.MethodGet, "/api/chats", ts.token(t, user.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicFeedNeedsNoToken(t *testing.T) {
	ts := newTestServer(t, "")
	owner := testutil.CreateUser(t, ts.db, "owner")
	testutil.CreatePost(t, ts.db, owner.ID, "Go for calculus")

	resp := ts.do(t, http.MethodGet, "/api/posts?skill=go", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := decode[[]models.SkillPost](t, resp)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go for calculus", posts[0].Title)

	resp = ts.do(t, http.MethodGet, "/api/posts/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExchangeFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, "")
	author := testutil.CreateUser(t, ts.db, "author")
	respondent := testutil.CreateUser(t, ts.db, "respondent")
	aTok, bTok := ts.token(t, author.ID), ts.token(t, respondent.ID)

	// Posting requires a profile with offered skills.
	resp := ts.do(t, http.MethodPost, "/api/posts", aTok, CreatePostRequest{
		Title: "Guitar for Go", Description: "Weekly sessions", SoughtSkills: []string{"Go"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "offered_skills", decode[models.ErrorResponse](t, resp).Field)

	resp = ts.do(t, http.MethodPost, "/api/profile", aTok, ProfileRequest{
		Alias: "author_1", FirstName: "Ana", OfferedSkills: []string{"Guitar"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/posts", aTok, CreatePostRequest{
		Title: "Guitar for Go", Description: "Weekly sessions", SoughtSkills: []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[models.SkillPost](t, resp)
	assert.Equal(t, []string{"guitar"}, post.OfferedSkills)

	resp = ts.do(t, http.MethodPost, "/api/chats", aTok, OpenChatRequest{PostID: post.ID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "authors cannot open a chat on their own post")

	resp = ts.do(t, http.MethodPost, "/api/chats", bTok, OpenChatRequest{PostID: post.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	chat := decode[models.ExchangeChat](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/messages", bTok, SendMessageRequest{ChatID: chat.ID, Body: "hi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/notifications/unread-count", aTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, decode[map[string]int64](t, resp)["unread"])

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/chats/%d/complete", chat.ID), bTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "only the author completes")

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/chats/%d/complete", chat.ID), aTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.ExchangeChat](t, resp).Completed)

	resp = ts.do(t, http.MethodPost, "/api/ratings", bTok, SubmitRatingRequest{ChatID: chat.ID, Score: 6})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "score", decode[models.ErrorResponse](t, resp).Field)

	resp = ts.do(t, http.MethodPost, "/api/ratings", bTok, SubmitRatingRequest{ChatID: chat.ID, Score: 5, Comment: "great"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ratings", bTok, SubmitRatingRequest{ChatID: chat.ID, Score: 4})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/notifications", aTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Notification](t, resp)
	require.Len(t, notes, 3)
	assert.Equal(t, models.NotificationChatRated, notes[0].Kind)

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/notifications/%d", notes[0].ID), bTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/notifications/mark-all", aTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, decode[map[string]int64](t, resp)["marked"])

	resp = ts.do(t, http.MethodPost, "/api/notifications/mark-all", aTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatAccessOverHTTP(t *testing.T) {
	ts := newTestServer(t, "")
	author := testutil.CreateUser(t, ts.db, "author")
	respondent := testutil.CreateUser(t, ts.db, "respondent")
	stranger := testutil.CreateUser(t, ts.db, "stranger")
	post := testutil.CreatePost(t, ts.db, author.ID, "Go for calculus")

	resp := ts.do(t, http.MethodPost, "/api/chats", ts.token(t, respondent.ID), OpenChatRequest{PostID: post.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	chat := decode[models.ExchangeChat](t, resp)

	strangerTok := ts.token(t, stranger.ID)
	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/messages", strangerTok, SendMessageRequest{ChatID: chat.ID, Body: "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, ts.db.Model(&models.ChatMessage{}).Where("chat_id = ?", chat.ID).Count(&count).Error)
	assert.Zero(t, count)

	resp = ts.do(t, http.MethodGet, "/api/chats/abc", strangerTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/chats/9999", strangerTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/chats", strangerTok, OpenChatRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "post_id", decode[models.ErrorResponse](t, resp).Field)
}

func TestHideReportOverHTTP(t *testing.T) {
	ts := newTestServer(t, "")
	owner := testutil.CreateUser(t, ts.db, "owner")
	reporter := testutil.CreateUser(t, ts.db, "reporter")
	moderator := testutil.CreateModerator(t, ts.db, "moderator")
	post := testutil.CreatePost(t, ts.db, owner.ID, "Suspicious offer")
	ownerTok, reporterTok, modTok := ts.token(t, owner.ID), ts.token(t, reporter.ID), ts.token(t, moderator.ID)

	// Warm the post cache so the hide has to invalidate it.
	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), reporterTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/reports", reporterTok, FileReportRequest{PostID: post.ID, Reason: "spam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	report := decode[models.Report](t, resp)
	assert.Equal(t, models.ReportPending, report.Status)

	resp = ts.do(t, http.MethodGet, "/api/reports", reporterTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/reports?status=closed", modTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/reports?status=pending", modTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Report](t, resp), 1)

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/reports/%d", report.ID), reporterTok, ResolveReportRequest{Action: "hide"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/reports/%d", report.ID), modTok, ResolveReportRequest{Action: "hide"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[models.Report](t, resp)
	assert.Equal(t, models.ReportApproved, resolved.Status)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), reporterTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), ownerTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.PostWithdrawn, decode[models.SkillPost](t, resp).Visibility)

	resp = ts.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.SkillPost](t, resp))
}

func TestFeatureFlagsRequireModerator(t *testing.T) {
	ts := newTestServer(t, "rating_requires_completion=on")
	user := testutil.CreateUser(t, ts.db, "user")
	moderator := testutil.CreateModerator(t, ts.db, "moderator")

	resp := ts.do(t, http.MethodGet, "/api/admin/feature-flags", ts.token(t, user.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/admin/feature-flags", ts.token(t, moderator.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	flags := decode[map[string]map[string]bool](t, resp)["flags"]
	assert.True(t, flags["rating_requires_completion"])
	assert.False(t, flags["report_resolve_once"])
}

func TestInvalidBodyIsBadRequest(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/ratings", bytes.NewBufferString("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+ts.token(t, user.ID))
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decode[models.ErrorResponse](t, resp).Error)
}

func TestGetNotifications_UnpagedByDefault(t *testing.T) {
	ts := newTestServer(t, "")
	user := testutil.CreateUser(t, ts.db, "inbox")
	notes := make([]models.Notification, 30)
	for i := range notes {
		notes[i] = models.Notification{UserID: user.ID, Kind: models.NotificationNewMessage, Body: "hello"}
	}
	require.NoError(t, ts.db.Create(&notes).Error)
	tok := ts.token(t, user.ID)

	resp := ts.do(t, http.MethodGet, "/api/notifications", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Notification](t, resp), 30)

	resp = ts.do(t, http.MethodGet, "/api/notifications?limit=5&offset=27", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Notification](t, resp), 3)
}
