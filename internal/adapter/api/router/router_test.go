package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baddelli/internal/adapter/api"
	"baddelli/internal/adapter/api/handler"
	"baddelli/internal/adapter/api/middleware"
	"baddelli/internal/domain/entity"
	"baddelli/internal/infrastructure/imaging"
	"baddelli/internal/infrastructure/ratelimit"
	"baddelli/internal/testutil/memstore"
	"baddelli/internal/usecase"
	"baddelli/pkg/errors"
	"baddelli/pkg/response"
)

// tokenVerifier accepts "token-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if uid, ok := strings.CutPrefix(token, "token-"); ok && uid != "" {
		return uid, nil
	}
	return "", errors.Unauthorized("bad token", nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	e     *echo.Echo
	items *memstore.ItemRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := memstore.NewClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	trades := memstore.NewTradeRepository(clock)
	messages := memstore.NewMessageRepository()
	items := memstore.NewItemRepository(clock)
	users := memstore.NewUserRepository(
		&entity.User{ID: "userA", DisplayName: "Amina"},
		&entity.User{ID: "userB", DisplayName: "Karim"},
	)

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ActionLogin: {PerMinute: 2},
	}, ratelimit.Limit{PerMinute: 100})
	names := usecase.NewCachedNameResolver(users, nil)

	handler.Setup(
		usecase.NewAuthUseCase(users, nil),
		usecase.NewUserUseCase(users, nil, names),
		usecase.NewItemUseCase(items, imaging.NewCompressor(800, 75), nil),
		usecase.NewTradeUseCase(trades, items, limiter),
		usecase.NewChatUseCase(trades, messages, names, limiter, 4),
		usecase.NewBadgeUseCase(trades, messages),
		names,
	)

	e := echo.New()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()
	Setup(e, middleware.NewAuthMiddleware(tokenVerifier{}), limiter)

	return &testServer{e: e, items: items}
}

func (s *testServer) do(t *testing.T, method, path, uid string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer token-"+uid)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec.Code, env
}

func (s *testServer) seedItem(t *testing.T, ownerID, ownerName, name string) *entity.Item {
	t.Helper()
	item := &entity.Item{Name: name, UserID: ownerID, UserName: ownerName}
	require.NoError(t, s.items.Create(context.Background(), item))
	return item
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/badges", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.CodeUnauthorized, env.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer nonsense")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTradeLifecycle(t *testing.T) {
	s := newTestServer(t)
	guitar := s.seedItem(t, "userA", "Amina", "Guitar")
	bike := s.seedItem(t, "userB", "Karim", "Bike")

	code, env := s.do(t, http.MethodPost, "/v1/trades", "userA", map[string]string{
		"requested_item_id": bike.ID,
		"offered_item_id":   guitar.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	var trade entity.TradeRequest
	require.NoError(t, json.Unmarshal(env.Data, &trade))
	assert.Equal(t, entity.TradeStatusPending, trade.Status)
	assert.Equal(t, "Amina", trade.RequesterName)

	code, env = s.do(t, http.MethodGet, "/v1/badges", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	var badges entity.Badges
	require.NoError(t, json.Unmarshal(env.Data, &badges))
	assert.Equal(t, 1, badges.PendingTrades)

	code, env = s.do(t, http.MethodPost, "/v1/trades/"+trade.ID+"/accept", "userA", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, errors.CodeForbidden, env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/v1/trades/"+trade.ID+"/chat", "userA", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodPost, "/v1/trades/"+trade.ID+"/accept", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	var accepted entity.TradeRequest
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	assert.Equal(t, trade.ID, accepted.ChatID)
	assert.Equal(t, []string{"userB", "userA"}, accepted.Participants)

	code, env = s.do(t, http.MethodPost, "/v1/trades/"+trade.ID+"/accept", "userB", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, errors.CodeInvalidTransition, env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/v1/trades/"+trade.ID+"/chat", "userA", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"chat_id":"`+trade.ID+`"}`, string(env.Data))
}

func TestChatFlow(t *testing.T) {
	s := newTestServer(t)
	guitar := s.seedItem(t, "userA", "Amina", "Guitar")
	bike := s.seedItem(t, "userB", "Karim", "Bike")

	_, env := s.do(t, http.MethodPost, "/v1/trades", "userA", map[string]string{
		"requested_item_id": bike.ID,
		"offered_item_id":   guitar.ID,
	})
	var trade entity.TradeRequest
	require.NoError(t, json.Unmarshal(env.Data, &trade))
	code, _ := s.do(t, http.MethodPost, "/v1/trades/"+trade.ID+"/accept", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	chatPath := "/v1/chats/" + trade.ID

	code, env = s.do(t, http.MethodPost, chatPath+"/messages", "userA", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errors.CodeValidation, env.Error.Code)

	code, _ = s.do(t, http.MethodPost, chatPath+"/messages", "userA", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(t, http.MethodGet, "/v1/chats", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Items []entity.ChatThread `json:"items"`
		Total int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Items[0].UnreadCount)
	assert.Equal(t, "Amina", list.Items[0].CounterpartName)

	code, env = s.do(t, http.MethodPut, chatPath+"/read", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"marked":1}`, string(env.Data))

	code, env = s.do(t, http.MethodGet, chatPath, "userB", nil)
	require.Equal(t, http.StatusOK, code)
	var view usecase.ThreadView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Zero(t, view.Thread.UnreadCount)
	require.Len(t, view.Sections, 1)
	assert.Len(t, view.Sections[0].Messages, 1)

	code, _ = s.do(t, http.MethodGet, chatPath, "userC", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestProposeValidation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/v1/trades", "userA", map[string]string{"offered_item_id": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errors.CodeValidation, env.Error.Code)

	code, _ = s.do(t, http.MethodPost, "/v1/trades", "userA", map[string]string{
		"requested_item_id": "missing",
		"offered_item_id":   "also-missing",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateAndListItems(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Guitar"))
	require.NoError(t, w.WriteField("category", "music"))
	require.NoError(t, w.WriteField("featured", "true"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/items", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer token-userA")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	s.seedItem(t, "userB", "Karim", "Bike")

	code, env := s.do(t, http.MethodGet, "/v1/items", "", nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Items []usecase.MarketItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Guitar", list.Items[0].Name)
	assert.Equal(t, "Amina", list.Items[0].UserName)

	code, env = s.do(t, http.MethodGet, "/v1/me/items", "userB", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Bike")
	assert.NotContains(t, string(env.Data), "Guitar")
}

func TestProfiles(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/users/me", "userA", nil)
	require.Equal(t, http.StatusOK, code)
	var me entity.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Amina", me.DisplayName)

	code, env = s.do(t, http.MethodGet, "/v1/users/userB", "userA", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":"userB","display_name":"Karim"}`, string(env.Data))

	code, env = s.do(t, http.MethodPatch, "/v1/users/me", "userA", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errors.CodeValidation, env.Error.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/nowhere", "userA", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.CodeNotFound, env.Error.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
