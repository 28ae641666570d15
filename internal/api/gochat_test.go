package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/go-reelroom/internal/auth"
	"github.com/npezzotti/go-reelroom/internal/chatroom"
	"github.com/npezzotti/go-reelroom/internal/config"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/presence"
	"github.com/npezzotti/go-reelroom/internal/server"
	"github.com/npezzotti/go-reelroom/internal/stats"
	"github.com/npezzotti/go-reelroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("api-test-signing-key")

var testConfig = &config.Config{
	ServerAddr:     "localhost:8080",
	DatabaseDSN:    "dsn",
	SigningKey:     testSigningKey,
	AllowedOrigins: []string{"http://localhost:3000"},
}

func newTestApp(t *testing.T, db *database.MockGoChatRepository) *GoChatApp {
	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Return()
	su.On("Incr", mock.Anything).Return().Maybe()
	su.On("Decr", mock.Anything).Return().Maybe()

	logger := testutil.TestLogger(t)
	authenticator := auth.NewAuthenticator(testSigningKey, db, time.Hour)
	cs, err := server.NewChatServer(logger, db, authenticator, nil, presence.NewRegistry(), su)
	require.NoError(t, err, "failed to create chat server")

	return NewGoChatApp(
		http.NewServeMux(),
		logger,
		cs,
		db,
		chatroom.NewManager(logger, db, cs),
		authenticator,
		testConfig,
	)
}

func testToken(t *testing.T, userId int) string {
	token, err := auth.NewAuthenticator(testSigningKey, nil, time.Hour).IssueToken(userId)
	require.NoError(t, err)
	return token
}

// doRequest sends a request through the full handler chain. A string body is
// sent as is, anything else is JSON encoded. A non-empty token is sent as the
// session cookie.
func doRequest(t *testing.T, app *GoChatApp, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	buf := &bytes.Buffer{}
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})
	}

	rr := httptest.NewRecorder()
	app.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "expected a JSON body")
	return v
}

func assertApiError(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	assert.Equal(t, code, rr.Code)
	apiErr := decodeBody[ApiError](t, rr)
	assert.Equal(t, code, apiErr.StatusCode)
	assert.Equal(t, lower(http.StatusText(code)), apiErr.Message)
}

func TestNewGoChatApp(t *testing.T) {
	db := &database.MockGoChatRepository{}
	app := newTestApp(t, db)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.srv, "expected http server to be initialized")
	assert.NotNil(t, app.log, "expected logger to be set")
	assert.NotNil(t, app.cs, "expected chat server to be set")
	assert.NotNil(t, app.chatrooms, "expected chatroom manager to be set")
	assert.NotNil(t, app.auth, "expected authenticator to be set")
	assert.NotNil(t, app.generateShortId, "expected id generator to be set")
	assert.Equal(t, db, app.db, "expected db to be set")
	assert.Equal(t, testConfig.ServerAddr, app.srv.Addr, "expected server address to match config")
	assert.Equal(t, testConfig.AllowedOrigins, app.allowedOrigins)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, &database.MockGoChatRepository{})

	rr := doRequest(t, app, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
