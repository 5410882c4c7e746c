package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmine/internal/config"
	"carmine/internal/middleware"
	"carmine/internal/service"
	"carmine/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSessionConfig = config.SessionConfig{
	TTL:           24 * time.Hour,
	RememberMeTTL: 720 * time.Hour,
	CookieName:    "carmine_session",
}

type userRouter struct {
	router      chi.Router
	users       *mockUserRepository
	userService service.UserService
	sessions    *session.Manager
}

func newUserRouter(t *testing.T) *userRouter {
	t.Helper()

	users := newMockUserRepository()
	tokens := session.NewRefreshTokenStore(session.NewMemoryStore())
	userService := service.NewUserService(users, tokens, config.JWTConfig{Secret: "test-secret"})
	sessions := session.NewManager(session.NewMemoryStore(), testSessionConfig)

	r := chi.NewRouter()
	NewUserHandler(userService, sessions, testSessionConfig, zap.NewNop()).RegisterRoutes(r,
		middleware.AuthMiddleware("test-secret", zap.NewNop()),
		middleware.SessionMiddleware(sessions, testSessionConfig, zap.NewNop()),
	)

	_, err := userService.Register(context.Background(), "driver@example.com", "Password123", "Dana", "Driver")
	require.NoError(t, err)

	return &userRouter{router: r, users: users, userService: userService, sessions: sessions}
}

func (u *userRouter) login(t *testing.T, rememberMe bool) (*LoginResponse, *http.Cookie) {
	t.Helper()

	body, _ := json.Marshal(LoginRequest{Email: "driver@example.com", Password: "Password123", RememberMe: rememberMe})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	u.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return &resp, cookies[0]
}

func TestUserHandler_LoginBindsSession(t *testing.T) {
	u := newUserRouter(t)

	resp, cookie := u.login(t, false)

	sess, err := u.sessions.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sess.UserID)
	assert.Equal(t, "user", sess.Role)
	assert.False(t, sess.RememberMe)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestUserHandler_LoginRememberMeExtendsSession(t *testing.T) {
	u := newUserRouter(t)

	_, cookie := u.login(t, true)

	sess, err := u.sessions.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.True(t, sess.RememberMe)
	assert.Equal(t, int((720 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestUserHandler_LoginWrongPassword(t *testing.T) {
	u := newUserRouter(t)

	body, _ := json.Marshal(LoginRequest{Email: "driver@example.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	u.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_LogoutClearsSessionUser(t *testing.T) {
	u := newUserRouter(t)
	resp, cookie := u.login(t, true)

	body, _ := json.Marshal(RefreshRequest{RefreshToken: resp.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	u.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sess, err := u.sessions.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Empty(t, sess.UserID)
	assert.Empty(t, sess.Role)
	assert.False(t, sess.RememberMe)

	_, err = u.userService.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestUserHandler_ProfileOfDeletedUser(t *testing.T) {
	u := newUserRouter(t)
	resp, _ := u.login(t, false)
	delete(u.users.users, "driver@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	w := httptest.NewRecorder()
	u.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_DuplicateRegistration(t *testing.T) {
	u := newUserRouter(t)

	body, _ := json.Marshal(RegisterRequest{
		Email:     "driver@example.com",
		Password:  "Password123",
		FirstName: "Dana",
		LastName:  "Driver",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	u.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
