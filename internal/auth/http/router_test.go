package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vector-portal/backend/internal/auth/domain"
	authhttp "github.com/vector-portal/backend/internal/auth/http"
	authrepo "github.com/vector-portal/backend/internal/auth/repository"
	"github.com/vector-portal/backend/internal/auth/service"
	"github.com/vector-portal/backend/internal/common/clock"
	commoncrypto "github.com/vector-portal/backend/internal/common/crypto"
	"github.com/vector-portal/backend/internal/common/logger"
	"github.com/vector-portal/backend/internal/session"
)

// memUserRepo keeps users in a map so register/login flows can be exercised
// end to end without a database.
type memUserRepo struct {
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user domain.User) error {
	if _, ok := r.users[user.Username]; ok {
		return authrepo.ErrUsernameAlreadyExists
	}
	r.users[user.Username] = user
	return nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return domain.User{}, authrepo.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, authrepo.ErrUserNotFound
}

// fakeHasher avoids bcrypt cost in handler tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed_" + password, nil
}

func (fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed_"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type handlerEnv struct {
	handler http.Handler
	repo    *memUserRepo
	clk     *clock.MockClock
	store   *session.MemoryStore
}

func setupHandler(t *testing.T) *handlerEnv {
	t.Helper()

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	repo := newMemUserRepo()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	idGen := commoncrypto.NewUUIDGenerator()

	store := session.NewMemoryStore(clk)
	t.Cleanup(store.Close)

	sessions := session.NewManager(store, idGen, clk, time.Hour, log)
	auth := service.NewAuthService(repo, fakeHasher{}, idGen, clk, log)

	return &handlerEnv{
		handler: authhttp.NewHandler(auth, sessions, 5*time.Second, log),
		repo:    repo,
		clk:     clk,
		store:   store,
	}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *handlerEnv) registerAndLogin(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	creds := map[string]string{"username": username, "password": password}

	rec := e.do(t, http.MethodPost, "/api/auth/register", creds)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/auth/login", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}
	return cookie
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			return c
		}
	}
	return nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()

	var env struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	return env.Code, env.Message
}

func TestRegister_Success(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"password": "Str0ng!pass",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID == "" {
		t.Error("expected a non-empty user_id")
	}

	// Registration must not establish a session.
	if sessionCookie(rec) != nil {
		t.Error("register set a session cookie")
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	env := setupHandler(t)

	tests := []struct {
		name     string
		password string
		code     string
	}{
		{"too short", "Sh0rt!", "PASSWORD_TOO_SHORT"},
		{"no uppercase", "weakpass1!", "PASSWORD_MISSING_UPPERCASE"},
		{"no lowercase", "WEAKPASS1!", "PASSWORD_MISSING_LOWERCASE"},
		{"no digit", "Weakpass!!", "PASSWORD_MISSING_DIGIT"},
		{"no special char", "Weakpass11", "PASSWORD_MISSING_SPECIAL_CHAR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
				"username": "alice",
				"password": tt.password,
			})

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			code, _ := decodeEnvelope(t, rec)
			if code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, code)
			}
			if len(env.repo.users) != 0 {
				t.Error("rejected registration created a user")
			}
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	env := setupHandler(t)

	creds := map[string]string{"username": "alice", "password": "Str0ng!pass"}

	if rec := env.do(t, http.MethodPost, "/api/auth/register", creds); rec.Code != http.StatusCreated {
		t.Fatalf("first register returned %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/auth/register", creds)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code, _ := decodeEnvelope(t, rec); code != "USERNAME_TAKEN" {
		t.Errorf("expected code USERNAME_TAKEN, got %s", code)
	}
}

func TestRegister_UsernameTooLong(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "this_username_is_way_too_long",
		"password": "Str0ng!pass",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, msg := decodeEnvelope(t, rec); msg != "registration failed: username must be at most 20 characters" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	if cookie.Value == "" {
		t.Error("session cookie has no token")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	env := setupHandler(t)

	creds := map[string]string{"username": "alice", "password": "Str0ng!pass"}
	if rec := env.do(t, http.MethodPost, "/api/auth/register", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d", rec.Code)
	}

	unknownUser := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "Str0ng!pass",
	})
	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "Wr0ng!pass!",
	})

	if unknownUser.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: expected 401, got %d", unknownUser.Code)
	}
	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", wrongPassword.Code)
	}

	// The two failure modes must be indistinguishable on the wire.
	if unknownUser.Body.String() != wrongPassword.Body.String() {
		t.Errorf("failure responses differ: %q vs %q", unknownUser.Body.String(), wrongPassword.Body.String())
	}
}

func TestLogin_AlreadyAuthenticated(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	// A live session short-circuits the credential check entirely; even an
	// empty body succeeds.
	rec := env.do(t, http.MethodPost, "/api/auth/login", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Username != "alice" {
		t.Errorf("expected username alice, got %q", resp.Username)
	}
}

func TestAuthorize_AnonymousRedirectsToLogin(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestAuthorize_AuthenticatedReturnsSubject(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Username != "alice" || resp.UserID == "" {
		t.Errorf("unexpected subject: %+v", resp)
	}
}

func TestAuthorize_ExpiredSessionRedirects(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	env.clk.Advance(2 * time.Hour)

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 after expiry, got %d", rec.Code)
	}
}

func TestAuthorize_OrphanedSessionCleared(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	// The subject vanishes from the store while the session is still live.
	delete(env.repo.users, "alice")

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}

	// The orphaned session must be gone afterwards too.
	rec = env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 on the second check, got %d", rec.Code)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	env := setupHandler(t)

	cookie := env.registerAndLogin(t, "alice", "Str0ng!pass")

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	cleared := sessionCookie(rec)
	if cleared == nil {
		t.Fatal("logout did not reset the session cookie")
	}
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("logout cookie not cleared: value=%q maxAge=%d", cleared.Value, cleared.MaxAge)
	}

	// The old token no longer authorizes anything.
	rec = env.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	if rec.Code != http.StatusFound {
		t.Errorf("expected 302 after logout, got %d", rec.Code)
	}
}

func TestLogout_AnonymousRedirectsToLogin(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	env := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code, _ := decodeEnvelope(t, rec); code != "INVALID_JSON" {
		t.Errorf("expected code INVALID_JSON, got %s", code)
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(t, http.MethodGet, "/api/auth/register", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
