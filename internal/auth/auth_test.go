package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/radif/uploads/internal/identity"
	"github.com/radif/uploads/internal/middleware"
	"github.com/radif/uploads/internal/user"
)

const testSecret = "test-secret"

type memUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*user.User{}}
}

func (m *memUsers) Create(_ context.Context, username, hash string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.users[username]; ok {
		return nil, user.ErrAlreadyExists
	}
	u := &user.User{ID: "id-" + username, Username: username, PasswordHash: hash}
	m.users[username] = u
	return u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService(users Users) *Service {
	svc := NewService(users, testSecret, time.Hour)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestService_RegisterThenLogin(t *testing.T) {
	users := newMemUsers()
	svc := newTestService(users)
	ctx := context.Background()

	token, u, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	token, u, err = svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	id, err := identity.FromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestService(newMemUsers())
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_PasswordLengthLimit(t *testing.T) {
	svc := newTestService(newMemUsers())
	long := strings.Repeat("p", MaxPasswordLen+1)

	_, _, err := svc.Register(context.Background(), "alice", long)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, _, err = svc.Register(context.Background(), "alice", long[:MaxPasswordLen])
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", long)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHandler_Register_StoreFailureIsLogged(t *testing.T) {
	users := newMemUsers()
	users.err = errors.New("db down")
	var logs bytes.Buffer
	h := NewHandler(newTestService(users), zerolog.New(&logs))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"username":"alice","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "register failed")
	assert.Contains(t, logs.String(), "db down")
}

func TestService_Login_StoreFailure(t *testing.T) {
	users := newMemUsers()
	users.err = errors.New("db down")
	svc := newTestService(users)

	_, _, err := svc.Login(context.Background(), "alice", "whatever1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_TokenAcceptedByMiddleware(t *testing.T) {
	svc := newTestService(newMemUsers())
	token, u, err := svc.Register(context.Background(), "bob", "hunter2hunter2")
	require.NoError(t, err)

	var gotUser, gotID string
	h := middleware.RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = middleware.Username(r.Context())
		gotID, _ = middleware.UserID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", gotUser)
	assert.Equal(t, u.ID, gotID)
}

func TestHandler_Register(t *testing.T) {
	users := newMemUsers()
	h := NewHandler(newTestService(users), zerolog.Nop())
	_, err := users.Create(context.Background(), "taken", "x")
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "created", body: `{"username":"alice","password":"correct horse"}`, wantStatus: http.StatusCreated},
		{name: "taken", body: `{"username":"taken","password":"correct horse"}`, wantStatus: http.StatusConflict},
		{name: "bad username", body: `{"username":"a/b","password":"correct horse"}`, wantStatus: http.StatusBadRequest},
		{name: "short password", body: `{"username":"carol","password":"short"}`, wantStatus: http.StatusBadRequest},
		{name: "password over bcrypt limit", body: `{"username":"dave","password":"` + strings.Repeat("p", MaxPasswordLen+1) + `"}`, wantStatus: http.StatusBadRequest},
		{name: "password at bcrypt limit", body: `{"username":"erin","password":"` + strings.Repeat("p", MaxPasswordLen) + `"}`, wantStatus: http.StatusCreated},
		{name: "malformed", body: `{"username":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := newTestService(newMemUsers())
	_, _, err := svc.Register(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	h := NewHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.Token)
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"nope nope"}`))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndToEndWithIdentityClient(t *testing.T) {
	svc := newTestService(newMemUsers())
	_, _, err := svc.Register(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc(identity.LoginPath, NewHandler(svc, zerolog.Nop()).Login)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := identity.NewClient(srv.URL).Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	id, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
}
