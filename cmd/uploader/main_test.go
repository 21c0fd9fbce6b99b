package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/uploads/internal/config"
	"github.com/radif/uploads/internal/identity"
	"github.com/radif/uploads/internal/storage"
	"github.com/radif/uploads/internal/upload"
)

func token(t *testing.T, username string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "id-" + username,
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestOpenSession_ConfiguredToken(t *testing.T) {
	cfg := config.DefaultClientConfig()
	cfg.Token = token(t, "alice")

	s, err := openSession(context.Background(), cfg, "ignored", "")
	require.NoError(t, err)

	id, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, cfg.Token, s.Token())
}

func TestOpenSession_BadToken(t *testing.T) {
	cfg := config.DefaultClientConfig()
	cfg.Token = "not-a-jwt"

	_, err := openSession(context.Background(), cfg, "", "")
	assert.Error(t, err)
}

func TestOpenSession_LoggedOut(t *testing.T) {
	s, err := openSession(context.Background(), config.DefaultClientConfig(), "", "")
	require.NoError(t, err)

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestOpenSession_Login(t *testing.T) {
	tok := token(t, "alice")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, identity.LoginPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": tok,
				"user":  map[string]any{"username": "alice"},
			},
		})
	}))
	defer srv.Close()

	cfg := config.DefaultClientConfig()
	cfg.APIURL = srv.URL

	s, err := openSession(context.Background(), cfg, "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, tok, s.Token())
}

func TestOpenStorage_UnknownProvider(t *testing.T) {
	_, err := openStorage(context.Background(), zerolog.Nop(), config.StorageConfig{Provider: "ftp"})
	assert.ErrorContains(t, err, "unknown storage provider")
}

func TestSelectLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly numbers\n"), 0o600))

	f, err := selectLocal(path)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", f.Name())
	assert.Equal(t, int64(18), f.Size())
	assert.Contains(t, f.ContentType(), "text/plain")

	_, err = selectLocal(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

// countingServer answers every request with 500 and counts them.
func countingServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRun_PreconditionMakesNoRemoteCalls(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(file, []byte("numbers"), 0o600))

	tests := []struct {
		name  string
		token bool
		args  []string
	}{
		{name: "no file, logged out"},
		{name: "no file, logged in", token: true},
		{name: "file, logged out", args: []string{"-file", file}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storageSrv, storageHits := countingServer(t)
			apiSrv, apiHits := countingServer(t)

			t.Setenv("STORAGE_PROVIDER", config.ProviderMinIO)
			t.Setenv("STORAGE_ENDPOINT", strings.TrimPrefix(storageSrv.URL, "http://"))
			t.Setenv("STORAGE_USE_SSL", "false")
			t.Setenv("UPLOADER_API_URL", apiSrv.URL)
			t.Setenv("LOG_LEVEL", "error")
			t.Setenv("UPLOADER_TOKEN", "")
			if tt.token {
				t.Setenv("UPLOADER_TOKEN", token(t, "alice"))
			}

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Equal(t, "[error] "+upload.MsgNotReady+"\n", stdout.String())
			assert.Zero(t, storageHits.Load(), "storage contacted")
			assert.Zero(t, apiHits.Load(), "metadata endpoint contacted")
		})
	}
}

type stubStorage struct {
	uploads []string
}

func (s *stubStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	_, _ = io.Copy(io.Discard, r)
	s.uploads = append(s.uploads, key)
	return nil
}

func (s *stubStorage) PublicURL(key string) string { return "http://files/" + key }

func TestLazyStorage(t *testing.T) {
	stub := &stubStorage{}
	opens := 0
	failNext := true
	lazy := newLazyStorage(func(context.Context) (storage.Storage, error) {
		opens++
		if failNext {
			failNext = false
			return nil, errors.New("unreachable")
		}
		return stub, nil
	})

	assert.Zero(t, opens, "opened before first upload")
	assert.Empty(t, lazy.PublicURL("alice/a.txt"))

	err := lazy.Upload(context.Background(), "alice/a.txt", strings.NewReader("a"), 1, "text/plain")
	assert.ErrorContains(t, err, "unreachable")

	require.NoError(t, lazy.Upload(context.Background(), "alice/a.txt", strings.NewReader("a"), 1, "text/plain"))
	require.NoError(t, lazy.Upload(context.Background(), "alice/b.txt", strings.NewReader("b"), 1, "text/plain"))

	assert.Equal(t, 2, opens)
	assert.Equal(t, []string{"alice/a.txt", "alice/b.txt"}, stub.uploads)
	assert.Equal(t, "http://files/alice/a.txt", lazy.PublicURL("alice/a.txt"))
}
