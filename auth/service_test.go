package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexsys-it/protego-backend/api/models"
	"github.com/nexsys-it/protego-backend/api/store"
)

type fakeStore struct {
	cred    *models.ProviderCredential
	updates int
}

func (f *fakeStore) GetByNamePattern(ctx context.Context, pattern string) (*models.ProviderCredential, error) {
	if f.cred == nil {
		return nil, store.ErrCredentialNotFound
	}
	return f.cred, nil
}

func (f *fakeStore) Update(ctx context.Context, cred *models.ProviderCredential) error {
	f.updates++
	cred.UpdatedAt = time.Now().UTC()
	return nil
}

func rakCredential(baseURL string) *models.ProviderCredential {
	return &models.ProviderCredential{
		Name:     "RAK Insurance",
		BaseURL:  baseURL,
		AuthPath: "/login/authenticate",
		Token: &models.TokenCredential{
			Username:     "api-user",
			Password:     "api-pass",
			PartnerID:    "RAKUSERAPI",
			LocationCode: "20",
		},
	}
}

func TestToken_FreshCredentialSkipsLogin(t *testing.T) {
	logins := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
	}))
	defer server.Close()

	cred := rakCredential(server.URL)
	cred.Token.Token = "cached-token"
	cred.UpdatedAt = time.Now().UTC().Add(-10 * time.Minute)

	svc := NewService(&fakeStore{cred: cred})

	token, err := svc.Token(context.Background(), "*rak*")
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Equal(t, 0, logins)
}

func TestToken_StaleCredentialLogsIn(t *testing.T) {
	logins := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		assert.Equal(t, "RAKUSERAPI", r.Header.Get("PartnerId"))
		assert.Equal(t, "20", r.Header.Get("Location"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "api-user", body["username"])

		json.NewEncoder(w).Encode(map[string]any{"token": "fresh-token"})
	}))
	defer server.Close()

	cred := rakCredential(server.URL)
	cred.Token.Token = "old-token"
	cred.UpdatedAt = time.Now().UTC().Add(-3 * time.Hour)

	fs := &fakeStore{cred: cred}
	svc := NewService(fs)

	token, err := svc.Token(context.Background(), "*rak*")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, logins)
	assert.Equal(t, 1, fs.updates)
	assert.Equal(t, "fresh-token", cred.Token.Token)
	assert.False(t, cred.Token.TokenExpiresAt.IsZero())
}

func TestToken_NeverAuthenticatedLogsIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token": "first-token"})
	}))
	defer server.Close()

	fs := &fakeStore{cred: rakCredential(server.URL)}
	svc := NewService(fs)

	token, err := svc.Token(context.Background(), "*rak*")
	require.NoError(t, err)
	assert.Equal(t, "first-token", token)
	assert.Equal(t, 1, fs.updates)
}

func TestToken_LoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fs := &fakeStore{cred: rakCredential(server.URL)}
	svc := NewService(fs)

	_, err := svc.Token(context.Background(), "*rak*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 0, fs.updates)
}

func TestToken_MissingTokenField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"message": "bad credentials"})
	}))
	defer server.Close()

	fs := &fakeStore{cred: rakCredential(server.URL)}
	svc := NewService(fs)

	_, err := svc.Token(context.Background(), "*rak*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestToken_OAuthLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "sub-key", r.Header.Get("SubscriptionKey"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "oauth-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	cred := &models.ProviderCredential{
		Name:     "Liva Insurance",
		BaseURL:  server.URL,
		AuthPath: "/auth-token",
		OAuth: &models.OAuthCredential{
			ClientID:     "client-1",
			ClientSecret: "secret",
			GrantType:    "client_credentials",
			Scope:        "quotes",
			Headers:      map[string]string{"SubscriptionKey": "sub-key"},
		},
	}
	fs := &fakeStore{cred: cred}
	svc := NewService(fs)

	token, err := svc.Token(context.Background(), "*liva*")
	require.NoError(t, err)
	assert.Equal(t, "oauth-token", token)
	assert.Equal(t, "Bearer", cred.OAuth.TokenType)
	assert.Equal(t, 3600, cred.OAuth.ExpiresIn)
	assert.Equal(t, 1, fs.updates)
}

func TestToken_UnknownProvider(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.Token(context.Background(), "*nope*")
	assert.ErrorIs(t, err, store.ErrCredentialNotFound)
}

func TestCredentialFreshness(t *testing.T) {
	now := time.Now().UTC()

	cred := &models.ProviderCredential{UpdatedAt: now.Add(-119 * time.Minute)}
	assert.True(t, cred.Fresh(now))

	cred.UpdatedAt = now.Add(-121 * time.Minute)
	assert.False(t, cred.Fresh(now))

	assert.False(t, (&models.ProviderCredential{}).Fresh(now))
}
