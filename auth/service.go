package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nexsys-it/protego-backend/api/models"
	"github.com/nexsys-it/protego-backend/api/store"
)

const loginTimeout = 30 * time.Second

// TokenSource hands out a valid bearer token for a provider, refreshing it
// through the provider's login endpoint when the cached one has gone stale.
// A failed login is a provider-scoped condition: it comes back as an error
// the caller turns into an error result, never as a crash.
type TokenSource interface {
	Token(ctx context.Context, namePattern string) (string, error)
}

// Service implements TokenSource on top of the credential store. Refreshes
// for the same provider are serialized with a per-provider mutex so
// concurrent requests don't race the read-modify-write of the credential.
type Service struct {
	store  store.CredentialStore
	client *http.Client
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(s store.CredentialStore) *Service {
	return &Service{
		store:  s,
		client: &http.Client{Timeout: loginTimeout},
		now:    time.Now,
		locks:  map[string]*sync.Mutex{},
	}
}

func (s *Service) providerLock(pattern string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[pattern]
	if !ok {
		l = &sync.Mutex{}
		s.locks[pattern] = l
	}
	return l
}

// Token returns a bearer token for the provider matching namePattern. The
// cached token is reused while the credential is fresh; otherwise a login
// call is made and the refreshed credential is written back to the store.
func (s *Service) Token(ctx context.Context, namePattern string) (string, error) {
	lock := s.providerLock(namePattern)
	lock.Lock()
	defer lock.Unlock()

	cred, err := s.store.GetByNamePattern(ctx, namePattern)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	if cred.Fresh(now) && cred.CachedToken() != "" {
		log.Printf("[AUTH] Token still valid for %s", cred.Name)
		return cred.CachedToken(), nil
	}

	switch {
	case cred.Token != nil:
		err = s.loginToken(ctx, cred, now)
	case cred.OAuth != nil:
		err = s.loginOAuth(ctx, cred, now)
	default:
		return "", fmt.Errorf("no auth variant configured for %s", cred.Name)
	}
	if err != nil {
		return "", err
	}

	if err := s.store.Update(ctx, cred); err != nil {
		return "", err
	}
	log.Printf("[AUTH] Token updated for %s", cred.Name)
	return cred.CachedToken(), nil
}

// loginToken runs the JSON username/password protocol (RAK). The response
// must carry a "token" field.
func (s *Service) loginToken(ctx context.Context, cred *models.ProviderCredential, now time.Time) error {
	body, _ := json.Marshal(map[string]string{
		"username": cred.Token.Username,
		"password": cred.Token.Password,
	})

	loginURL := cred.BaseURL + cred.AuthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request for %s: %w", cred.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PartnerId", cred.Token.PartnerID)
	req.Header.Set("Location", cred.Token.LocationCode)

	log.Printf("[AUTH] Calling %s", loginURL)
	data, err := s.doLogin(req, cred.Name)
	if err != nil {
		return err
	}

	token, ok := data["token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("auth failed for %s: no token in response", cred.Name)
	}
	cred.RefreshedToken(token, now)
	return nil
}

// loginOAuth runs the form-encoded client-credentials protocol (Gulf,
// Liva). The response must carry an "access_token" field.
func (s *Service) loginOAuth(ctx context.Context, cred *models.ProviderCredential, now time.Time) error {
	form := url.Values{}
	form.Set("grant_type", cred.OAuth.GrantType)
	form.Set("client_id", cred.OAuth.ClientID)
	form.Set("client_secret", cred.OAuth.ClientSecret)
	if cred.OAuth.Audience != "" {
		form.Set("audience", cred.OAuth.Audience)
	}
	if cred.OAuth.Scope != "" {
		form.Set("scope", cred.OAuth.Scope)
	}

	loginURL := cred.BaseURL + cred.AuthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build login request for %s: %w", cred.Name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range cred.OAuth.Headers {
		req.Header.Set(k, v)
	}

	log.Printf("[AUTH] Calling %s", loginURL)
	data, err := s.doLogin(req, cred.Name)
	if err != nil {
		return err
	}

	token, ok := data["access_token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("auth failed for %s: no access_token in response", cred.Name)
	}
	tokenType, _ := data["token_type"].(string)
	expiresIn := 0
	if v, ok := data["expires_in"].(float64); ok {
		expiresIn = int(v)
	}
	cred.RefreshedAccessToken(token, tokenType, expiresIn, now)
	return nil
}

func (s *Service) doLogin(req *http.Request, name string) (map[string]any, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request to %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response from %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("login to %s returned HTTP %d", name, resp.StatusCode)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("login response from %s is not JSON: %w", name, err)
	}
	return data, nil
}
