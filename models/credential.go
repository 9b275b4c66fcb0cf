package models

import "time"

// credentialFreshness is how long a persisted credential is trusted without
// re-authenticating. It is measured from UpdatedAt, not from the token's own
// expiry; a provider that hands out 5-minute tokens would still be treated
// as valid for the full window. Kept intentionally, see DESIGN.md.
const credentialFreshness = 2 * time.Hour

// TokenCredential is the flat username/password login shape (RAK). The auth
// endpoint takes a JSON body and returns a "token" field.
type TokenCredential struct {
	Username       string    `json:"user_name"`
	Password       string    `json:"password"`
	PartnerID      string    `json:"partner_id"`
	LocationCode   string    `json:"location_code"`
	Token          string    `json:"token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitempty"`
}

// OAuthCredential is the client-credentials login shape (Gulf, Liva). The
// auth endpoint takes a form-encoded body and returns an "access_token"
// field. Headers carries any extra provider-specific login headers
// (Liva sends AuthKey, SubscriptionKey and friends).
type OAuthCredential struct {
	ClientID       string            `json:"client_id"`
	ClientSecret   string            `json:"client_secret"`
	GrantType      string            `json:"grant_type"`
	Audience       string            `json:"audience,omitempty"`
	Scope          string            `json:"scope,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	AccessToken    string            `json:"access_token,omitempty"`
	TokenType      string            `json:"token_type,omitempty"`
	ExpiresIn      int               `json:"expires_in,omitempty"`
	TokenExpiresAt time.Time         `json:"token_expires_at,omitempty"`
}

// ProviderCredential is one provider's auth record in the credential store.
// Exactly one of Token or OAuth is set; the variant decides which login
// protocol the authenticator runs.
type ProviderCredential struct {
	Name      string           `json:"name"`
	BaseURL   string           `json:"base_url"`
	AuthPath  string           `json:"auth_path"`
	Token     *TokenCredential `json:"token_credential,omitempty"`
	OAuth     *OAuthCredential `json:"oauth_credential,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Fresh reports whether the credential was refreshed recently enough that
// its cached token can be reused without a login call.
func (c *ProviderCredential) Fresh(now time.Time) bool {
	if c.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(c.UpdatedAt) < credentialFreshness
}

// CachedToken returns the stored bearer token for whichever variant is set,
// or "" when none has been obtained yet.
func (c *ProviderCredential) CachedToken() string {
	switch {
	case c.Token != nil:
		return c.Token.Token
	case c.OAuth != nil:
		return c.OAuth.AccessToken
	}
	return ""
}

// RefreshedToken writes a new bearer token into the token variant.
func (c *ProviderCredential) RefreshedToken(token string, now time.Time) {
	c.Token.Token = token
	c.Token.TokenExpiresAt = now.Add(time.Hour)
	c.UpdatedAt = now
}

// RefreshedAccessToken writes a new access token into the OAuth variant.
func (c *ProviderCredential) RefreshedAccessToken(token, tokenType string, expiresIn int, now time.Time) {
	c.OAuth.AccessToken = token
	c.OAuth.TokenType = tokenType
	c.OAuth.ExpiresIn = expiresIn
	c.OAuth.TokenExpiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	c.UpdatedAt = now
}
