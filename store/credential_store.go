package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexsys-it/protego-backend/api/models"
)

const credentialKeyPrefix = "provider:"

var ErrCredentialNotFound = errors.New("provider credential not found")

// CredentialStore is the durable mapping from provider name to its base URL,
// auth endpoint and mutable credential state.
type CredentialStore interface {
	GetByNamePattern(ctx context.Context, pattern string) (*models.ProviderCredential, error)
	Update(ctx context.Context, cred *models.ProviderCredential) error
}

// RedisCredentialStore keeps one JSON blob per provider under
// "provider:<lowercased name>".
type RedisCredentialStore struct {
	rdb *redis.Client
}

func NewRedisCredentialStore(rdb *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{rdb: rdb}
}

func credentialKey(name string) string {
	return credentialKeyPrefix + strings.ToLower(name)
}

// GetByNamePattern returns the first credential whose provider name matches
// the glob pattern, e.g. "*rak*". Returns ErrCredentialNotFound on a miss;
// any other error means the store itself is unreachable and the whole
// request should fail.
func (s *RedisCredentialStore) GetByNamePattern(ctx context.Context, pattern string) (*models.ProviderCredential, error) {
	match := credentialKeyPrefix + strings.ToLower(pattern)

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, 10).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential store: %w", err)
		}
		if len(keys) > 0 {
			val, err := s.rdb.Get(ctx, keys[0]).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to read credential %s: %w", keys[0], err)
			}
			var cred models.ProviderCredential
			if err := json.Unmarshal([]byte(val), &cred); err != nil {
				return nil, fmt.Errorf("failed to decode credential %s: %w", keys[0], err)
			}
			return &cred, nil
		}
		cursor = next
		if cursor == 0 {
			return nil, ErrCredentialNotFound
		}
	}
}

// Update bumps the credential's UpdatedAt and persists it. Only a
// provider's own authenticator calls this, and only after a token refresh.
func (s *RedisCredentialStore) Update(ctx context.Context, cred *models.ProviderCredential) error {
	cred.UpdatedAt = time.Now().UTC()
	return s.save(ctx, cred)
}

// Save persists the credential as-is, without touching UpdatedAt. Used by
// seeding so that freshly seeded providers still count as stale.
func (s *RedisCredentialStore) Save(ctx context.Context, cred *models.ProviderCredential) error {
	return s.save(ctx, cred)
}

func (s *RedisCredentialStore) save(ctx context.Context, cred *models.ProviderCredential) error {
	blob, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential %s: %w", cred.Name, err)
	}
	if err := s.rdb.Set(ctx, credentialKey(cred.Name), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to store credential %s: %w", cred.Name, err)
	}
	return nil
}

// Exists reports whether a credential is already stored under the exact name.
func (s *RedisCredentialStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.rdb.Exists(ctx, credentialKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check credential %s: %w", name, err)
	}
	return n > 0, nil
}
