// Package cache holds a short-lived, explicitly invalidated cache of user rows
// used when resolving request identities.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	keyPrefix = "quill:identity:"
	genPrefix = "quill:identity-gen:"

	// genTTL bounds how long an invalidation is remembered. It only has to
	// outlive any lookup that started before the invalidation.
	genTTL = 24 * time.Hour
)

// storeIfCurrent writes the entry only when the generation read before the
// backing lookup is still current, so a lookup that raced an invalidation
// cannot put the old row back.
var storeIfCurrent = valkey.NewLuaScript(`
if (redis.call('GET', KEYS[2]) or '0') == ARGV[1] then
	redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
	return 1
end
return 0
`)

// UserFinder is the backing lookup the cache fronts.
type UserFinder interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// cachedUser is what gets stored; the password hash never leaves the database.
type cachedUser struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// IdentityCache fronts a UserFinder with Valkey. Lookup misses and Valkey
// failures fall through to the backing finder.
type IdentityCache struct {
	next   UserFinder
	client valkey.Client
	ttl    time.Duration
}

// NewClient connects to Valkey and verifies the connection.
func NewClient(addr string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}
	return client, nil
}

// NewIdentityCache wraps next with a Valkey cache whose entries live for ttl.
func NewIdentityCache(next UserFinder, client valkey.Client, ttl time.Duration) *IdentityCache {
	slog.Info("Initialized identity cache", "ttl", ttl.String())
	return &IdentityCache{next: next, client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func genKey(id uuid.UUID) string {
	return genPrefix + id.String()
}

// FindUserByID returns the cached row when present, otherwise loads it from
// the backing finder and caches it.
func (c *IdentityCache) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(key(id)).Build()).ToString()
	switch {
	case err == nil:
		var cu cachedUser
		if jsonErr := json.Unmarshal([]byte(raw), &cu); jsonErr == nil {
			return &models.User{ID: cu.ID, Name: cu.Name, Email: cu.Email, Role: cu.Role, CreatedAt: cu.CreatedAt}, nil
		}
		slog.Warn("Discarding malformed identity cache entry", "user_id", id)
	case !valkey.IsValkeyNil(err):
		slog.Warn("Identity cache read failed", "user_id", id, "error", err)
	}

	gen, err := c.client.Do(ctx, c.client.B().Get().Key(genKey(id)).Build()).ToString()
	cacheable := true
	switch {
	case valkey.IsValkeyNil(err):
		gen = "0"
	case err != nil:
		slog.Warn("Identity cache generation read failed", "user_id", id, "error", err)
		cacheable = false
	}

	user, err := c.next.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.store(ctx, id, user, gen)
	}
	return user, nil
}

func (c *IdentityCache) store(ctx context.Context, id uuid.UUID, user *models.User, gen string) {
	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return
	}

	seconds := int64(c.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	keys := []string{key(id), genKey(id)}
	args := []string{gen, string(data), strconv.FormatInt(seconds, 10)}
	if err := storeIfCurrent.Exec(ctx, c.client, keys, args).Error(); err != nil {
		slog.Warn("Identity cache write failed", "user_id", id, "error", err)
	}
}

// Invalidate drops the cached row for id and bumps its generation, so the
// next lookup reads the database and lookups already in flight do not
// repopulate the entry.
func (c *IdentityCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	results := c.client.DoMulti(ctx,
		c.client.B().Incr().Key(genKey(id)).Build(),
		c.client.B().Expire().Key(genKey(id)).Seconds(int64(genTTL/time.Second)).Build(),
		c.client.B().Del().Key(key(id)).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			return fmt.Errorf("invalidate identity %s: %w", id, err)
		}
	}
	return nil
}

// Close releases the Valkey connection.
func (c *IdentityCache) Close() {
	c.client.Close()
}
