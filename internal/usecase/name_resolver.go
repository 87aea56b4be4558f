package usecase

import (
	"context"
	"sync"
	"time"

	"baddelli/internal/domain/repository"
	"baddelli/pkg/logger"
)

const unknownUserName = "Unknown user"

type cachedName struct {
	name      string
	fetchedAt time.Time
}

// CachedNameResolver looks display names up once and keeps them until they
// expire or are forgotten. Live sessions own one each; the process-wide one
// used by REST handlers gets a TTL. Failed lookups are never cached.
type CachedNameResolver struct {
	users repository.UserRepository
	auth  FirebaseAuthClient
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cachedName
}

func NewCachedNameResolver(users repository.UserRepository, auth FirebaseAuthClient) *CachedNameResolver {
	return &CachedNameResolver{
		users: users,
		auth:  auth,
		now:   time.Now,
		cache: make(map[string]cachedName),
	}
}

// WithTTL makes entries expire ttl after they were fetched. Zero keeps them
// for the lifetime of the resolver.
func (r *CachedNameResolver) WithTTL(ttl time.Duration) *CachedNameResolver {
	r.ttl = ttl
	return r
}

func (r *CachedNameResolver) DisplayName(ctx context.Context, userID string) string {
	r.mu.Lock()
	entry, ok := r.cache[userID]
	if ok && r.ttl > 0 && r.now().Sub(entry.fetchedAt) >= r.ttl {
		delete(r.cache, userID)
		ok = false
	}
	r.mu.Unlock()
	if ok {
		return entry.name
	}

	name, found := r.lookup(ctx, userID)
	if !found {
		return unknownUserName
	}

	r.mu.Lock()
	r.cache[userID] = cachedName{name: name, fetchedAt: r.now()}
	r.mu.Unlock()
	return name
}

// Forget drops the cached name so the next lookup sees a rename.
func (r *CachedNameResolver) Forget(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

func (r *CachedNameResolver) lookup(ctx context.Context, userID string) (string, bool) {
	if r.users != nil {
		user, err := r.users.GetByID(ctx, userID)
		if err == nil && user.DisplayName != "" {
			return user.DisplayName, true
		}
		if err != nil {
			logger.Debug("Profile lookup for %s failed: %v", userID, err)
		}
	}

	if r.auth != nil {
		name, err := r.auth.GetDisplayName(ctx, userID)
		if err == nil && name != "" {
			return name, true
		}
	}

	return "", false
}
