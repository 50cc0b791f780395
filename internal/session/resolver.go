// Package session assembles evaluable principal snapshots from the identity
// source and the team directory, with caching that never outlives a fresh fetch.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/observability"
	"github.com/crmkit/crm-authz/internal/policy"
	"github.com/crmkit/crm-authz/internal/repository"
)

const (
	identityKeyPrefix  = "authz:identity:"
	defaultLoadTimeout = 5 * time.Second
)

// Snapshot is everything the evaluator needs for one principal.
type Snapshot struct {
	User  *domain.UserContext
	Teams *policy.TeamIndex
}

// Options tunes the caches.
type Options struct {
	IdentityTTL   time.Duration
	TeamCacheSize int
	TeamCacheTTL  time.Duration
	// LoadTimeout bounds a directory read shared by concurrent callers.
	LoadTimeout time.Duration
}

// Resolver builds snapshots, caching identities in Redis and team indexes in process.
type Resolver struct {
	identities  repository.IdentityRepository
	teams       repository.TeamRepository
	redis       *redis.Client
	teamCache   *lru.LRU[string, *policy.TeamIndex]
	identityTTL time.Duration
	loadTimeout time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
	loads       singleflight.Group
}

// Dependencies bundles the resolver's collaborators. Redis and Metrics are optional.
type Dependencies struct {
	Identities repository.IdentityRepository
	Teams      repository.TeamRepository
	Redis      *redis.Client
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewResolver constructs a resolver.
func NewResolver(deps Dependencies, opts Options) *Resolver {
	size := opts.TeamCacheSize
	if size <= 0 {
		size = 128
	}
	loadTimeout := opts.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		identities:  deps.Identities,
		teams:       deps.Teams,
		redis:       deps.Redis,
		teamCache:   lru.NewLRU[string, *policy.TeamIndex](size, nil, opts.TeamCacheTTL),
		identityTTL: opts.IdentityTTL,
		loadTimeout: loadTimeout,
		logger:      logger,
		metrics:     deps.Metrics,
	}
}

// Resolve returns the snapshot for userID. With fresh set, both caches are
// bypassed and overwritten so the result is never older than the directory.
func (r *Resolver) Resolve(ctx context.Context, userID string, fresh bool) (*Snapshot, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidContext)
	}

	identity, err := r.identity(ctx, userID, fresh)
	if err != nil {
		return nil, err
	}
	if !identity.Active {
		return nil, fmt.Errorf("%w: user %s is inactive", domain.ErrInvalidContext, userID)
	}

	index, err := r.teamIndex(ctx, identity.OrganizationID, fresh)
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUserContext(domain.UserContextInput{
		ID:             identity.UserID,
		Role:           identity.Role,
		OrganizationID: identity.OrganizationID,
		Permissions:    identity.Permissions,
		TeamIDs:        index.TeamsOf(identity.UserID),
		ManagedTeamIDs: index.TeamsManagedBy(identity.UserID),
	})
	if err != nil {
		// a cached identity must not keep an invalid role alive
		r.dropIdentity(ctx, userID)
		return nil, err
	}
	return &Snapshot{User: user, Teams: index}, nil
}

// Invalidate drops cached state for a user and, when known, their organization.
func (r *Resolver) Invalidate(ctx context.Context, userID, organizationID string) {
	r.dropIdentity(ctx, userID)
	if organizationID != "" {
		r.teamCache.Remove(organizationID)
	}
}

func (r *Resolver) identity(ctx context.Context, userID string, fresh bool) (*domain.Identity, error) {
	if !fresh {
		if cached, ok := r.cachedIdentity(ctx, userID); ok {
			r.metrics.RecordSnapshot("identity", "cache")
			return cached, nil
		}
	}

	load := func(ctx context.Context) (*domain.Identity, error) {
		identity, err := r.identities.GetIdentity(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.metrics.RecordSnapshot("identity", "directory")
		r.storeIdentity(ctx, identity)
		return identity, nil
	}
	if fresh {
		return load(ctx)
	}
	// concurrent cache misses for one user share a single directory read
	v, err := r.shared(ctx, "identity:"+userID, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Identity), nil
}

// shared runs fn once per key across concurrent callers. The load runs detached
// from any single caller's cancellation, bounded by loadTimeout; each caller
// still stops waiting when its own context ends.
func (r *Resolver) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := r.loads.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		return fn(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) cachedIdentity(ctx context.Context, userID string) (*domain.Identity, bool) {
	if r.redis == nil || r.identityTTL <= 0 {
		return nil, false
	}
	raw, err := r.redis.Get(ctx, identityKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("identity cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		r.logger.Warn("identity cache entry corrupt", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &identity, true
}

func (r *Resolver) storeIdentity(ctx context.Context, identity *domain.Identity) {
	if r.redis == nil || r.identityTTL <= 0 {
		return
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, identityKeyPrefix+identity.UserID, raw, r.identityTTL).Err(); err != nil {
		r.logger.Warn("identity cache write failed", zap.String("user_id", identity.UserID), zap.Error(err))
	}
}

func (r *Resolver) dropIdentity(ctx context.Context, userID string) {
	if r.redis == nil || userID == "" {
		return
	}
	if err := r.redis.Del(ctx, identityKeyPrefix+userID).Err(); err != nil {
		r.logger.Warn("identity cache delete failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *Resolver) teamIndex(ctx context.Context, organizationID string, fresh bool) (*policy.TeamIndex, error) {
	if organizationID == "" {
		return policy.NewTeamIndex(nil), nil
	}
	if !fresh {
		if idx, ok := r.teamCache.Get(organizationID); ok {
			r.metrics.RecordSnapshot("team_index", "cache")
			return idx, nil
		}
	}
	load := func(ctx context.Context) (*policy.TeamIndex, error) {
		teams, err := r.teams.ListByOrganization(ctx, organizationID)
		if err != nil {
			return nil, fmt.Errorf("load teams for %s: %w", organizationID, err)
		}
		idx := policy.NewTeamIndex(teams)
		r.metrics.RecordSnapshot("team_index", "directory")
		r.teamCache.Add(organizationID, idx)
		return idx, nil
	}
	if fresh {
		return load(ctx)
	}
	v, err := r.shared(ctx, "teams:"+organizationID, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*policy.TeamIndex), nil
}
