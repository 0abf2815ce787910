package cache

import (
	"context"
	"log/slog"
	"time"
)

// SafeSet stores value and logs instead of failing the caller.
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value interface{}, ttl time.Duration) {
	if err := helper.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateResourceCache drops a resource's cached copy, every browse
// listing and the admin stats, all of which a decision can change.
func InvalidateResourceCache(ctx context.Context, cm *CacheManager, resourceID string) {
	if !cm.Enabled() {
		return
	}
	if resourceID != "" {
		SafeDelete(ctx, cm.Resource, "id:"+resourceID)
	}
	SafeInvalidatePattern(ctx, cm.Resource, "browse:*")
	SafeInvalidatePattern(ctx, cm.Resource, "facets*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateUserCache drops a user's cached profile and the admin stats.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	if !cm.Enabled() {
		return
	}
	SafeDelete(ctx, cm.User, "id:"+userID)
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
