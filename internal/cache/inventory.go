package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	AnalyticsKeyPrefix = "analytics:%d"
	StreakKeyPrefix    = "streak:%d"
)

const (
	UserTTL      = 5 * time.Minute
	AnalyticsTTL = 10 * time.Minute
	StreakTTL    = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func AnalyticsKey(userID uint) string {
	return fmt.Sprintf(AnalyticsKeyPrefix, userID)
}

func StreakKey(userID uint) string {
	return fmt.Sprintf(StreakKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateAnalytics drops the cached analytics summary and streak for a
// user. Called after every entry or tag mutation.
func InvalidateAnalytics(ctx context.Context, userID uint) {
	Invalidate(ctx, AnalyticsKey(userID))
	Invalidate(ctx, StreakKey(userID))
}
