package users

import (
	"context"

	"fracton-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// UserSessionsPrefix is the Redis set holding the session ids of one user.
const UserSessionsPrefix = "user_sessions:"

// DestroyUserSessions removes all sessions for a user: each session key
// (session:<sid>) and the user_sessions:<user_id> set itself.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) {
	if userID == "" {
		return
	}
	key := UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil || len(sessionIDs) == 0 {
		rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	rdb.Del(ctx, key)
}
