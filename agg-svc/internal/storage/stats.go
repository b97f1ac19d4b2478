package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"friendlyeats/internal/domain"

	"github.com/redis/go-redis/v9"
)

// publishScript applies a snapshot only when its version is newer than the
// one already mirrored, so late publishers cannot roll the mirror back.
//
// KEYS[1] stats hash, KEYS[2] leaderboard
// ARGV version, avg, count, updated_at, ttl_ms, restaurant id
//
// Versions are zero padded so that string order is numeric order; Firestore
// versions are nanosecond timestamps beyond the precision of a Lua number.
var publishScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], '` + domain.StatsVersion + `')
if current and current >= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1],
	'` + domain.StatsVersion + `', ARGV[1],
	'` + domain.StatsAvgRating + `', ARGV[2],
	'` + domain.StatsReviewCount + `', ARGV[3],
	'` + domain.StatsUpdatedAt + `', ARGV[4])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
if tonumber(ARGV[3]) == 0 then
	redis.call('ZREM', KEYS[2], ARGV[6])
else
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[6])
end
return 1
`)

// StatsCache mirrors restaurant aggregates into Redis: a per-restaurant
// hash plus a leaderboard sorted by average rating.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl, now: time.Now}
}

// PublishStats writes the aggregate computed from the given restaurant
// document version. Versions at or below the mirrored one are dropped.
func (s *StatsCache) PublishStats(ctx context.Context, restaurantID string, averageRating float64, reviewCount int, version int64) error {
	ttl := s.ttl.Milliseconds()
	if s.ttl > 0 && ttl == 0 {
		ttl = 1
	}
	applied, err := publishScript.Run(ctx, s.rdb,
		[]string{domain.StatsKey(restaurantID), domain.TopRatedKey},
		versionArg(version), averageRating, reviewCount, s.now().Unix(), ttl, restaurantID,
	).Int()
	if err != nil {
		return err
	}
	if applied == 0 {
		log.Printf("Skipping stale stats for restaurant %s at version %d", restaurantID, version)
	}
	return nil
}

func versionArg(version int64) string {
	return fmt.Sprintf("%020d", version)
}
