package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
)

const (
	// OpenJobsKey は公開中求人数を "世代:件数" の形式で保持するキーです。
	OpenJobsKey = "jobboard:stats:open_jobs"
	// OpenJobsGenerationKey は無効化のたびに INCR される世代番号のキーです。期限は設定しません。
	OpenJobsGenerationKey = "jobboard:stats:open_jobs:gen"
)

// Commands は OpenJobsCache が利用する Redis コマンドの部分集合です。*goredis.Client が満たします。
type Commands interface {
	MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// OpenJobsCache は job.OpenJobsCache の Redis 実装です。
type OpenJobsCache struct {
	client Commands
	ttl    time.Duration
}

var _ job.OpenJobsCache = (*OpenJobsCache)(nil)

// NewOpenJobsCache は OpenJobsCache を生成します。ttl が 0 以下の場合は期限なしで保存します。
func NewOpenJobsCache(client Commands, ttl time.Duration) *OpenJobsCache {
	if ttl < 0 {
		ttl = 0
	}
	return &OpenJobsCache{client: client, ttl: ttl}
}

// OpenJobs は現在の世代と、その世代で保存された件数を返します。
// 件数が無いか、古い世代で保存されている場合は Hit が false になります。
func (c *OpenJobsCache) OpenJobs(ctx context.Context) (job.OpenJobsSnapshot, error) {
	values, err := c.client.MGet(ctx, OpenJobsKey, OpenJobsGenerationKey).Result()
	if err != nil {
		return job.OpenJobsSnapshot{}, fmt.Errorf("redis: get open jobs: %w", err)
	}

	var snap job.OpenJobsSnapshot
	if len(values) > 1 && values[1] != nil {
		gen, err := parseInt(values[1])
		if err != nil {
			return job.OpenJobsSnapshot{}, fmt.Errorf("redis: parse open jobs generation %q: %w", values[1], err)
		}
		snap.Generation = gen
	}

	if len(values) == 0 || values[0] == nil {
		return snap, nil
	}
	raw, _ := values[0].(string)
	genRaw, countRaw, found := strings.Cut(raw, ":")
	if !found {
		return job.OpenJobsSnapshot{}, fmt.Errorf("redis: parse open jobs %q: missing generation", raw)
	}
	gen, err := strconv.ParseInt(genRaw, 10, 64)
	if err != nil {
		return job.OpenJobsSnapshot{}, fmt.Errorf("redis: parse open jobs %q: %w", raw, err)
	}
	count, err := strconv.ParseInt(countRaw, 10, 64)
	if err != nil {
		return job.OpenJobsSnapshot{}, fmt.Errorf("redis: parse open jobs %q: %w", raw, err)
	}

	if gen == snap.Generation {
		snap.Count, snap.Hit = count, true
	}
	return snap, nil
}

// StoreOpenJobs は generation 時点で数えた件数を保存します。
func (c *OpenJobsCache) StoreOpenJobs(ctx context.Context, generation, count int64) error {
	value := strconv.FormatInt(generation, 10) + ":" + strconv.FormatInt(count, 10)
	if err := c.client.Set(ctx, OpenJobsKey, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set open jobs: %w", err)
	}
	return nil
}

// InvalidateOpenJobs は世代を進めてから件数を破棄します。
// 進める前に読まれた世代で後から保存された件数はヒットしません。
func (c *OpenJobsCache) InvalidateOpenJobs(ctx context.Context) error {
	if err := c.client.Incr(ctx, OpenJobsGenerationKey).Err(); err != nil {
		return fmt.Errorf("redis: incr open jobs generation: %w", err)
	}
	if err := c.client.Del(ctx, OpenJobsKey).Err(); err != nil {
		return fmt.Errorf("redis: delete open jobs: %w", err)
	}
	return nil
}

func parseInt(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}
