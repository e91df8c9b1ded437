package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const pushedURLKey = "publish:pushed_urls"

// PushedURLCache remembers post URLs already submitted to the search push API,
// so repeated ingest runs do not burn the daily submission quota.
// A nil Redis client disables dedupe: every URL is reported as new.
type PushedURLCache struct {
	client *redis.Client
}

func NewPushedURLCache(client *redis.Client) *PushedURLCache {
	return &PushedURLCache{client: client}
}

// Filter returns the subset of urls not yet submitted
func (c *PushedURLCache) Filter(ctx context.Context, urls []string) ([]string, error) {
	if c.client == nil || len(urls) == 0 {
		return urls, nil
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		member, err := c.client.SIsMember(ctx, pushedURLKey, u).Result()
		if err != nil {
			return nil, err
		}
		if !member {
			out = append(out, u)
		}
	}
	return out, nil
}

// MarkPushed records urls as submitted
func (c *PushedURLCache) MarkPushed(ctx context.Context, urls []string) error {
	if c.client == nil || len(urls) == 0 {
		return nil
	}
	members := make([]interface{}, len(urls))
	for i, u := range urls {
		members[i] = u
	}
	return c.client.SAdd(ctx, pushedURLKey, members...).Err()
}
