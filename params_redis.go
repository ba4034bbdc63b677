package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dbw-service/controller"

	"github.com/go-redis/redis/v8"
)

const (
	paramsHashKey        = "params"
	paramsDefaultTimeout = 5 * time.Millisecond
)

// RedisParams stores the shared params as fields of one redis hash.
type RedisParams struct {
	redis   *redis.Client
	key     string
	timeout time.Duration

	mu      sync.Mutex
	lastErr error
}

func NewRedisParams(client *redis.Client, key string, timeout time.Duration) *RedisParams {
	if key == "" {
		key = paramsHashKey
	}
	if timeout <= 0 {
		timeout = paramsDefaultTimeout
	}
	return &RedisParams{
		redis:   client,
		key:     key,
		timeout: timeout,
	}
}

func (p *RedisParams) get(ctx context.Context, field string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	v, err := p.redis.HGet(ctx, p.key, field).Result()
	if err == redis.Nil {
		p.setErr(nil)
		return "", controller.ErrParamNotFound
	}
	p.setErr(err)
	if err != nil {
		return "", fmt.Errorf("failed to get param %s: %w", field, err)
	}
	return v, nil
}

func (p *RedisParams) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := p.get(ctx, key)
	if err != nil {
		return false, err
	}
	return parseParamBool(key, v)
}

func (p *RedisParams) GetInt(ctx context.Context, key string) (int, error) {
	v, err := p.get(ctx, key)
	if err != nil {
		return 0, err
	}
	return parseParamInt(key, v)
}

func (p *RedisParams) PutInt(ctx context.Context, key string, value int) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.redis.HSet(ctx, p.key, key, value).Err()
	p.setErr(err)
	if err != nil {
		return fmt.Errorf("failed to put param %s: %w", key, err)
	}
	return nil
}

// Fetch reads all keys with a single HMGET.
func (p *RedisParams) Fetch(ctx context.Context, keys ...string) (controller.Params, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	vals, err := p.redis.HMGet(ctx, p.key, keys...).Result()
	p.setErr(err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch params: %w", err)
	}

	view := &redisParamsView{store: p, values: make(map[string]string, len(keys))}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			view.values[keys[i]] = s
		}
	}
	return view, nil
}

// Err returns the error of the most recent round trip, nil if it succeeded.
func (p *RedisParams) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *RedisParams) setErr(err error) {
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// redisParamsView answers reads from one Fetch and writes through to redis.
type redisParamsView struct {
	store  *RedisParams
	values map[string]string
}

func (v *redisParamsView) GetBool(ctx context.Context, key string) (bool, error) {
	s, ok := v.values[key]
	if !ok {
		return false, controller.ErrParamNotFound
	}
	return parseParamBool(key, s)
}

func (v *redisParamsView) GetInt(ctx context.Context, key string) (int, error) {
	s, ok := v.values[key]
	if !ok {
		return 0, controller.ErrParamNotFound
	}
	return parseParamInt(key, s)
}

func (v *redisParamsView) PutInt(ctx context.Context, key string, value int) error {
	return v.store.PutInt(ctx, key, value)
}

func parseParamBool(key, v string) (bool, error) {
	switch v {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("param %s: invalid bool %q", key, v)
	}
}

func parseParamInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: invalid int %q: %w", key, v, err)
	}
	return n, nil
}

var _ controller.BatchParams = (*RedisParams)(nil)
