package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// ChaosSwitch is the fault-injection flag that slows down menu reads.
type ChaosSwitch interface {
	Enabled(ctx context.Context) (bool, error)
	Set(ctx context.Context, enabled bool) error
}

type memoryChaos struct {
	on atomic.Bool
}

// NewMemoryChaos keeps the flag in process. Each replica has its own switch.
func NewMemoryChaos() ChaosSwitch {
	return &memoryChaos{}
}

func (m *memoryChaos) Enabled(context.Context) (bool, error) {
	return m.on.Load(), nil
}

func (m *memoryChaos) Set(_ context.Context, enabled bool) error {
	m.on.Store(enabled)
	return nil
}

const chaosKey = "pizza:chaos"

type redisChaos struct {
	rdb *redis.Client
}

// NewRedisChaos shares the flag between every replica pointed at the same Redis.
func NewRedisChaos(rdb *redis.Client) ChaosSwitch {
	return &redisChaos{rdb: rdb}
}

func (r *redisChaos) Enabled(ctx context.Context) (bool, error) {
	v, err := r.rdb.Get(ctx, chaosKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read chaos flag: %w", err)
	}
	return v == "1", nil
}

func (r *redisChaos) Set(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := r.rdb.Set(ctx, chaosKey, v, 0).Err(); err != nil {
		return fmt.Errorf("failed to write chaos flag: %w", err)
	}
	return nil
}
