package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

// Redis persists a dashboard's layout in one Redis hash, fields keyed by item
// id and values holding the JSON-encoded layout. Suitable for multi-instance
// deployments where several hosts render the same dashboard.
type Redis struct {
	client    redis.UniversalClient
	dashboard string
}

// NewRedis creates a Redis-backed store for the named dashboard. The client
// is shared, not owned: closing it is the caller's responsibility.
func NewRedis(client redis.UniversalClient, dashboard string) *Redis {
	return &Redis{client: client, dashboard: dashboard}
}

func (r *Redis) key() string {
	return "gridboard:layout:" + r.dashboard
}

// LoadAll reads the whole hash. A missing key is an empty layout.
func (r *Redis) LoadAll(ctx context.Context, _ int) ([]grid.ItemLayout, error) {
	fields, err := r.client.HGetAll(ctx, r.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", r.key(), err)
	}
	out := make([]grid.ItemLayout, 0, len(fields))
	for id, raw := range fields {
		var it grid.ItemLayout
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("redis decode item %s: %w", id, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// OnItemsAdded stores the new items.
func (r *Redis) OnItemsAdded(ctx context.Context, items []grid.ItemLayout, _ int) error {
	return r.set(ctx, items)
}

// OnItemsUpdated overwrites the stored layout of each item.
func (r *Redis) OnItemsUpdated(ctx context.Context, items []grid.ItemLayout, _ int) error {
	return r.set(ctx, items)
}

// OnItemsDeleted removes the items' hash fields.
func (r *Redis) OnItemsDeleted(ctx context.Context, items []grid.ItemLayout, _ int) error {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := r.client.HDel(ctx, r.key(), ids...).Err(); err != nil {
		return fmt.Errorf("redis delete from %s: %w", r.key(), err)
	}
	return nil
}

func (r *Redis) set(ctx context.Context, items []grid.ItemLayout) error {
	pairs := make([]any, 0, len(items)*2)
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("redis encode item %s: %w", it.ID, err)
		}
		pairs = append(pairs, it.ID, raw)
	}
	if err := r.client.HSet(ctx, r.key(), pairs...).Err(); err != nil {
		return fmt.Errorf("redis write %s: %w", r.key(), err)
	}
	return nil
}
