package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotResourcesKey    = "registry:snapshot:resources"
	snapshotFabricationsKey = "registry:snapshot:fabrications"
)

// RedisSnapshotMirror mirrors the registry snapshot to Redis so a restarted
// orchestrator instance can warm-start without a full Postgres reload.
type RedisSnapshotMirror struct {
	client *redis.Client
}

// NewRedisSnapshotMirror creates a Redis-backed SnapshotMirror.
func NewRedisSnapshotMirror(client *redis.Client) *RedisSnapshotMirror {
	if client == nil {
		panic("registry: redis client cannot be nil")
	}
	return &RedisSnapshotMirror{client: client}
}

// Save writes the full resource and fabrication sets as JSON blobs.
func (m *RedisSnapshotMirror) Save(ctx context.Context, resources []Resource, fabrications []KnownFabrication) error {
	resourcesJSON, err := json.Marshal(resources)
	if err != nil {
		return fmt.Errorf("registry: marshal snapshot resources: %w", err)
	}
	fabricationsJSON, err := json.Marshal(fabrications)
	if err != nil {
		return fmt.Errorf("registry: marshal snapshot fabrications: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, snapshotResourcesKey, resourcesJSON, 0)
	pipe.Set(ctx, snapshotFabricationsKey, fabricationsJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("registry: write snapshot mirror: %w", err)
	}
	return nil
}

// Load reads the mirrored resource and fabrication sets back out.
func (m *RedisSnapshotMirror) Load(ctx context.Context) ([]Resource, []KnownFabrication, error) {
	resourcesJSON, err := m.client.Get(ctx, snapshotResourcesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("registry: read mirrored resources: %w", err)
	}
	fabricationsJSON, err := m.client.Get(ctx, snapshotFabricationsKey).Bytes()
	if err != nil && err != redis.Nil {
		return nil, nil, fmt.Errorf("registry: read mirrored fabrications: %w", err)
	}

	var resources []Resource
	if err := json.Unmarshal(resourcesJSON, &resources); err != nil {
		return nil, nil, fmt.Errorf("registry: decode mirrored resources: %w", err)
	}
	var fabrications []KnownFabrication
	if len(fabricationsJSON) > 0 {
		if err := json.Unmarshal(fabricationsJSON, &fabrications); err != nil {
			return nil, nil, fmt.Errorf("registry: decode mirrored fabrications: %w", err)
		}
	}
	return resources, fabrications, nil
}
