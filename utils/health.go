package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Backend   bool      `json:"backend"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth probes every dependency once and stores the snapshot.
func CheckHealth(ctx context.Context, redisClients []*redis.Client, backend Probe) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var redisHealth []bool
	for _, client := range redisClients {
		err := client.Ping(ctx).Err()
		redisHealth = append(redisHealth, err == nil)
	}

	backendHealthy := true
	if backend != nil {
		if err := backend(ctx); err != nil {
			GetLogger().Warn("backend health probe failed", zap.Error(err))
			backendHealthy = false
		}
	}

	status := HealthStatus{
		Backend:   backendHealthy,
		Redis:     redisHealth,
		CheckedAt: time.Now(),
	}
	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor schedules CheckHealth on the given cron spec. The caller
// stops the returned scheduler on shutdown.
func StartHealthMonitor(spec string, redisClients []*redis.Client, backend Probe) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		CheckHealth(context.Background(), redisClients, backend)
	}); err != nil {
		return nil, err
	}
	CheckHealth(context.Background(), redisClients, backend)
	c.Start()
	return c, nil
}
