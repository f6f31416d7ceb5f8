package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestCheckHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	up := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() {
		_ = up.Close()
		_ = down.Close()
	})

	status := CheckHealth(context.Background(), []*redis.Client{up, down}, func(context.Context) error {
		return errors.New("backend unreachable")
	})

	if len(status.Redis) != 2 || !status.Redis[0] || status.Redis[1] {
		t.Fatalf("unexpected redis health: %v", status.Redis)
	}
	if status.Backend {
		t.Fatal("expected backend to be reported unhealthy")
	}
	if got := GetHealthStatus(); got.CheckedAt != status.CheckedAt {
		t.Fatal("snapshot was not stored")
	}
}

func TestStartHealthMonitorRejectsBadSpec(t *testing.T) {
	if _, err := StartHealthMonitor("not a spec", nil, nil); err == nil {
		t.Fatal("expected invalid cron spec error")
	}
}
