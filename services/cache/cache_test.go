package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestCache(t *testing.T) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewQueryCache(client), mr
}

func TestKeys(t *testing.T) {
	if got := AvailableSlotsKey("abc", -2); got != "appointments:availableSlots:abc:-2" {
		t.Fatalf("AvailableSlotsKey = %q", got)
	}
	if got := AppointmentsKey("abc", models.AppointmentsFuture, 1, 10); got != "appointments:list:abc:future:1:10" {
		t.Fatalf("AppointmentsKey = %q", got)
	}
	if got := CurrentUserKey("s1"); got != "auth:currentUser:s1" {
		t.Fatalf("CurrentUserKey = %q", got)
	}
	if got := LockKey("edit", "a1"); got != "mutation:edit:a1" {
		t.Fatalf("LockKey = %q", got)
	}
}

func TestFetchCachesSuccess(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]models.DaySlots, error) {
		calls++
		return []models.DaySlots{{DayID: 1, Slots: []models.Slot{{ID: "S1"}}}}, nil
	}

	key := AvailableSlotsKey("abc", 0)
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, key, time.Minute, load)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Slots[0].ID != "S1" {
			t.Fatalf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("load called %d times, want 1", calls)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := Fetch(ctx, c, key, time.Minute, load); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("expired entry should reload, calls = %d", calls)
	}
}

func TestFetchDoesNotCacheFailure(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), c, "appointments:x", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if mr.Exists("appointments:x") {
		t.Fatal("failure was cached")
	}
}

func TestFetchCollapsesConcurrentReads(t *testing.T) {
	c, _ := newTestCache(t)
	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := Fetch(context.Background(), c, "appointments:k", time.Minute, load); err != nil || v != "v" {
				t.Errorf("Fetch = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("load called %d times, want 1", n)
	}
}

func TestInvalidateScope(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Set(AvailableSlotsKey("abc", 0), "[]")
	mr.Set(AppointmentsKey("abc", models.AppointmentsFuture, 1, 10), "{}")
	mr.Set(CurrentUserKey("s1"), "{}")

	if err := c.InvalidateScope(ctx, ScopeAppointments); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(AvailableSlotsKey("abc", 0)) || mr.Exists(AppointmentsKey("abc", models.AppointmentsFuture, 1, 10)) {
		t.Fatal("appointment reads survived invalidation")
	}
	if !mr.Exists(CurrentUserKey("s1")) {
		t.Fatal("auth scope must be untouched")
	}
	if g := c.Generation(ctx, ScopeAppointments); g != 1 {
		t.Fatalf("generation = %d, want 1", g)
	}
}

func TestFetchSkipsStoreWhenInvalidatedMidFlight(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := AvailableSlotsKey("abc", 0)
	_, err := Fetch(ctx, c, key, time.Minute, func(ctx context.Context) (string, error) {
		if err := c.InvalidateScope(ctx, ScopeAppointments); err != nil {
			return "", err
		}
		return "stale", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if mr.Exists(key) {
		t.Fatal("result read before invalidation was stored")
	}
}

func TestFetchAfterInvalidationDoesNotJoinEarlierFlight(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := AvailableSlotsKey("abc", 0)

	started := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan string)
	go func() {
		v, err := Fetch(ctx, c, key, time.Minute, func(context.Context) (string, error) {
			close(started)
			<-release
			return "S1 free", nil
		})
		if err != nil {
			t.Errorf("first Fetch: %v", err)
		}
		firstDone <- v
	}()
	<-started

	if err := c.InvalidateScope(ctx, ScopeAppointments); err != nil {
		t.Fatal(err)
	}
	got, err := Fetch(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "S1 booked", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "S1 booked" {
		t.Fatalf("read after invalidation = %q, want %q", got, "S1 booked")
	}

	close(release)
	if v := <-firstDone; v != "S1 free" {
		t.Fatalf("first Fetch = %q", v)
	}
	cached, err := Fetch(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "reloaded", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if cached != "S1 booked" {
		t.Fatalf("cached value = %q, want the post-invalidation read", cached)
	}
}

func TestFetchSharedLoadSurvivesCallerCancel(t *testing.T) {
	c, _ := newTestCache(t)
	key := AvailableSlotsKey("abc", 0)
	first, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "v", nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		Fetch(first, c, key, time.Minute, load)
	}()
	<-started
	var got string
	var gotErr error
	go func() {
		defer wg.Done()
		got, gotErr = Fetch(context.Background(), c, key, time.Minute, func(context.Context) (string, error) {
			return "", errors.New("joined caller should share the running load")
		})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	if gotErr != nil || got != "v" {
		t.Fatalf("joined Fetch = %q, %v", got, gotErr)
	}
}

func TestLockerLogsFailedRelease(t *testing.T) {
	c, mr := newTestCache(t)
	core, logs := observer.New(zapcore.WarnLevel)
	prev := utils.GetLogger()
	utils.Logger = zap.New(core)
	t.Cleanup(func() { utils.Logger = prev })

	l := NewLocker(c.Client(), 30*time.Second)
	release, err := l.Acquire(context.Background(), LockKey("edit", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	mr.SetError("server unavailable")
	release()
	mr.SetError("")

	entries := logs.FilterMessageSnippet("release failed").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	if key := entries[0].ContextMap()["key"]; key != LockKey("edit", "a1") {
		t.Fatalf("logged key = %v", key)
	}
}

func TestLocker(t *testing.T) {
	c, mr := newTestCache(t)
	l := NewLocker(c.Client(), 30*time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, LockKey("delete", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire(ctx, LockKey("delete", "a1")); !errors.Is(err, ErrLocked) {
		t.Fatalf("second acquire err = %v", err)
	}
	if _, err := l.Acquire(ctx, LockKey("delete", "a2")); err != nil {
		t.Fatalf("other key should be free: %v", err)
	}
	release()
	if mr.Exists(LockKey("delete", "a1")) {
		t.Fatal("release left the key behind")
	}

	// An expired guard taken over by someone else is not released by the
	// original holder.
	release, _ = l.Acquire(ctx, LockKey("edit", "a1"))
	mr.FastForward(time.Minute)
	if _, err := l.Acquire(ctx, LockKey("edit", "a1")); err != nil {
		t.Fatal(err)
	}
	release()
	if !mr.Exists(LockKey("edit", "a1")) {
		t.Fatal("stale release removed the new holder's guard")
	}
}
