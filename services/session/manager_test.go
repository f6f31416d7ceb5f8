package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend/fakebackend"
	"slotbook/services/cache"
	"slotbook/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

var host = models.User{
	ID:         "1",
	Email:      "host@x.com",
	Name:       "Host",
	UserID:     "user-1",
	SharableID: "11111111-1111-4111-8111-111111111111",
	Timezone:   "+05:30",
}

type fixture struct {
	mr      *miniredis.Miniredis
	fake    *fakebackend.Fake
	manager *Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	fake := fakebackend.New()
	fake.AddHost(host, "secret1")
	m := NewManager(fake, NewStore(client, time.Hour), cache.NewQueryCache(client), 5*time.Minute, time.Hour)
	return fixture{mr: mr, fake: fake, manager: m}
}

func TestLoginResolveLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, token, err := f.manager.Login(ctx, models.LoginRequest{Email: host.Email, Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.User != host || token == "" {
		t.Fatalf("session = %+v", sess)
	}
	if sub, err := utils.ExtractIDFromToken(token); err != nil || sub != sess.ID {
		t.Fatalf("token subject = %q, %v", sub, err)
	}

	got, err := f.manager.Resolve(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != sess.ID || got.User.SharableID != host.SharableID {
		t.Fatalf("resolved %+v", got)
	}
	// The identity was primed at login; no probe yet.
	if n := f.fake.Calls("Me"); n != 0 {
		t.Fatalf("Me called %d times", n)
	}

	if err := f.manager.Logout(ctx, got); err != nil {
		t.Fatal(err)
	}
	if f.mr.Exists(sessionPrefix+sess.ID) || f.mr.Exists(cache.CurrentUserKey(sess.ID)) {
		t.Fatal("logout left session state behind")
	}
	if _, err := f.manager.Resolve(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("resolve after logout err = %v", err)
	}
}

func TestResolveProbesBackendAfterStaleTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, token, err := f.manager.Login(ctx, models.LoginRequest{Email: host.Email, Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	f.mr.FastForward(6 * time.Minute)
	if _, err := f.manager.Resolve(ctx, token); err != nil {
		t.Fatal(err)
	}
	if n := f.fake.Calls("Me"); n != 1 {
		t.Fatalf("Me called %d times, want 1", n)
	}
	if _, err := f.manager.Resolve(ctx, token); err != nil {
		t.Fatal(err)
	}
	if n := f.fake.Calls("Me"); n != 1 {
		t.Fatalf("fresh identity should be reused, Me called %d times", n)
	}
}

func TestResolveEndsSessionOnBackend401(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, token, err := f.manager.Login(ctx, models.LoginRequest{Email: host.Email, Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	f.mr.FastForward(6 * time.Minute)
	f.fake.FailNext("Me", &apierr.TransportFailure{Status: http.StatusUnauthorized})

	if _, err := f.manager.Resolve(ctx, token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v", err)
	}
	if f.mr.Exists(sessionPrefix + sess.ID) {
		t.Fatal("expired session kept")
	}
	if n := f.fake.Calls("Me"); n != 1 {
		t.Fatalf("identity probe retried: %d calls", n)
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	for _, token := range []string{"", "garbage"} {
		if _, err := f.manager.Resolve(context.Background(), token); !IsUnauthenticated(err) {
			t.Fatalf("Resolve(%q) err = %v", token, err)
		}
	}
}

func TestLoginFailurePassesThrough(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.manager.Login(context.Background(), models.LoginRequest{Email: host.Email, Password: "wrong!!"})
	if !apierr.IsAuth(err) {
		t.Fatalf("err = %v", err)
	}
	if got := apierr.Message(err, "Login failed"); got != "Invalid email or password" {
		t.Fatalf("message = %q", got)
	}
}

func TestSignupOpensSession(t *testing.T) {
	f := newFixture(t)
	sess, _, err := f.manager.Signup(context.Background(), models.SignupRequest{
		Name: "New", Email: "new@x.com", Password: "secret1", Timezone: "-03:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, off := time.Now().In(sess.Location()).Zone(); off != -3*3600 {
		t.Fatalf("location offset = %d", off)
	}
	if len(sess.BackendCookies()) != 1 {
		t.Fatalf("cookies = %+v", sess.BackendCookies())
	}
}
