package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"slotbook/config"
	"slotbook/models"
	"slotbook/services/backend"
	"slotbook/services/schedule"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "session:"

// Session is one signed-in host.
type Session struct {
	ID            string         `json:"id"`
	User          models.User    `json:"user"`
	Cookies       []storedCookie `json:"cookies"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt"`
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newSession(id string, user models.User, cookies []*http.Cookie) *Session {
	s := &Session{ID: id, User: user, CreatedAt: time.Now()}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, storedCookie{Name: c.Name, Value: c.Value})
	}
	return s
}

// BackendCookies returns the cookies to present to the booking backend.
func (s *Session) BackendCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Context returns ctx carrying the session's backend cookies.
func (s *Session) Context(ctx context.Context) context.Context {
	if s == nil {
		return ctx
	}
	return backend.WithCookies(ctx, s.BackendCookies())
}

// Location is the host's timezone, falling back to the configured default.
func (s *Session) Location() *time.Location {
	if s != nil && s.User.Timezone != "" {
		if loc, err := schedule.ParseLocation(s.User.Timezone); err == nil {
			return loc
		}
	}
	loc, err := schedule.ParseLocation(config.AppConfig.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Store keeps sessions in Redis as JSON with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Store on client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.LastUpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get loads a session. A missing session is ErrNoSession.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}
