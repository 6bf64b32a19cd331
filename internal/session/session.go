// Package session issues and resolves the opaque tokens that identify a
// signed-in user. A token is an HS256-signed JWT carrying a random session
// id; the id must also exist in the server-side session store, so logout
// genuinely revokes a token before it expires.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidSession covers expired, revoked, malformed and forged tokens.
var ErrInvalidSession = errors.New("invalid session")

// Backend is the server-side session state: session id -> user id with TTL.
type Backend interface {
	Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type Manager struct {
	secret  []byte
	ttl     time.Duration
	backend Backend
}

func NewManager(secret string, ttl time.Duration, backend Backend) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, backend: backend}
}

// Issue creates a session for userID and returns the signed token.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.Must(uuid.NewV4()).String()
	if err := m.backend.Put(ctx, sessionID, userID, m.ttl); err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sid": sessionID,
		"sub": userID,
		"exp": time.Now().Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Resolve returns the user id a token belongs to, or ErrInvalidSession.
func (m *Manager) Resolve(ctx context.Context, tokenStr string) (string, error) {
	sessionID, err := m.sessionID(tokenStr)
	if err != nil {
		return "", err
	}
	userID, err := m.backend.Get(ctx, sessionID)
	if err != nil {
		return "", ErrInvalidSession
	}
	return userID, nil
}

// Revoke deletes the server-side session so the token stops resolving.
func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	sessionID, err := m.sessionID(tokenStr)
	if err != nil {
		return err
	}
	return m.backend.Delete(ctx, sessionID)
}

func (m *Manager) sessionID(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSession
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidSession
	}
	return sessionID, nil
}

// RedisBackend keeps session state in Redis under sess:<id> keys.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) key(sessionID string) string { return "sess:" + sessionID }

func (b *RedisBackend) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return b.client.Set(ctx, b.key(sessionID), userID, ttl).Err()
}

func (b *RedisBackend) Get(ctx context.Context, sessionID string) (string, error) {
	userID, err := b.client.Get(ctx, b.key(sessionID)).Result()
	if err != nil {
		return "", ErrInvalidSession
	}
	return userID, nil
}

func (b *RedisBackend) Delete(ctx context.Context, sessionID string) error {
	return b.client.Del(ctx, b.key(sessionID)).Err()
}

// MemoryBackend keeps session state in process memory. Used when Redis is
// not configured; sessions do not survive a restart.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]memorySession)}
}

func (b *MemoryBackend) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (b *MemoryBackend) Get(ctx context.Context, sessionID string) (string, error) {
	b.mu.RLock()
	s, ok := b.sessions[sessionID]
	b.mu.RUnlock()
	if !ok || time.Now().After(s.expiresAt) {
		return "", ErrInvalidSession
	}
	return s.userID, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	return nil
}
