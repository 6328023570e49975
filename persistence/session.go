package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the serialized authenticated user under a single key so
// a restart can restore the session without logging in again.
type SessionStore interface {
	Load(ctx context.Context) ([]byte, bool, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

const sessionDocumentID = "current"

// BackendSessionStore keeps the session as one document of the backend.
type BackendSessionStore struct {
	backend Backend
}

func NewBackendSessionStore(b Backend) *BackendSessionStore {
	return &BackendSessionStore{backend: b}
}

func (s *BackendSessionStore) Load(ctx context.Context) ([]byte, bool, error) {
	docs, err := s.backend.ReadAll(ctx, CollectionSession)
	if err != nil {
		return nil, false, err
	}
	for _, d := range docs {
		if d.ID == sessionDocumentID {
			return d.Data, true, nil
		}
	}
	return nil, false, nil
}

func (s *BackendSessionStore) Save(ctx context.Context, data []byte) error {
	return s.backend.Write(ctx, CollectionSession, sessionDocumentID, data)
}

func (s *BackendSessionStore) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, CollectionSession, sessionDocumentID)
}

// RedisSessionStore keeps the session under one redis key.
type RedisSessionStore struct {
	client *redis.Client
	key    string
}

// NewRedisSessionStore parses a redis URL and checks the connection.
func NewRedisSessionStore(ctx context.Context, url, key string) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSessionStoreWithClient(client, key), nil
}

func NewRedisSessionStoreWithClient(client *redis.Client, key string) *RedisSessionStore {
	if key == "" {
		key = "cabinet:session"
	}
	return &RedisSessionStore{client: client, key: key}
}

func (s *RedisSessionStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session: %w", err)
	}
	return data, true, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
