package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"

	"messenger/internal/app/model"
)

// ErrDocumentMissing is returned by backends that have never stored a document.
var ErrDocumentMissing = errors.New("document not found")

// DocumentStore holds the single shared document as raw JSON. Backends do
// not interpret the document; shape validation happens in the handler.
type DocumentStore interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Load returns the stored document, or an empty document when nothing has
	// been stored yet.
	Load(ctx context.Context) ([]byte, error)

	// Save overwrites the stored document.
	Save(ctx context.Context, doc []byte) error
}

// emptyDocument is served before the first save.
func emptyDocument() []byte {
	raw, err := json.Marshal(model.EmptyDocument())
	if err != nil {
		panic(err)
	}
	return raw
}

// FileStore keeps the document in a local JSON file.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore returns a FileStore at path, creating the file with an
// empty document when it does not exist.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	fs := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := fs.Save(context.Background(), emptyDocument()); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Load(_ context.Context) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument(), nil
	}
	return raw, err
}

// Save writes to a temporary file and renames it over the document so a
// crash never leaves a truncated document behind.
func (f *FileStore) Save(_ context.Context, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".database-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// RedisStore keeps the document under one Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyDocument(), nil
	}
	return raw, err
}

func (r *RedisStore) Save(ctx context.Context, doc []byte) error {
	return r.client.Set(ctx, r.key, doc, 0).Err()
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
