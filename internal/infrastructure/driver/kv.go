package driver

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound key does not exist or has expired
var ErrKeyNotFound = errors.New("key not found")

// KeyValueDB define a key-value storage interface
type KeyValueDB interface {
	// Set store value without expiration
	Set(ctx context.Context, key string, value string) error
	// SetEX store value that expires after expiration
	SetEX(ctx context.Context, key string, value string, expiration time.Duration) error
	// Get returns ErrKeyNotFound when key is absent
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
