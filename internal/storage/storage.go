// Package storage is a string-keyed persistent store with a forgiving
// get/set contract: reads fall back to a default and writes never fail
// the caller.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const (
	KeyTasks = "tasks"
	KeyTrash = "trashedItems"
)

// Backend is the raw persistence primitive.
type Backend interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Delete(key string) error
	Close() error
}

type Adapter struct {
	backend Backend
	log     *slog.Logger

	mu      sync.Mutex
	lastErr error
}

func New(backend Backend, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{backend: backend, log: logger}
}

// Load decodes the value stored under key into dst. Strings are read
// verbatim when dst is a *string. It reports false, leaving dst untouched,
// when the key is absent or anything goes wrong.
func (a *Adapter) Load(key string, dst any) bool {
	raw, ok, err := a.backend.Read(key)
	if err != nil {
		a.fail("read", key, err)
		return false
	}
	if !ok {
		return false
	}
	if s, isString := dst.(*string); isString {
		*s = raw
		return true
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.fail("decode", key, err)
		return false
	}
	return true
}

// Save encodes v and writes it under key. Failures are logged and kept
// for Err; they are never returned.
func (a *Adapter) Save(key string, v any) {
	var raw string
	switch val := v.(type) {
	case string:
		raw = val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			a.fail("encode", key, err)
			return
		}
		raw = string(data)
	}
	if err := a.backend.Write(key, raw); err != nil {
		a.fail("write", key, err)
		return
	}
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
}

// Remove drops key so later loads fall back to their default. Failures are
// handled like Save failures.
func (a *Adapter) Remove(key string) {
	if err := a.backend.Delete(key); err != nil {
		a.fail("delete", key, err)
		return
	}
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
}

// Err returns the most recent failure, cleared by the next successful Save or Remove.
func (a *Adapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Adapter) Close() error {
	return a.backend.Close()
}

func (a *Adapter) fail(op, key string, err error) {
	a.log.Error("storage "+op+" failed", "key", key, "err", err)
	a.mu.Lock()
	a.lastErr = fmt.Errorf("%s %q: %w", op, key, err)
	a.mu.Unlock()
}

// Get returns the value under key, or def when it is absent or unreadable.
func Get[T any](a *Adapter, key string, def T) T {
	var v T
	if !a.Load(key, &v) {
		return def
	}
	return v
}

func Set[T any](a *Adapter, key string, v T) {
	a.Save(key, v)
}
