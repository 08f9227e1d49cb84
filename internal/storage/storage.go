// Package storage contains storage-agnostic contracts for loading a database
// table into a dataset. Backends register themselves from init() and callers
// pick one by kind through Open.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dataval/internal/dataset"
)

// ErrUnknownKind is returned by Open for a kind no backend registered.
var ErrUnknownKind = errors.New("storage: unknown backend kind")

// Config selects a backend and the table to read.
type Config struct {
	Kind  string // postgres | sqlite | mssql | mysql
	DSN   string
	Table string
	Limit int // 0 reads every row
}

// Loader reads whole tables into column-oriented datasets.
type Loader interface {
	LoadTable(ctx context.Context, table string, limit int) (*dataset.Dataset, error)
	Close()
}

// Opener constructs a Loader for one backend.
type Opener func(ctx context.Context, cfg Config) (Loader, error)

var (
	mu       sync.RWMutex
	registry = map[string]Opener{}
)

// Register makes a backend available under kind. Registering the same kind
// twice replaces the earlier opener.
func Register(kind string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(kind)] = open
}

// Open returns a Loader for cfg.Kind.
func Open(ctx context.Context, cfg Config) (Loader, error) {
	mu.RLock()
	open, ok := registry[strings.ToLower(cfg.Kind)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownKind, cfg.Kind, strings.Join(Kinds(), ", "))
	}
	return open(ctx, cfg)
}

// Kinds lists the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load opens the configured backend, reads cfg.Table and closes the loader.
func Load(ctx context.Context, cfg Config) (*dataset.Dataset, error) {
	l, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.LoadTable(ctx, cfg.Table, cfg.Limit)
}

// QuoteIdent quotes a possibly schema-qualified table name part by part,
// doubling any embedded closing quote.
func QuoteIdent(name, open, close string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("storage: table name must not be empty")
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("storage: malformed table name %q", name)
		}
		parts[i] = open + strings.ReplaceAll(p, close, close+close) + close
	}
	return strings.Join(parts, "."), nil
}
