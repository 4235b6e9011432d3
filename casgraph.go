// Package casgraph is the embedding surface of the content-addressed
// graph engine: an immutable graph value type (pkg/graph), algebraic
// composition (pkg/algebra), deterministic algorithms (pkg/traverse),
// a canonical codec (pkg/codec) and a persistent content-addressed
// store (pkg/store). The root package ties the store to the codec
// behind a small handle for applications that want persistence without
// wiring the pieces themselves.
package casgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
	"github.com/casgraph/casgraph/pkg/store"
)

// ErrClosed is returned by operations on a closed handle.
var ErrClosed = errors.New("casgraph: handle closed")

// Config configures the handle.
type Config struct {
	// Paths contains data directories. Currently only Paths[0] is used.
	Paths []string
	// InMemory keeps all data in memory, mainly for tests.
	InMemory bool
	// Compression applied to stored graphs.
	Compression store.Compression
	// Logger is an optional structured logger. If nil, a stderr logger
	// is used.
	Logger *slog.Logger
}

// Casgraph is the main handle. It owns the store lifecycle; graph
// values themselves are plain immutable values that outlive the
// handle.
type Casgraph struct {
	log    *slog.Logger
	config Config

	store *store.Store

	closed    atomic.Bool
	closeOnce sync.Once
}

func defaultLogger() *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h)
}

// New opens a handle backed by the configured store.
func New(conf Config) (*Casgraph, error) {
	if !conf.InMemory && len(conf.Paths) == 0 {
		return nil, fmt.Errorf("at least one path must be provided in config")
	}
	if conf.Logger == nil {
		conf.Logger = defaultLogger()
	}

	opts := store.Options{
		InMemory:    conf.InMemory,
		Compression: conf.Compression,
		Logger:      conf.Logger,
	}
	if !conf.InMemory {
		opts.Path = conf.Paths[0]
	}

	st, err := store.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}

	return &Casgraph{
		log:    conf.Logger,
		config: conf,
		store:  st,
	}, nil
}

// SaveGraph persists the graph and returns its content digest.
func (c *Casgraph) SaveGraph(ctx context.Context, g *graph.Graph) (identity.Hash, error) {
	if c.closed.Load() {
		return identity.Hash{}, ErrClosed
	}
	return c.store.Put(ctx, g)
}

// LoadGraph returns the stored graph with the given digest, or
// store.ErrNotFound.
func (c *Casgraph) LoadGraph(ctx context.Context, digest identity.Hash) (*graph.Graph, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.store.Get(ctx, digest)
}

// ListGraphs returns the digests of all stored graphs in canonical
// order.
func (c *Casgraph) ListGraphs(ctx context.Context) ([]identity.Hash, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.store.List(ctx)
}

// DeleteGraph removes the stored graph with the given digest.
func (c *Casgraph) DeleteGraph(ctx context.Context, digest identity.Hash) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.store.Delete(ctx, digest)
}

// Close releases the store. Close is idempotent.
func (c *Casgraph) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.store.Close()
	})
	return err
}
