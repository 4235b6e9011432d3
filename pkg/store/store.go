// Package store persists graph values in a badger-backed
// content-addressed store. Graphs are keyed by their digest, so
// storing the same graph twice writes the same key with the same
// bytes: Put is idempotent. Values are the canonical codec encoding,
// optionally compressed.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/casgraph/casgraph/pkg/codec"
	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
)

const keyPrefix = "graph:"

// ErrNotFound is returned by Get for a digest with no stored graph.
var ErrNotFound = errors.New("store: graph not found")

// Compression selects how stored values are compressed.
type Compression byte

const (
	NoCompression Compression = 0x00
	Zstd          Compression = 0x01
	XZ            Compression = 0x02
)

// Options configures a Store.
type Options struct {
	// Path is the badger data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps all data in memory, mainly for tests.
	InMemory bool
	// Compression applied to stored values. Reads handle every
	// supported compression regardless of this setting.
	Compression Compression
	// Logger is an optional structured logger. If nil, a stderr
	// logger is used.
	Logger *slog.Logger
}

// Store is a content-addressed graph store. It is safe for concurrent
// use.
type Store struct {
	db   *badger.DB
	log  *slog.Logger
	comp Compression

	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Store{
		db:      db,
		log:     opts.Logger,
		comp:    opts.Compression,
		zstdEnc: enc,
		zstdDec: dec,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.zstdEnc.Close()
	s.zstdDec.Close()
	return s.db.Close()
}

// Put stores the graph and returns its digest. Storing an
// already-present graph rewrites the identical value.
func (s *Store) Put(ctx context.Context, g *graph.Graph) (identity.Hash, error) {
	if err := ctx.Err(); err != nil {
		return identity.Hash{}, err
	}

	digest := g.Digest()
	encoded := codec.Encode(g)
	value, err := s.compress(encoded)
	if err != nil {
		return identity.Hash{}, fmt.Errorf("compress graph: %w", err)
	}

	key := []byte(keyPrefix + digest.String())
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return identity.Hash{}, fmt.Errorf("persist graph: %w", err)
	}

	s.log.Debug("stored graph",
		"digest", digest.String(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"bytes", len(value),
	)
	return digest, nil
}

// Get loads the graph with the given digest. It returns ErrNotFound
// if no such graph is stored.
func (s *Store) Get(ctx context.Context, digest identity.Hash) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(keyPrefix + digest.String())
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	encoded, err := s.decompress(value)
	if err != nil {
		return nil, fmt.Errorf("decompress graph: %w", err)
	}
	g, err := codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	if actual := g.Digest(); actual != digest {
		return nil, fmt.Errorf("store: digest mismatch: stored %s, decoded %s", digest, actual)
	}
	return g, nil
}

// Has reports whether a graph with the given digest is stored.
func (s *Store) Has(ctx context.Context, digest identity.Hash) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := []byte(keyPrefix + digest.String())
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe graph: %w", err)
	}
	return true, nil
}

// Delete removes the graph with the given digest. Deleting an absent
// digest is a no-op.
func (s *Store) Delete(ctx context.Context, digest identity.Hash) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(keyPrefix + digest.String())
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	return nil
}

// List returns the digests of all stored graphs in canonical order.
func (s *Store) List(ctx context.Context) ([]identity.Hash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var digests []identity.Hash
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hexDigest := strings.TrimPrefix(string(it.Item().Key()), keyPrefix)
			digest, err := identity.HashHexadecimal(hexDigest)
			if err != nil {
				return fmt.Errorf("parse stored key %q: %w", hexDigest, err)
			}
			digests = append(digests, digest)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	return digests, nil
}

// value layout: one compression flag byte followed by the (possibly
// compressed) codec bytes.

func (s *Store) compress(data []byte) ([]byte, error) {
	switch s.comp {
	case NoCompression:
		return append([]byte{byte(NoCompression)}, data...), nil
	case Zstd:
		return s.zstdEnc.EncodeAll(data, []byte{byte(Zstd)}), nil
	case XZ:
		var buf bytes.Buffer
		buf.WriteByte(byte(XZ))
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("create xz writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("xz compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finish xz stream: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", s.comp)
	}
}

func (s *Store) decompress(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, errors.New("empty stored value")
	}

	data := value[1:]
	switch Compression(value[0]) {
	case NoCompression:
		return data, nil
	case Zstd:
		return s.zstdDec.DecodeAll(data, nil)
	case XZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unknown compression flag 0x%02x", value[0])
	}
}
