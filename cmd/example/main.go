package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/casgraph/casgraph"
	"github.com/casgraph/casgraph/internal/config"
	"github.com/casgraph/casgraph/pkg/algebra"
	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/logging"
	"github.com/casgraph/casgraph/pkg/store"
	"github.com/casgraph/casgraph/pkg/traverse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	conf := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			return err
		}
		conf = loaded
	}

	log := logging.New(parseLevel(conf.LogLevel))

	cg, err := casgraph.New(casgraph.Config{
		Paths:       []string{conf.Path},
		Compression: parseCompression(conf.Compression),
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer cg.Close()

	// Build a small dependency graph.
	g := graph.Empty()
	g, base := g.InsertNode([]byte("base"))
	g, lib := g.InsertNode([]byte("lib"))
	g, app := g.InsertNode([]byte("app"))
	g, _, err = g.InsertEdge(base, lib, []byte("depends"))
	if err != nil {
		return err
	}
	g, _, err = g.InsertEdge(lib, app, []byte("depends"))
	if err != nil {
		return err
	}

	// Compose it with a second graph sharing the base node.
	h := graph.Empty()
	h, _ = h.InsertNode([]byte("base"))
	h, tool := h.InsertNode([]byte("tool"))
	h, _, err = h.InsertEdge(base, tool, []byte("depends"))
	if err != nil {
		return err
	}

	merged := algebra.Union(g, h)
	log.Info("composed graphs",
		"nodes", merged.NodeCount(),
		"edges", merged.EdgeCount(),
	)

	order, err := traverse.TopologicalSort(merged)
	if err != nil {
		return fmt.Errorf("order dependency graph: %w", err)
	}
	for i, id := range order {
		node, _ := merged.Node(id)
		log.Info("build step", "index", i, "payload", string(node.Payload))
	}

	ctx := context.Background()
	digest, err := cg.SaveGraph(ctx, merged)
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	log.Info("persisted graph", "digest", digest.String())

	loaded, err := cg.LoadGraph(ctx, digest)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	log.Info("round trip", "equal", loaded.Equal(merged))

	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseCompression(s string) store.Compression {
	switch s {
	case "none":
		return store.NoCompression
	case "xz":
		return store.XZ
	default:
		return store.Zstd
	}
}
