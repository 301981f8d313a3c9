package hnswgo_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	hnswgo "github.com/liliang-cn/hnswgo"
	"github.com/liliang-cn/hnswgo/pkg/hnsw"
	"github.com/liliang-cn/hnswgo/pkg/store"
	"github.com/liliang-cn/hnswgo/pkg/vector"
)

func TestLoadIndexRoundTrips(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	points := []vector.Float32Point{
		vector.NewFloat32Point([]float32{0, 0}, vector.Euclidean),
		vector.NewFloat32Point([]float32{1, 1}, vector.Euclidean),
	}
	index, _, err := hnsw.BuildIndex[vector.Float32Point](hnsw.NewBuilder(), points)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if err := store.SaveIndex(ctx, s, "pair", index.Len(), index); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	loaded, buildID, err := hnswgo.LoadIndex[vector.Float32Point](ctx, s, "pair")
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if buildID == "" {
		t.Fatalf("expected a non-empty build ID")
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded.Len() = %d, want 2", loaded.Len())
	}
}

func TestLoadIndexMapRoundTrips(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	points := []vector.Float32Point{
		vector.NewFloat32Point([]float32{0, 0}, vector.Euclidean),
		vector.NewFloat32Point([]float32{1, 1}, vector.Euclidean),
	}
	index, err := hnsw.Build(hnsw.NewBuilder(), points, []string{"origin", "diag"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := store.SaveIndex(ctx, s, "labeled", index.Len(), index); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	loaded, _, err := hnswgo.LoadIndexMap[vector.Float32Point, string](ctx, s, "labeled")
	if err != nil {
		t.Fatalf("LoadIndexMap: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded.Len() = %d, want 2", loaded.Len())
	}
}

func TestLoadIndexWrapsNotFound(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, _, err = hnswgo.LoadIndex[vector.Float32Point](ctx, s, "missing")
	if !errors.Is(err, store.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	var opErr *hnswgo.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected error to wrap as *hnswgo.OpError, got %T", err)
	}
}
