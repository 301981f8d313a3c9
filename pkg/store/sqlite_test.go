package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/hnswgo/pkg/hnsw"
	"github.com/liliang-cn/hnswgo/pkg/vector"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), DefaultConfig(path))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestSaveAndLoadIndexRoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	points := []vector.Float32Point{
		vector.NewFloat32Point([]float32{0, 0}, vector.Euclidean),
		vector.NewFloat32Point([]float32{1, 1}, vector.Euclidean),
		vector.NewFloat32Point([]float32{2, 2}, vector.Euclidean),
	}
	index, remap, err := hnsw.BuildIndex[vector.Float32Point](hnsw.NewBuilder().Seed(1), points)
	require.NoError(t, err)

	require.NoError(t, SaveIndex(ctx, s, "diagonal", index.Len(), index))

	data, buildID, pointCount, err := LoadIndexBytes(ctx, s, "diagonal")
	require.NoError(t, err)
	require.NotEmpty(t, buildID)
	require.Equal(t, 3, pointCount)

	var loaded hnsw.Hnsw[vector.Float32Point]
	require.NoError(t, loaded.Load(bytes.NewReader(data)))
	require.Equal(t, 3, loaded.Len())

	query := vector.NewFloat32Point([]float32{0, 0}, vector.Euclidean)
	results := loaded.Search(&query, new(hnsw.Search))
	require.Len(t, results, 3)
	require.Equal(t, remap[0], results[0].PointID)
}

func TestLoadIndexBytesMissingCollection(t *testing.T) {
	s := openTestStore(t)
	_, _, _, err := LoadIndexBytes(context.Background(), s, "missing")
	require.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestSaveIndexOverwritesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	points := []vector.Float32Point{vector.NewFloat32Point([]float32{0}, vector.Euclidean)}
	index, _, err := hnsw.BuildIndex[vector.Float32Point](hnsw.NewBuilder(), points)
	require.NoError(t, err)

	require.NoError(t, SaveIndex(ctx, s, "c", 1, index))
	firstData, firstBuildID, _, err := LoadIndexBytes(ctx, s, "c")
	require.NoError(t, err)

	points = append(points, vector.NewFloat32Point([]float32{1}, vector.Euclidean))
	index2, _, err := hnsw.BuildIndex[vector.Float32Point](hnsw.NewBuilder(), points)
	require.NoError(t, err)
	require.NoError(t, SaveIndex(ctx, s, "c", 2, index2))

	secondData, secondBuildID, pointCount, err := LoadIndexBytes(ctx, s, "c")
	require.NoError(t, err)
	require.Equal(t, 2, pointCount)
	require.NotEqual(t, firstBuildID, secondBuildID)
	require.NotEqual(t, firstData, secondData)
}

func TestCollectionsAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	points := []vector.Float32Point{vector.NewFloat32Point([]float32{0}, vector.Euclidean)}
	index, _, err := hnsw.BuildIndex[vector.Float32Point](hnsw.NewBuilder(), points)
	require.NoError(t, err)

	require.NoError(t, SaveIndex(ctx, s, "a", 1, index))
	require.NoError(t, SaveIndex(ctx, s, "b", 1, index))

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, names)

	require.NoError(t, s.DeleteCollection(ctx, "a"))
	names, err = s.Collections(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, names)
}

func TestOperationsFailOnClosedStore(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	_, _, _, err := LoadIndexBytes(context.Background(), s, "x")
	require.ErrorIs(t, err, ErrStoreClosed)
}
