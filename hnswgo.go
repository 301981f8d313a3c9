package hnswgo

import (
	"bytes"
	"context"

	"github.com/liliang-cn/hnswgo/pkg/hnsw"
	"github.com/liliang-cn/hnswgo/pkg/store"
)

// LoadIndex loads and decodes the bare index saved under name, returning its
// build ID alongside it. It is a thin convenience wrapper over
// store.LoadIndexBytes for callers who saved a plain *hnsw.Hnsw[P] (as
// opposed to a value-carrying *hnsw.HnswMap[P, V], which LoadIndexMap
// handles).
func LoadIndex[P hnsw.Point[P]](ctx context.Context, s *store.Store, name string) (*hnsw.Hnsw[P], string, error) {
	data, buildID, _, err := store.LoadIndexBytes(ctx, s, name)
	if err != nil {
		return nil, "", wrapError("load_index", err)
	}

	index := &hnsw.Hnsw[P]{}
	if err := index.Load(bytes.NewReader(data)); err != nil {
		return nil, "", wrapError("load_index", err)
	}
	if index.Len() == 0 {
		return nil, "", wrapError("load_index", ErrEmptyIndex)
	}
	return index, buildID, nil
}

// LoadIndexMap loads and decodes a value-carrying index saved under name via
// store.SaveIndex(ctx, s, name, n, m) where m is an *hnsw.HnswMap[P, V].
func LoadIndexMap[P hnsw.Point[P], V any](ctx context.Context, s *store.Store, name string) (*hnsw.HnswMap[P, V], string, error) {
	data, buildID, _, err := store.LoadIndexBytes(ctx, s, name)
	if err != nil {
		return nil, "", wrapError("load_index_map", err)
	}

	index := &hnsw.HnswMap[P, V]{}
	if err := index.Load(bytes.NewReader(data)); err != nil {
		return nil, "", wrapError("load_index_map", err)
	}
	if index.Len() == 0 {
		return nil, "", wrapError("load_index_map", ErrEmptyIndex)
	}
	return index, buildID, nil
}
