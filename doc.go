// Package hnswgo builds, persists and queries approximate nearest-neighbor
// indexes over float32 vectors using a Hierarchical Navigable Small World
// graph (pkg/hnsw).
//
// hnswgo is a 100% pure Go implementation: no CGO, no BLAS, no platform
// intrinsics. The index is immutable once built, is safe to query from
// multiple goroutines concurrently, and serializes to a single gob-encoded
// blob that pkg/store can persist to SQLite (via modernc.org/sqlite) keyed
// by collection name.
//
// # Quick start
//
//	points := []vector.Float32Point{...}
//	builder := hnsw.NewBuilder().EfConstruction(200).EfSearch(200)
//	index, _, err := hnsw.BuildIndex(builder, points)
//
//	search := new(hnsw.Search)
//	query := vector.NewFloat32Point(queryVec, vector.Euclidean)
//	for _, item := range index.Search(&query, search) {
//	    fmt.Println(item.PointID, item.Distance)
//	}
//
// # Persistence
//
//	db, _ := store.Open(ctx, store.DefaultConfig("vectors.db"))
//	defer db.Close()
//	store.SaveIndex(ctx, db, "my-collection", index.Len(), index)
//	loaded, buildID, _ := hnswgo.LoadIndex[vector.Float32Point](ctx, db, "my-collection")
//
// For loading raw embedding files and the CLI front-end, see pkg/loader and
// cmd/hnswgo respectively.
package hnswgo
