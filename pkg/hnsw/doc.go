// Package hnsw implements an in-memory approximate nearest-neighbor index
// backed by a Hierarchical Navigable Small World graph.
//
// The index is built once from a batch of points and is immutable
// thereafter: there is no incremental insertion or deletion. Internally,
// every layer of the graph lives in one contiguous []PointID arena rather
// than as a pointer graph, which keeps construction and search allocation-free
// after the initial build and makes the whole structure trivially
// serializable.
//
// # Quick start
//
//	builder := hnsw.NewBuilder().EfConstruction(200).EfSearch(200)
//	index, remap, err := hnsw.BuildIndex(builder, points)
//	search := new(hnsw.Search)
//	for _, item := range index.Search(&query, search) {
//	    fmt.Println(item.PointID, item.Distance)
//	}
//
// Callers who want a value (not just a PointID) attached to each search hit
// should use HnswMap instead, built with Build.
package hnsw
