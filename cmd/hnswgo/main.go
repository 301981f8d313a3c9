package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/hnswgo/pkg/hnsw"
	"github.com/liliang-cn/hnswgo/pkg/loader"
	"github.com/liliang-cn/hnswgo/pkg/store"
	"github.com/liliang-cn/hnswgo/pkg/vector"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hnswgo",
	Short: "CLI tool for building and querying HNSW vector indexes",
	Long:  `A command-line interface for building approximate nearest-neighbor indexes from fastText-format vector files and persisting them to SQLite.`,
}

var buildCmd = &cobra.Command{
	Use:   "build <collection> <vec-file>",
	Short: "Build an index from a fastText-format vector file and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, path := args[0], args[1]

		limit, _ := cmd.Flags().GetInt("limit")
		metricName, _ := cmd.Flags().GetString("metric")
		efConstruction, _ := cmd.Flags().GetInt("ef-construction")
		efSearch, _ := cmd.Flags().GetInt("ef-search")
		workers, _ := cmd.Flags().GetInt("workers")
		seed, _ := cmd.Flags().GetUint64("seed")

		metric, err := parseMetric(metricName)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %q: %w", path, err)
		}
		defer f.Close()

		vecs, err := loader.LoadFastText(f, limit, metric)
		if err != nil {
			return fmt.Errorf("load vectors: %w", err)
		}
		if verbose {
			fmt.Printf("loaded %d vectors from %s\n", len(vecs.Words), path)
		}

		builder := hnsw.NewBuilder().
			EfConstruction(efConstruction).
			EfSearch(efSearch)
		if workers > 0 {
			builder = builder.Workers(workers)
		}
		if cmd.Flags().Changed("seed") {
			builder = builder.Seed(seed)
		}

		index, err := hnsw.Build(builder, vecs.Points, vecs.Words)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		if err := store.SaveIndex(ctx, s, collection, index.Len(), index); err != nil {
			return fmt.Errorf("save index: %w", err)
		}

		fmt.Printf("Collection %q built with %d points, saved to %s\n", collection, index.Len(), dbPath)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Find the nearest neighbors of a vector in a saved collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := args[0]

		vectorStr, _ := cmd.Flags().GetString("vector")
		topK, _ := cmd.Flags().GetInt("top-k")
		metricName, _ := cmd.Flags().GetString("metric")
		if vectorStr == "" {
			return fmt.Errorf("--vector is required")
		}

		metric, err := parseMetric(metricName)
		if err != nil {
			return err
		}

		values, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		data, buildID, pointCount, err := store.LoadIndexBytes(ctx, s, collection)
		if err != nil {
			return fmt.Errorf("load collection %q: %w", collection, err)
		}

		var index hnsw.HnswMap[vector.Float32Point, string]
		if err := index.Load(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("decode collection %q: %w", collection, err)
		}
		if verbose {
			fmt.Printf("loaded build %s, %d points\n", buildID, pointCount)
		}

		query := vector.NewFloat32Point(values, metric)
		search := new(hnsw.Search)
		results := index.Search(&query, search)
		if topK > 0 && topK < len(results) {
			results = results[:topK]
		}

		for i, item := range results {
			fmt.Printf("%d. %s (distance: %.6f)\n", i+1, item.Value, item.Distance)
		}
		return nil
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List saved collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		names, err := s.Collections(context.Background())
		if err != nil {
			return fmt.Errorf("list collections: %w", err)
		}

		fmt.Printf("Collections (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <collection>",
	Short: "Delete a saved collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteCollection(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete collection %q: %w", args[0], err)
		}
		fmt.Printf("Collection %q deleted\n", args[0])
		return nil
	},
}

func parseMetric(name string) (vector.Metric, error) {
	switch name {
	case "euclidean", "":
		return vector.Euclidean, nil
	case "cosine":
		return vector.Cosine, nil
	case "dot":
		return vector.Dot, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", name)
	}
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		values[i] = float32(v)
	}
	return values, nil
}

func openStore() (*store.Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path not specified")
	}
	return store.Open(context.Background(), store.DefaultConfig(dbPath))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "hnswgo.db", "Database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	buildCmd.Flags().Int("limit", 0, "Maximum number of vectors to read (0 for all)")
	buildCmd.Flags().String("metric", "cosine", "Distance metric (euclidean/cosine/dot)")
	buildCmd.Flags().Int("ef-construction", 100, "Candidate set size during construction")
	buildCmd.Flags().Int("ef-search", 100, "Candidate set size stored for later queries")
	buildCmd.Flags().Int("workers", 0, "Insertion worker count (0 for GOMAXPROCS)")
	buildCmd.Flags().Uint64("seed", 0, "RNG seed for layer assignment (omit for random)")

	queryCmd.Flags().String("vector", "", "Query vector (comma-separated)")
	queryCmd.Flags().Int("top-k", 10, "Number of results")
	queryCmd.Flags().String("metric", "cosine", "Distance metric (euclidean/cosine/dot)")
	queryCmd.MarkFlagRequired("vector")

	rootCmd.AddCommand(buildCmd, queryCmd, collectionsCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
