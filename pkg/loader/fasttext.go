// Package loader reads external vector file formats into points ready for
// indexing.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/liliang-cn/hnswgo/pkg/vector"
)

// FastTextVectors holds the words and points parsed from a fastText .vec
// file, in file order.
type FastTextVectors struct {
	Words  []string
	Points []vector.Float32Point
}

// LoadFastText reads a fastText-format vector file (as published at
// https://fasttext.cc/docs/en/pretrained-vectors.html): a header line
// "<word_count> <dim>" followed by one "<word> <f1> <f2> ... <fdim>" line
// per entry. limit caps how many entries are read; pass 0 to read the
// whole file.
func LoadFastText(r io.Reader, limit int, metric vector.Metric) (*FastTextVectors, error) {
	reader := bufio.NewReaderSize(r, 1<<20)

	header, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("loader: read fasttext header: %w", err)
	}
	headerFields := strings.Fields(header)
	if len(headerFields) != 2 {
		return nil, fmt.Errorf("loader: malformed fasttext header %q", strings.TrimSpace(header))
	}
	dim, err := strconv.Atoi(headerFields[1])
	if err != nil {
		return nil, fmt.Errorf("loader: parse fasttext dimension: %w", err)
	}

	out := &FastTextVectors{}
	for i := 0; limit == 0 || i < limit; i++ {
		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			break
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("loader: read fasttext line %d: %w", i, err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			break
		}
		if len(fields) < dim+1 {
			return nil, fmt.Errorf("loader: line %d for %q has %d fields, want %d", i, fields[0], len(fields)-1, dim)
		}

		values := make([]float32, dim)
		for j := 0; j < dim; j++ {
			f, err := strconv.ParseFloat(fields[j+1], 32)
			if err != nil {
				return nil, fmt.Errorf("loader: parse value %d for %q: %w", j, fields[0], err)
			}
			values[j] = float32(f)
		}

		out.Words = append(out.Words, fields[0])
		out.Points = append(out.Points, vector.NewFloat32Point(values, metric))

		if err == io.EOF {
			break
		}
	}

	return out, nil
}
