package loader

import (
	"strings"
	"testing"

	"github.com/liliang-cn/hnswgo/pkg/vector"
)

func TestLoadFastTextParsesHeaderAndRows(t *testing.T) {
	data := "3 2\n" +
		"cat 0.1 0.2\n" +
		"dog 0.3 0.4\n" +
		"fish 0.5 0.6\n"

	vecs, err := LoadFastText(strings.NewReader(data), 0, vector.Cosine)
	if err != nil {
		t.Fatalf("LoadFastText: %v", err)
	}
	if len(vecs.Words) != 3 {
		t.Fatalf("got %d words, want 3", len(vecs.Words))
	}
	if vecs.Words[1] != "dog" {
		t.Errorf("Words[1] = %q, want \"dog\"", vecs.Words[1])
	}
	if got := vecs.Points[0].AsSlice(); got[0] != 0.1 || got[1] != 0.2 {
		t.Errorf("Points[0] = %v, want [0.1 0.2]", got)
	}
}

func TestLoadFastTextRespectsLimit(t *testing.T) {
	data := "3 2\n" +
		"cat 0.1 0.2\n" +
		"dog 0.3 0.4\n" +
		"fish 0.5 0.6\n"

	vecs, err := LoadFastText(strings.NewReader(data), 2, vector.Euclidean)
	if err != nil {
		t.Fatalf("LoadFastText: %v", err)
	}
	if len(vecs.Words) != 2 {
		t.Fatalf("got %d words, want 2 (limit)", len(vecs.Words))
	}
}

func TestLoadFastTextRejectsMalformedHeader(t *testing.T) {
	_, err := LoadFastText(strings.NewReader("not-a-header\n"), 0, vector.Euclidean)
	if err == nil {
		t.Fatalf("expected an error for a malformed header")
	}
}

func TestLoadFastTextRejectsShortRow(t *testing.T) {
	data := "1 3\n" + "cat 0.1 0.2\n"
	_, err := LoadFastText(strings.NewReader(data), 0, vector.Euclidean)
	if err == nil {
		t.Fatalf("expected an error for a row shorter than the declared dimension")
	}
}
