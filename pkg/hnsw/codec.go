package hnsw

import (
	"encoding/gob"
	"fmt"
	"io"
)

// layerMetaRecord mirrors layerMeta with exported fields, since gob only
// encodes exported fields and layerMeta's are deliberately kept private to
// the rest of the package (Save writes ef_search, the points, this
// bookkeeping and the neighbor arena, nothing else).
type layerMetaRecord struct {
	Max, Total int
	Start, End int
}

// Save serializes the index to w using encoding/gob, matching the teacher's
// own HNSW.Save field-by-field sequence rather than gob-encoding the struct
// directly, since most of Hnsw's fields are unexported.
func (h *Hnsw[P]) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)

	if err := enc.Encode(h.efSearch); err != nil {
		return fmt.Errorf("hnsw: encode ef_search: %w", err)
	}
	if err := enc.Encode(h.points); err != nil {
		return fmt.Errorf("hnsw: encode points: %w", err)
	}

	records := make([]layerMetaRecord, len(h.meta))
	for i, lm := range h.meta {
		records[i] = layerMetaRecord{Max: lm.max, Total: lm.total, Start: lm.start, End: lm.end}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("hnsw: encode layer metadata: %w", err)
	}
	if err := enc.Encode([]PointID(h.arena)); err != nil {
		return fmt.Errorf("hnsw: encode neighbor arena: %w", err)
	}
	return nil
}

// Load deserializes an index previously written by Save. The zero value of
// Hnsw[P] is a valid receiver.
func (h *Hnsw[P]) Load(r io.Reader) error {
	dec := gob.NewDecoder(r)

	if err := dec.Decode(&h.efSearch); err != nil {
		return fmt.Errorf("hnsw: decode ef_search: %w", err)
	}
	if err := dec.Decode(&h.points); err != nil {
		return fmt.Errorf("hnsw: decode points: %w", err)
	}

	var records []layerMetaRecord
	if err := dec.Decode(&records); err != nil {
		return fmt.Errorf("hnsw: decode layer metadata: %w", err)
	}
	m := make(meta, len(records))
	for i, r := range records {
		m[i] = layerMeta{max: r.Max, total: r.Total, start: r.Start, end: r.End}
	}
	h.meta = m

	var arena []PointID
	if err := dec.Decode(&arena); err != nil {
		return fmt.Errorf("hnsw: decode neighbor arena: %w", err)
	}
	h.arena = neighbors(arena)
	return nil
}

// Save serializes the map, delegating the index itself to Hnsw.Save and
// appending the values slice in PointID order.
func (m *HnswMap[P, V]) Save(w io.Writer) error {
	if err := m.hnsw.Save(w); err != nil {
		return err
	}
	enc := gob.NewEncoder(w)
	if err := enc.Encode(m.values); err != nil {
		return fmt.Errorf("hnsw: encode values: %w", err)
	}
	return nil
}

// Load deserializes a map previously written by Save.
func (m *HnswMap[P, V]) Load(r io.Reader) error {
	m.hnsw = &Hnsw[P]{}
	if err := m.hnsw.Load(r); err != nil {
		return err
	}
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&m.values); err != nil {
		return fmt.Errorf("hnsw: decode values: %w", err)
	}
	return nil
}
