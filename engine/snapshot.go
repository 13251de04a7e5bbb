package engine

import (
	"encoding/gob"
	"fmt"
	"io"
)

// parentSnapshot is the serialized form of one table entry. Edge order
// is preserved so a restored table keeps its deterministic tie breaks.
type parentSnapshot[S comparable] struct {
	State S
	Edges []Edge[S]
}

type tableSnapshot[S comparable] struct {
	Parents []parentSnapshot[S]
}

// Save writes the table as a gob stream so training can carry over
// between runs.
func (t *Table[S]) Save(w io.Writer) error {
	t.mu.RLock()
	snapshot := tableSnapshot[S]{Parents: make([]parentSnapshot[S], 0, len(t.entries))}
	for state, e := range t.entries {
		edges := make([]Edge[S], len(e.edges))
		copy(edges, e.edges)
		snapshot.Parents = append(snapshot.Parents, parentSnapshot[S]{State: state, Edges: edges})
	}
	t.mu.RUnlock()

	if err := gob.NewEncoder(w).Encode(snapshot); err != nil {
		return fmt.Errorf("encoding table snapshot: %w", err)
	}
	return nil
}

// Load merges a saved snapshot into the table. Parents that were
// expanded since the snapshot keep their live statistics; entries are
// never overwritten.
func (t *Table[S]) Load(r io.Reader) error {
	var snapshot tableSnapshot[S]
	if err := gob.NewDecoder(r).Decode(&snapshot); err != nil {
		return fmt.Errorf("decoding table snapshot: %w", err)
	}

	t.mu.Lock()
	for _, parent := range snapshot.Parents {
		if _, ok := t.entries[parent.State]; ok {
			continue
		}
		e := &entry[S]{
			edges: parent.Edges,
			index: make(map[S]int, len(parent.Edges)),
		}
		for i, edge := range parent.Edges {
			e.index[edge.Child] = i
		}
		t.entries[parent.State] = e
	}
	t.mu.Unlock()
	return nil
}
