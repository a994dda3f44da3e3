// Package snapshot persists the workspace as a single versioned record and
// reconciles it with the read-only seed mapping on startup.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/brettbedarf/notefs"
)

// DefaultFileName is the default on-disk location of the snapshot. The
// version token is part of the name: an incompatible format change bumps it
// and leaves old data untouched instead of silently corrupting it.
const DefaultFileName = "notefs-v2.json"

// Snapshot is the full persisted record: the complete node mapping plus the
// active selection. Writing then reading back reproduces an equivalent
// mapping and active id.
type Snapshot struct {
	Nodes    map[string]*notefs.Node `json:"nodes"`
	ActiveID string                  `json:"activeId"`
}

// Encode serializes the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses persisted snapshot bytes. Null node entries, which a
// corrupted file can carry without failing to parse, are dropped so every
// record in the returned mapping is non-nil.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Nodes == nil {
		s.Nodes = map[string]*notefs.Node{}
	}
	for id, n := range s.Nodes {
		if n == nil {
			delete(s.Nodes, id)
		}
	}
	return &s, nil
}
