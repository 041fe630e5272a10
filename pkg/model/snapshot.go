package model

import (
	"sort"
)

// SnapshotEntry references one segment of a snapshot by name, kind and
// content fingerprint
type SnapshotEntry struct {
	Name        string      `json:"name" yaml:"name"`
	Kind        SegmentKind `json:"kind" yaml:"kind"`
	Fingerprint string      `json:"fingerprint" yaml:"fingerprint"`
	_           struct{}
}

// SnapshotDescriptor captures the full state of a dataset at one point
// in time: the set of segments, each addressed by fingerprint.
//
// Entries are kept sorted by name so the canonical encoding, and hence
// the snapshot's own fingerprint, does not depend on insertion order.
type SnapshotDescriptor struct {
	Entries []SnapshotEntry `json:"entries" yaml:"entries"`
	_       struct{}
}

// Sort entries by segment name
func (s *SnapshotDescriptor) Sort() {
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Name < s.Entries[j].Name
	})
}

// Find the entry for a segment name
func (s *SnapshotDescriptor) Find(name string) (SnapshotEntry, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return SnapshotEntry{}, false
}

// Validate a snapshot descriptor: entries sorted, names unique
func (s *SnapshotDescriptor) Validate() error {
	seen := make(map[string]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		if err := CheckName(e.Name); err != nil {
			return err
		}
		if _, ok := seen[e.Name]; ok {
			return ErrInvalidName.WrapMessage("duplicate segment name %q in snapshot", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}
