package core

import (
	"sort"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
)

const (
	// DiffTypeAdd indicates the newer snapshot exhibits an extra entry
	DiffTypeAdd = iota
	// DiffTypeDel indicates the newer snapshot exhibits a missing entry
	DiffTypeDel
	// DiffTypeDif indicates both snapshots hold the entry with different content
	DiffTypeDif
)

// DiffType qualifies the kind of difference between two snapshots
type DiffType uint

func (dt DiffType) String() string {
	diffTypeStrings := map[DiffType]string{
		DiffTypeAdd: "A",
		DiffTypeDel: "D",
		DiffTypeDif: "U",
	}
	return diffTypeStrings[dt]
}

// SampleDiff describes one changed sample within a segment. Samples are
// identified by Path: the remote path for plain segments, sensor/index
// for fusion frames. Existing and Additional are content fingerprints.
type SampleDiff struct {
	Type       DiffType
	Path       string
	Existing   string
	Additional string
}

// SegmentDiff describes all differences exhibited by one segment name
type SegmentDiff struct {
	Type    DiffType
	Name    string
	Kind    model.SegmentKind
	Samples []SampleDiff
}

// SnapshotDiff describes all differences between two committed
// snapshots
type SnapshotDiff struct {
	Entries []SegmentDiff
}

// IsEmpty tells whether the two snapshots are identical
func (sd SnapshotDiff) IsEmpty() bool {
	return len(sd.Entries) == 0
}

// Diff computes the structural difference from refA to refB.
//
// Segments with identical fingerprints are recognized without looking
// at their samples, so the cost is proportional to what changed, not to
// total dataset size.
func (d *Dataset) Diff(refA, refB string) (SnapshotDiff, error) {
	var none SnapshotDiff
	snapA, err := d.Snapshot(refA)
	if err != nil {
		return none, err
	}
	snapB, err := d.Snapshot(refB)
	if err != nil {
		return none, err
	}

	entriesA := make(map[string]model.SnapshotEntry, len(snapA.Entries))
	for _, e := range snapA.Entries {
		entriesA[e.Name] = e
	}
	entriesB := make(map[string]model.SnapshotEntry, len(snapB.Entries))
	for _, e := range snapB.Entries {
		entriesB[e.Name] = e
	}

	diffEntries := make([]SegmentDiff, 0)
	for name, entryA := range entriesA {
		entryB, ok := entriesB[name]
		if !ok {
			diffEntries = append(diffEntries, SegmentDiff{Type: DiffTypeDel, Name: name, Kind: entryA.Kind})
			continue
		}
		if entryA.Fingerprint == entryB.Fingerprint {
			continue
		}
		samples, err := d.diffSamples(entryA, entryB)
		if err != nil {
			return none, err
		}
		diffEntries = append(diffEntries, SegmentDiff{
			Type:    DiffTypeDif,
			Name:    name,
			Kind:    entryB.Kind,
			Samples: samples,
		})
	}
	for name, entryB := range entriesB {
		if _, ok := entriesA[name]; !ok {
			diffEntries = append(diffEntries, SegmentDiff{Type: DiffTypeAdd, Name: name, Kind: entryB.Kind})
		}
	}
	sort.Slice(diffEntries, func(i, j int) bool { return diffEntries[i].Name < diffEntries[j].Name })
	return SnapshotDiff{Entries: diffEntries}, nil
}

// diffSamples compares the per-sample fingerprints of two frozen
// segments sharing a name
func (d *Dataset) diffSamples(entryA, entryB model.SnapshotEntry) ([]SampleDiff, error) {
	samplesA, err := d.segmentSamples(entryA.Fingerprint)
	if err != nil {
		return nil, err
	}
	samplesB, err := d.segmentSamples(entryB.Fingerprint)
	if err != nil {
		return nil, err
	}

	out := make([]SampleDiff, 0)
	for path, fpA := range samplesA {
		fpB, ok := samplesB[path]
		if !ok {
			out = append(out, SampleDiff{Type: DiffTypeDel, Path: path, Existing: fpA})
			continue
		}
		if fpA != fpB {
			out = append(out, SampleDiff{Type: DiffTypeDif, Path: path, Existing: fpA, Additional: fpB})
		}
	}
	for path, fpB := range samplesB {
		if _, ok := samplesA[path]; !ok {
			out = append(out, SampleDiff{Type: DiffTypeAdd, Path: path, Additional: fpB})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (d *Dataset) segmentSamples(fp string) (map[string]string, error) {
	frz, ok := d.graph.getSegment(fp)
	if !ok {
		return nil, status.ErrUnknownRef.WrapMessage("segment %s", fp)
	}
	return frz.samples(), nil
}
