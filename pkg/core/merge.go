package core

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
)

// Conflict is one sample-level edit both sides made differently,
// requiring caller resolution. Path is empty when the whole segment
// conflicts (deleted on one side, modified on the other, or kind
// changed). Base, Ours and Theirs are content fingerprints, empty for
// an absent side.
type Conflict struct {
	Segment string
	Path    string
	Base    string
	Ours    string
	Theirs  string
}

// MergeResult is the outcome of a three-way merge: either a clean draft
// ready to commit with two parents, or a list of conflicts. Conflicted
// merges carry no draft: resolution is caller-supplied data, not
// control flow.
type MergeResult struct {
	Draft     *Draft
	Ours      string
	Theirs    string
	Conflicts []Conflict
}

// IsClean tells whether the merge produced no conflict
func (m MergeResult) IsClean() bool {
	return len(m.Conflicts) == 0
}

// ConflictError reports a conflicted merge through the error chain,
// matching status.ErrMergeConflict, for callers using MergeCommit
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict: %d conflicting edits", len(e.Conflicts))
}

// Is matches the ErrMergeConflict sentinel
func (e *ConflictError) Is(target error) bool {
	return target == status.ErrMergeConflict
}

// Merge computes a three-way merge of two commits against a common
// base. If only one side changed a segment, that side is taken; when
// both sides changed the same segment in compatible ways (disjoint
// sample-level edits), the edits are unioned; when both modified the
// same sample differently, a conflict is recorded. No commit is
// created and the inputs are never touched: merge is all-or-nothing.
func (d *Dataset) Merge(baseRef, oursRef, theirsRef string) (MergeResult, error) {
	var none MergeResult
	snapBase, err := d.Snapshot(baseRef)
	if err != nil {
		return none, err
	}
	snapOurs, err := d.Snapshot(oursRef)
	if err != nil {
		return none, err
	}
	snapTheirs, err := d.Snapshot(theirsRef)
	if err != nil {
		return none, err
	}
	oursID, _ := d.Resolve(oursRef)
	theirsID, _ := d.Resolve(theirsRef)

	names := unionNames(snapBase, snapOurs, snapTheirs)
	result := MergeResult{Ours: oursID, Theirs: theirsID}
	draft := newDraft(d, oursID)

	for _, name := range names {
		b, hasB := snapBase.Find(name)
		o, hasO := snapOurs.Find(name)
		t, hasT := snapTheirs.Find(name)

		switch {
		case fpOf(o, hasO) == fpOf(t, hasT):
			// both sides agree, deleted included
			if hasO {
				d.shareInto(draft, o)
			}
		case fpOf(t, hasT) == fpOf(b, hasB):
			// theirs untouched: take ours
			if hasO {
				d.shareInto(draft, o)
			}
		case fpOf(o, hasO) == fpOf(b, hasB):
			// ours untouched: take theirs
			if hasT {
				d.shareInto(draft, t)
			}
		case !hasO || !hasT:
			// deleted on one side, modified on the other
			result.Conflicts = append(result.Conflicts, Conflict{
				Segment: name,
				Base:    fpOf(b, hasB), Ours: fpOf(o, hasO), Theirs: fpOf(t, hasT),
			})
		case o.Kind != t.Kind:
			result.Conflicts = append(result.Conflicts, Conflict{
				Segment: name,
				Base:    fpOf(b, hasB), Ours: o.Fingerprint, Theirs: t.Fingerprint,
			})
		default:
			conflicts, err := d.mergeSegment(draft, name, b, hasB, o, t)
			if err != nil {
				return none, err
			}
			result.Conflicts = append(result.Conflicts, conflicts...)
		}
	}

	if len(result.Conflicts) > 0 {
		sort.Slice(result.Conflicts, func(i, j int) bool {
			if result.Conflicts[i].Segment != result.Conflicts[j].Segment {
				return result.Conflicts[i].Segment < result.Conflicts[j].Segment
			}
			return result.Conflicts[i].Path < result.Conflicts[j].Path
		})
		d.l.Debug("merge conflicted",
			zap.String("ours", oursID),
			zap.String("theirs", theirsID),
			zap.Int("conflicts", len(result.Conflicts)),
		)
		return result, nil
	}
	result.Draft = draft
	d.l.Debug("merge computed",
		zap.String("ours", oursID),
		zap.String("theirs", theirsID),
		zap.Int("segments", len(names)),
	)
	return result, nil
}

// MergeCommit performs a three-way merge and commits the result with
// both parents recorded, ours first. A conflicted merge surfaces as a
// ConflictError and creates nothing.
func (d *Dataset) MergeCommit(baseRef, oursRef, theirsRef, message string, opts ...CommitOption) (model.CommitDescriptor, error) {
	res, err := d.Merge(baseRef, oursRef, theirsRef)
	if err != nil {
		return model.CommitDescriptor{}, err
	}
	if !res.IsClean() {
		return model.CommitDescriptor{}, &ConflictError{Conflicts: res.Conflicts}
	}
	opts = append(opts, WithParents(res.Ours, res.Theirs))
	return d.Commit(res.Draft, message, opts...)
}

func fpOf(e model.SnapshotEntry, present bool) string {
	if !present {
		return ""
	}
	return e.Fingerprint
}

func unionNames(snaps ...model.SnapshotDescriptor) []string {
	set := make(map[string]struct{})
	for _, s := range snaps {
		for _, e := range s.Entries {
			set[e.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d *Dataset) shareInto(draft *Draft, entry model.SnapshotEntry) {
	frz, ok := d.graph.getSegment(entry.Fingerprint)
	if !ok {
		return
	}
	draft.entries[entry.Name] = &draftEntry{kind: entry.Kind, frz: frz}
}

// mergeSegment unions the sample-level edits both sides made to one
// segment relative to base. Returns the conflicts found; on a clean
// merge the merged container is placed into the draft.
func (d *Dataset) mergeSegment(draft *Draft, name string, b model.SnapshotEntry, hasB bool, o, t model.SnapshotEntry) ([]Conflict, error) {
	frzO, ok := d.graph.getSegment(o.Fingerprint)
	if !ok {
		return nil, status.ErrUnknownRef.WrapMessage("segment %s", o.Fingerprint)
	}
	frzT, ok := d.graph.getSegment(t.Fingerprint)
	if !ok {
		return nil, status.ErrUnknownRef.WrapMessage("segment %s", t.Fingerprint)
	}
	var samplesB map[string]string
	if hasB {
		frzB, okB := d.graph.getSegment(b.Fingerprint)
		if !okB {
			return nil, status.ErrUnknownRef.WrapMessage("segment %s", b.Fingerprint)
		}
		samplesB = frzB.samples()
	}
	samplesO := frzO.samples()
	samplesT := frzT.samples()

	// per-path three-way decision: 0 keep ours, 1 take theirs, -1 drop
	decisions := make(map[string]int)
	var conflicts []Conflict
	for _, path := range unionPaths(samplesB, samplesO, samplesT) {
		fb := samplesB[path]
		fo, inO := samplesO[path]
		ft, inT := samplesT[path]
		switch {
		case fo == ft:
			if inO {
				decisions[path] = 0
			} else {
				decisions[path] = -1
			}
		case ft == fb:
			if inO {
				decisions[path] = 0
			} else {
				decisions[path] = -1
			}
		case fo == fb:
			if inT {
				decisions[path] = 1
			} else {
				decisions[path] = -1
			}
		default:
			conflicts = append(conflicts, Conflict{
				Segment: name, Path: path,
				Base: fb, Ours: fo, Theirs: ft,
			})
		}
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	if o.Kind == model.KindFusion {
		merged := mergeFusionSamples(name, frzO.fus, frzT.fus, decisions)
		draft.entries[name] = &draftEntry{kind: model.KindFusion, fus: merged}
		return nil, nil
	}
	merged := mergePlainSamples(name, frzO.seg, frzT.seg, decisions)
	draft.entries[name] = &draftEntry{kind: model.KindSegment, seg: merged}
	return nil, nil
}

func unionPaths(maps ...map[string]string) []string {
	set := make(map[string]struct{})
	for _, m := range maps {
		for path := range m {
			set[path] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// mergePlainSamples builds the merged segment: ours sample order first,
// then additions from theirs in their order
func mergePlainSamples(name string, ours, theirs *Segment, decisions map[string]int) *Segment {
	theirsByPath := make(map[string]model.SampleDescriptor, len(theirs.samples))
	for i := range theirs.samples {
		theirsByPath[theirs.samples[i].RemotePath] = theirs.samples[i]
	}
	merged := newSegment(name)
	merged.description = ours.description
	merged.draft = ours.draft && theirs.draft

	seen := make(map[string]struct{}, len(ours.samples))
	for i := range ours.samples {
		path := ours.samples[i].RemotePath
		seen[path] = struct{}{}
		switch decisions[path] {
		case 0:
			merged.samples = append(merged.samples, ours.samples[i])
		case 1:
			merged.samples = append(merged.samples, theirsByPath[path])
		}
	}
	for i := range theirs.samples {
		path := theirs.samples[i].RemotePath
		if _, ok := seen[path]; ok {
			continue
		}
		if decisions[path] != -1 {
			merged.samples = append(merged.samples, theirs.samples[i])
		}
	}
	return merged
}

// mergeFusionSamples builds the merged fusion segment frame by frame
func mergeFusionSamples(name string, ours, theirs *FusionSegment, decisions map[string]int) *FusionSegment {
	merged := newFusionSegment(name)
	merged.description = ours.description
	merged.draft = ours.draft && theirs.draft

	place := func(src *FusionSegment, want int) {
		for sensor, track := range src.sensors {
			for index, sample := range track {
				if decisions[frameKey(sensor, index)] != want {
					continue
				}
				if _, ok := merged.sensors[sensor]; !ok {
					merged.sensors[sensor] = make(map[uint64]model.SampleDescriptor)
				}
				merged.sensors[sensor][index] = sample
			}
		}
	}
	place(ours, 0)
	place(theirs, 1)
	return merged
}
