package core

import (
	"sort"

	"github.com/google/uuid"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
)

// Draft is the working snapshot of a dataset: an uncommitted, mutable
// view owned by one client session.
//
// A draft checked out from a commit shares that commit's frozen
// segments and materializes a mutable copy only for segments actually
// touched (copy-on-write). Committing spends the draft: further edits
// must go through a new draft derived from the resulting commit.
type Draft struct {
	id   string
	base string
	ds   *Dataset

	entries map[string]*draftEntry
	spent   bool
}

// draftEntry is one named segment of the draft: either still shared
// with the base commit (frz set) or materialized for edits.
type draftEntry struct {
	kind model.SegmentKind
	frz  *frozen
	seg  *Segment
	fus  *FusionSegment
}

func (e *draftEntry) materialized() bool {
	return e.frz == nil
}

func newDraft(ds *Dataset, base string) *Draft {
	return &Draft{
		id:      uuid.NewString(),
		base:    base,
		ds:      ds,
		entries: make(map[string]*draftEntry),
	}
}

// ID of the draft session
func (d *Draft) ID() string {
	return d.id
}

// Base is the commit id the draft derives from, empty for a root draft
func (d *Draft) Base() string {
	return d.base
}

// Spent tells whether the draft has been committed
func (d *Draft) Spent() bool {
	return d.spent
}

// SegmentNames yields the names of all segments in the draft, sorted
func (d *Draft) SegmentNames() []string {
	out := make([]string, 0, len(d.entries))
	for name := range d.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d *Draft) guard() error {
	if d.spent {
		return status.ErrImmutable.WrapMessage("draft %s has been committed", d.id)
	}
	return nil
}

// CreateSegment adds a new empty plain segment to the draft
func (d *Draft) CreateSegment(name string) (*Segment, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	if err := model.CheckName(name); err != nil {
		return nil, err
	}
	if _, ok := d.entries[name]; ok {
		return nil, status.ErrSegmentExists.WrapMessage("segment %q in draft %s", name, d.id)
	}
	seg := newSegment(name)
	d.entries[name] = &draftEntry{kind: model.KindSegment, seg: seg}
	return seg, nil
}

// CreateFusionSegment adds a new empty fusion segment to the draft
func (d *Draft) CreateFusionSegment(name string) (*FusionSegment, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	if err := model.CheckName(name); err != nil {
		return nil, err
	}
	if _, ok := d.entries[name]; ok {
		return nil, status.ErrSegmentExists.WrapMessage("segment %q in draft %s", name, d.id)
	}
	fus := newFusionSegment(name)
	d.entries[name] = &draftEntry{kind: model.KindFusion, fus: fus}
	return fus, nil
}

// Segment yields the named plain segment as a mutable container,
// materializing a copy-on-write clone if the segment is still shared
// with the base commit
func (d *Draft) Segment(name string) (*Segment, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	entry, ok := d.entries[name]
	if !ok {
		return nil, status.ErrUnknownSegment.WrapMessage("segment %q in draft %s", name, d.id)
	}
	if entry.kind != model.KindSegment {
		return nil, status.ErrKindMismatch.WrapMessage("segment %q is a fusion segment", name)
	}
	if !entry.materialized() {
		entry.seg = entry.frz.seg.thaw()
		entry.frz = nil
	}
	return entry.seg, nil
}

// FusionSegment yields the named fusion segment as a mutable container,
// materializing a copy-on-write clone if still shared with the base
func (d *Draft) FusionSegment(name string) (*FusionSegment, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	entry, ok := d.entries[name]
	if !ok {
		return nil, status.ErrUnknownSegment.WrapMessage("segment %q in draft %s", name, d.id)
	}
	if entry.kind != model.KindFusion {
		return nil, status.ErrKindMismatch.WrapMessage("segment %q is a plain segment", name)
	}
	if !entry.materialized() {
		entry.fus = entry.frz.fus.thaw()
		entry.frz = nil
	}
	return entry.fus, nil
}

// DeleteSegment removes a segment from the draft
func (d *Draft) DeleteSegment(name string) error {
	if err := d.guard(); err != nil {
		return err
	}
	if _, ok := d.entries[name]; !ok {
		return status.ErrUnknownSegment.WrapMessage("segment %q in draft %s", name, d.id)
	}
	delete(d.entries, name)
	return nil
}
