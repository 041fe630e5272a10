package core

import (
	"sync"

	"github.com/graviti/tensorbay/pkg/fingerprint"
	"github.com/graviti/tensorbay/pkg/model"
)

// frozen wraps a committed segment of either kind. Frozen containers
// are never mutated and are shared freely across snapshots and drafts.
type frozen struct {
	kind model.SegmentKind
	seg  *Segment
	fus  *FusionSegment
}

func (f *frozen) name() string {
	if f.kind == model.KindFusion {
		return f.fus.name
	}
	return f.seg.name
}

func (f *frozen) fingerprint() string {
	if f.kind == model.KindFusion {
		return f.fus.fp.String()
	}
	return f.seg.fp.String()
}

func (f *frozen) record() model.SegmentRecord {
	if f.kind == model.KindFusion {
		desc := f.fus.Descriptor()
		return model.SegmentRecord{Kind: model.KindFusion, Fusion: &desc}
	}
	desc := f.seg.Descriptor()
	return model.SegmentRecord{Kind: model.KindSegment, Segment: &desc}
}

// samples maps each sample's identity (remote path, or sensor/index for
// fusion frames) to its content fingerprint
func (f *frozen) samples() map[string]string {
	if f.kind == model.KindFusion {
		return f.fus.sampleIndex
	}
	return f.seg.sampleIndex
}

// frozenFromRecord rebuilds a frozen container from its persisted
// record, recomputing the fingerprint from canonical content
func frozenFromRecord(record model.SegmentRecord, maker *fingerprint.Maker) (*frozen, error) {
	switch record.Kind {
	case model.KindFusion:
		fus := fusionFromDescriptor(*record.Fusion)
		if err := fus.freeze(maker); err != nil {
			return nil, err
		}
		return &frozen{kind: model.KindFusion, fus: fus}, nil
	default:
		seg := segmentFromDescriptor(*record.Segment)
		if err := seg.freeze(maker); err != nil {
			return nil, err
		}
		return &frozen{kind: model.KindSegment, seg: seg}, nil
	}
}

// commitGraph is the append-only arena of commits, indexed by
// fingerprint id. Parents are stored as ids, not live references, which
// avoids ownership cycles and gives cheap structural sharing of history
// across branches.
//
// Records are immutable once added: the lock only guards map access, a
// descriptor read out of the graph needs no further synchronization.
type commitGraph struct {
	mu        sync.RWMutex
	commits   map[string]model.CommitDescriptor
	snapshots map[string]model.SnapshotDescriptor
	segments  map[string]*frozen
}

func newCommitGraph() *commitGraph {
	return &commitGraph{
		commits:   make(map[string]model.CommitDescriptor),
		snapshots: make(map[string]model.SnapshotDescriptor),
		segments:  make(map[string]*frozen),
	}
}

func (g *commitGraph) getCommit(id string) (model.CommitDescriptor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.commits[id]
	return c, ok
}

func (g *commitGraph) hasCommit(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.commits[id]
	return ok
}

func (g *commitGraph) getSnapshot(id string) (model.SnapshotDescriptor, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.snapshots[id]
	return s, ok
}

func (g *commitGraph) getSegment(fp string) (*frozen, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok := g.segments[fp]
	return f, ok
}

// add records a commit, its snapshot and any segments not already in
// the arena, in one critical section
func (g *commitGraph) add(commit model.CommitDescriptor, snapshot model.SnapshotDescriptor, segments map[string]*frozen) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for fp, f := range segments {
		if _, ok := g.segments[fp]; !ok {
			g.segments[fp] = f
		}
	}
	g.snapshots[commit.SnapshotID] = snapshot
	g.commits[commit.ID] = commit
}

func (g *commitGraph) size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.commits)
}
