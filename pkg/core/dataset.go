package core

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/dlogger"
	"github.com/graviti/tensorbay/pkg/fingerprint"
	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

// Dataset is the facade over the version-control engine: drafts,
// commits, branches, tags, diff and merge for one dataset.
type Dataset struct {
	name  string
	graph *commitGraph
	refs  *refRegistry
	maker *fingerprint.Maker

	metaStore    store.MetaStore
	remote       Remote
	contributors []model.Contributor
	l            *zap.Logger
}

// New builds a dataset with an empty history
func New(name string, opts ...DatasetOption) (*Dataset, error) {
	if err := model.CheckName(name); err != nil {
		return nil, err
	}
	d := &Dataset{
		name:  name,
		graph: newCommitGraph(),
		refs:  newRefRegistry(),
		maker: fingerprint.New(),
	}
	for _, apply := range opts {
		apply(d)
	}
	d.l = dlogger.Safe(d.l).With(zap.String("dataset", name))
	return d, nil
}

// Name of the dataset
func (d *Dataset) Name() string {
	return d.name
}

// NewDraft opens an empty working snapshot with no base commit
func (d *Dataset) NewDraft() *Draft {
	return newDraft(d, "")
}

// Checkout opens a working snapshot derived from a commit. Segments are
// shared with the commit until first edit (copy-on-write).
func (d *Dataset) Checkout(ref string) (*Draft, error) {
	commitID, err := d.Resolve(ref)
	if err != nil {
		return nil, err
	}
	commit, _ := d.graph.getCommit(commitID)
	snapshot, ok := d.graph.getSnapshot(commit.SnapshotID)
	if !ok {
		return nil, status.ErrUnknownRef.WrapMessage("snapshot %s of commit %s", commit.SnapshotID, commitID)
	}
	draft := newDraft(d, commitID)
	for _, entry := range snapshot.Entries {
		frz, ok := d.graph.getSegment(entry.Fingerprint)
		if !ok {
			return nil, status.ErrUnknownRef.WrapMessage("segment %s of snapshot %s", entry.Fingerprint, commit.SnapshotID)
		}
		draft.entries[entry.Name] = &draftEntry{kind: entry.Kind, frz: frz}
	}
	return draft, nil
}

// commitSeed is the fingerprinted identity of a commit
type commitSeed struct {
	SnapshotID   string              `json:"snapshot"`
	Message      string              `json:"message"`
	Parents      []string            `json:"parents,omitempty"`
	Timestamp    string              `json:"timestamp"`
	Contributors []model.Contributor `json:"contributors,omitempty"`
	Version      uint64              `json:"version"`
}

// Commit freezes a draft into a new immutable commit.
//
// Validation happens here, not eagerly: a ragged fusion segment or an
// empty non-draft segment fails the commit and leaves the draft
// editable. A commit whose snapshot is unchanged relative to its single
// parent is rejected with ErrEmptyCommit unless forced.
func (d *Dataset) Commit(draft *Draft, message string, opts ...CommitOption) (model.CommitDescriptor, error) {
	var none model.CommitDescriptor
	if draft == nil || draft.ds != d {
		return none, fmt.Errorf("draft does not belong to dataset %q", d.name)
	}
	if draft.spent {
		return none, status.ErrImmutable.WrapMessage("draft %s has been committed", draft.id)
	}

	settings := commitSettings{contributors: d.contributors}
	for _, apply := range opts {
		apply(&settings)
	}

	parents := settings.parents
	if parents == nil && draft.base != "" {
		parents = []string{draft.base}
	}
	for _, p := range parents {
		if !d.graph.hasCommit(p) {
			return none, status.ErrUnknownRef.WrapMessage("parent commit %s", p)
		}
	}

	// surface every invalid segment at once, not just the first
	var verr error
	for _, name := range draft.SegmentNames() {
		entry := draft.entries[name]
		if !entry.materialized() {
			continue
		}
		if entry.kind == model.KindFusion {
			verr = multierr.Append(verr, entry.fus.validate())
		} else {
			verr = multierr.Append(verr, entry.seg.validate())
		}
	}
	if verr != nil {
		return none, verr
	}

	names := draft.SegmentNames()
	var g errgroup.Group
	for _, name := range names {
		entry := draft.entries[name]
		if !entry.materialized() {
			continue
		}
		g.Go(func() error {
			if entry.kind == model.KindFusion {
				return entry.fus.freeze(d.maker)
			}
			return entry.seg.freeze(d.maker)
		})
	}
	if err := g.Wait(); err != nil {
		return none, err
	}

	snapshot := model.SnapshotDescriptor{Entries: make([]model.SnapshotEntry, 0, len(names))}
	newSegments := make(map[string]*frozen, len(names))
	for _, name := range names {
		entry := draft.entries[name]
		frz := entry.frz
		if frz == nil {
			if entry.kind == model.KindFusion {
				frz = &frozen{kind: model.KindFusion, fus: entry.fus}
			} else {
				frz = &frozen{kind: model.KindSegment, seg: entry.seg}
			}
			entry.frz = frz
			entry.seg, entry.fus = nil, nil
		}
		fp := frz.fingerprint()
		newSegments[fp] = frz
		snapshot.Entries = append(snapshot.Entries, model.SnapshotEntry{
			Name:        name,
			Kind:        entry.kind,
			Fingerprint: fp,
		})
	}
	snapshot.Sort()
	if err := snapshot.Validate(); err != nil {
		return none, err
	}

	snapshotKey, err := d.maker.Entity(snapshot)
	if err != nil {
		return none, err
	}
	snapshotID := snapshotKey.String()

	if !settings.force && len(parents) == 1 {
		parent, _ := d.graph.getCommit(parents[0])
		if parent.SnapshotID == snapshotID {
			return none, status.ErrEmptyCommit.WrapMessage("snapshot unchanged relative to parent %s", parents[0])
		}
	}

	timestamp := model.GetCommitTimestamp()
	seed := commitSeed{
		SnapshotID:   snapshotID,
		Message:      message,
		Parents:      parents,
		Timestamp:    timestamp.Format(time.RFC3339Nano),
		Contributors: settings.contributors,
		Version:      model.CurrentCommitVersion,
	}
	commitKey, err := d.maker.Entity(seed)
	if err != nil {
		return none, err
	}

	commit := model.CommitDescriptor{
		ID:           commitKey.String(),
		Parents:      parents,
		Message:      message,
		Timestamp:    timestamp,
		Contributors: settings.contributors,
		SnapshotID:   snapshotID,
		Version:      model.CurrentCommitVersion,
	}

	// persist first: a failed store write must leave the in-memory
	// graph and the draft untouched
	if err = d.persistCommit(commit, snapshot, newSegments); err != nil {
		return none, err
	}
	d.graph.add(commit, snapshot, newSegments)
	draft.spent = true

	d.l.Debug("commit created",
		zap.String("commit", commit.ID),
		zap.String("snapshot", snapshotID),
		zap.Strings("parents", parents),
		zap.Int("segments", len(snapshot.Entries)),
	)
	return commit, nil
}

// GetCommit retrieves a commit descriptor by ref
func (d *Dataset) GetCommit(ref string) (model.CommitDescriptor, error) {
	id, err := d.Resolve(ref)
	if err != nil {
		return model.CommitDescriptor{}, err
	}
	commit, _ := d.graph.getCommit(id)
	return commit, nil
}

// Snapshot retrieves the snapshot recorded by a commit
func (d *Dataset) Snapshot(ref string) (model.SnapshotDescriptor, error) {
	commit, err := d.GetCommit(ref)
	if err != nil {
		return model.SnapshotDescriptor{}, err
	}
	snapshot, ok := d.graph.getSnapshot(commit.SnapshotID)
	if !ok {
		return model.SnapshotDescriptor{}, status.ErrUnknownRef.WrapMessage("snapshot %s", commit.SnapshotID)
	}
	return snapshot, nil
}

// Segment yields a frozen view of a committed plain segment: reads
// succeed, writes fail with ErrImmutable
func (d *Dataset) Segment(ref, name string) (*Segment, error) {
	frz, err := d.frozenSegment(ref, name, model.KindSegment)
	if err != nil {
		return nil, err
	}
	return frz.seg, nil
}

// FusionSegment yields a frozen view of a committed fusion segment
func (d *Dataset) FusionSegment(ref, name string) (*FusionSegment, error) {
	frz, err := d.frozenSegment(ref, name, model.KindFusion)
	if err != nil {
		return nil, err
	}
	return frz.fus, nil
}

func (d *Dataset) frozenSegment(ref, name string, kind model.SegmentKind) (*frozen, error) {
	snapshot, err := d.Snapshot(ref)
	if err != nil {
		return nil, err
	}
	entry, ok := snapshot.Find(name)
	if !ok {
		return nil, status.ErrUnknownSegment.WrapMessage("segment %q at %s", name, ref)
	}
	if entry.Kind != kind {
		return nil, status.ErrKindMismatch.WrapMessage("segment %q is of kind %s", name, entry.Kind)
	}
	frz, ok := d.graph.getSegment(entry.Fingerprint)
	if !ok {
		return nil, status.ErrUnknownRef.WrapMessage("segment %s", entry.Fingerprint)
	}
	return frz, nil
}

// CreateBranch points a new branch at a commit
func (d *Dataset) CreateBranch(name, ref string) error {
	if err := model.CheckName(name); err != nil {
		return err
	}
	commitID, err := d.Resolve(ref)
	if err != nil {
		return err
	}
	if err = d.refs.createBranch(name, commitID); err != nil {
		return err
	}
	if err = d.persistBranch(model.BranchDescriptor{Name: name, CommitID: commitID}); err != nil {
		return err
	}
	d.l.Debug("branch created", zap.String("branch", name), zap.String("commit", commitID))
	return nil
}

// AdvanceBranch moves a branch head to a commit whose recorded parents
// include the current head. Anything else fails with ErrNonFastForward,
// preventing silent history loss: the caller retries by rebasing onto
// the new head.
func (d *Dataset) AdvanceBranch(name, commitID string) error {
	commit, ok := d.graph.getCommit(commitID)
	if !ok {
		return status.ErrUnknownRef.WrapMessage("commit %s", commitID)
	}
	if err := d.refs.advance(name, commit); err != nil {
		return err
	}
	if err := d.persistBranch(model.BranchDescriptor{Name: name, CommitID: commitID}); err != nil {
		return err
	}
	d.l.Debug("branch advanced", zap.String("branch", name), zap.String("commit", commitID))
	return nil
}

// DeleteBranch destroys a branch pointer. Commits stay: reachability is
// never garbage collected here.
func (d *Dataset) DeleteBranch(name string) error {
	if err := d.refs.deleteBranch(name); err != nil {
		return err
	}
	if err := d.unpersistBranch(name); err != nil {
		return err
	}
	d.l.Debug("branch deleted", zap.String("branch", name))
	return nil
}

// CreateTag points a write-once tag at a commit
func (d *Dataset) CreateTag(name, ref string, opts ...model.TagDescriptorOption) error {
	if err := model.CheckName(name); err != nil {
		return err
	}
	commitID, err := d.Resolve(ref)
	if err != nil {
		return err
	}
	if len(opts) == 0 && len(d.contributors) > 0 {
		opts = []model.TagDescriptorOption{model.TagContributors(d.contributors)}
	}
	td := model.NewTagDescriptor(name, commitID, opts...)
	if err = d.refs.createTag(*td); err != nil {
		return err
	}
	if err = d.persistTag(*td); err != nil {
		return err
	}
	d.l.Debug("tag created", zap.String("tag", name), zap.String("commit", commitID))
	return nil
}

// Branches lists all branches, sorted by name
func (d *Dataset) Branches() []model.BranchDescriptor {
	return d.refs.listBranches()
}

// Tags lists all tags, sorted by name
func (d *Dataset) Tags() []model.TagDescriptor {
	return d.refs.listTags()
}

// Resolve maps a ref name to a commit id: branches take precedence,
// then tags, then raw commit ids
func (d *Dataset) Resolve(ref string) (string, error) {
	if head, ok := d.refs.branchHead(ref); ok {
		return head, nil
	}
	if td, ok := d.refs.tag(ref); ok {
		return td.CommitID, nil
	}
	if d.graph.hasCommit(ref) {
		return ref, nil
	}
	return "", status.ErrUnknownRef.WrapMessage("ref %q", ref)
}
