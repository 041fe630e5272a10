package core

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

// persistCommit writes segments first, then the snapshot, then the
// commit: a reader of a partially-written cache never sees a commit
// whose content is missing
func (d *Dataset) persistCommit(commit model.CommitDescriptor, snapshot model.SnapshotDescriptor, segments map[string]*frozen) error {
	if d.metaStore == nil {
		return nil
	}
	for fp, frz := range segments {
		if err := d.metaStore.PutSegment(fp, frz.record()); err != nil {
			return err
		}
	}
	if err := d.metaStore.PutSnapshot(commit.SnapshotID, snapshot); err != nil {
		return err
	}
	if err := d.metaStore.PutCommit(commit); err != nil {
		return err
	}
	d.l.Debug("commit persisted", zap.String("commit", commit.ID))
	return nil
}

func (d *Dataset) persistBranch(bd model.BranchDescriptor) error {
	if d.metaStore == nil {
		return nil
	}
	return d.metaStore.PutBranch(bd)
}

func (d *Dataset) unpersistBranch(name string) error {
	if d.metaStore == nil {
		return nil
	}
	return d.metaStore.DeleteBranch(name)
}

func (d *Dataset) persistTag(td model.TagDescriptor) error {
	if d.metaStore == nil {
		return nil
	}
	return d.metaStore.PutTag(td)
}

// Load rebuilds a dataset from an offline metadata cache. Segment
// fingerprints are recomputed from canonical content and verified
// against the ids they were stored under.
func Load(name string, ms store.MetaStore, opts ...DatasetOption) (*Dataset, error) {
	d, err := New(name, append(opts, MetaStore(ms))...)
	if err != nil {
		return nil, err
	}

	ids, err := ms.ListCommits()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		commit, cerr := ms.GetCommit(id)
		if cerr != nil {
			return nil, cerr
		}
		snapshot, serr := ms.GetSnapshot(commit.SnapshotID)
		if serr != nil {
			return nil, serr
		}
		segments := make(map[string]*frozen, len(snapshot.Entries))
		for _, entry := range snapshot.Entries {
			if _, ok := d.graph.getSegment(entry.Fingerprint); ok {
				continue
			}
			record, rerr := ms.GetSegment(entry.Fingerprint)
			if rerr != nil {
				return nil, rerr
			}
			frz, ferr := frozenFromRecord(record, d.maker)
			if ferr != nil {
				return nil, ferr
			}
			if frz.fingerprint() != entry.Fingerprint {
				return nil, status.ErrUnknownRef.WrapMessage(
					"segment %s does not match its stored content (%s)", entry.Fingerprint, frz.fingerprint())
			}
			segments[entry.Fingerprint] = frz
		}
		d.graph.add(commit, snapshot, segments)
	}

	var rerr error
	branches, err := ms.ListBranches()
	if err != nil {
		return nil, err
	}
	for _, branch := range branches {
		bd, berr := ms.GetBranch(branch)
		if berr != nil {
			rerr = multierr.Append(rerr, berr)
			continue
		}
		rerr = multierr.Append(rerr, d.refs.createBranch(bd.Name, bd.CommitID))
	}
	tags, err := ms.ListTags()
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		td, terr := ms.GetTag(tag)
		if terr != nil {
			rerr = multierr.Append(rerr, terr)
			continue
		}
		rerr = multierr.Append(rerr, d.refs.createTag(td))
	}
	if rerr != nil {
		return nil, rerr
	}

	d.l.Debug("dataset loaded from cache",
		zap.Int("commits", d.graph.size()),
		zap.Int("branches", len(branches)),
		zap.Int("tags", len(tags)),
	)
	return d, nil
}
