package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
)

// RemoteRef is an opaque handle to a snapshot held by the hosting
// backend
type RemoteRef string

// Remote is the narrow interface to the hosting backend. The engine
// treats it as opaque and fallible: no retry happens here.
type Remote interface {
	// Upload persists a snapshot and its segment records remotely
	Upload(ctx context.Context, snapshot model.SnapshotDescriptor, segments map[string]model.SegmentRecord) (RemoteRef, error)

	// Download retrieves a snapshot and its segment records
	Download(ctx context.Context, ref RemoteRef) (model.SnapshotDescriptor, map[string]model.SegmentRecord, error)
}

// Push uploads the snapshot of a commit to the hosting backend
func (d *Dataset) Push(ctx context.Context, ref string) (RemoteRef, error) {
	if d.remote == nil {
		return "", fmt.Errorf("dataset %q has no remote", d.name)
	}
	snapshot, err := d.Snapshot(ref)
	if err != nil {
		return "", err
	}
	segments := make(map[string]model.SegmentRecord, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		frz, ok := d.graph.getSegment(entry.Fingerprint)
		if !ok {
			return "", status.ErrUnknownRef.WrapMessage("segment %s", entry.Fingerprint)
		}
		segments[entry.Fingerprint] = frz.record()
	}
	rref, err := d.remote.Upload(ctx, snapshot, segments)
	if err != nil {
		return "", err
	}
	d.l.Debug("snapshot pushed", zap.String("ref", ref), zap.String("remote", string(rref)))
	return rref, nil
}

// Pull downloads a remote snapshot into a fresh draft. Records are
// verified against the fingerprints the snapshot references before
// anything is accepted. The caller decides how to commit the result.
func (d *Dataset) Pull(ctx context.Context, rref RemoteRef) (*Draft, error) {
	if d.remote == nil {
		return nil, fmt.Errorf("dataset %q has no remote", d.name)
	}
	snapshot, records, err := d.remote.Download(ctx, rref)
	if err != nil {
		return nil, err
	}
	draft := newDraft(d, "")
	for _, entry := range snapshot.Entries {
		record, ok := records[entry.Fingerprint]
		if !ok {
			return nil, status.ErrUnknownRef.WrapMessage("segment %s missing from remote payload", entry.Fingerprint)
		}
		frz, ferr := frozenFromRecord(record, d.maker)
		if ferr != nil {
			return nil, ferr
		}
		if frz.fingerprint() != entry.Fingerprint {
			return nil, status.ErrUnknownRef.WrapMessage(
				"segment %s does not match the downloaded content (%s)", entry.Fingerprint, frz.fingerprint())
		}
		draft.entries[entry.Name] = &draftEntry{kind: entry.Kind, frz: frz}
	}
	d.l.Debug("snapshot pulled", zap.String("remote", string(rref)), zap.Int("segments", len(snapshot.Entries)))
	return draft, nil
}
