package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/errors"
	"github.com/graviti/tensorbay/pkg/model"
)

func TestDataset_New(t *testing.T) {
	_, err := New("my-dataset")
	require.NoError(t, err)

	_, err = New("bad/name")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidName))
}

func TestDataset_CommitRecordsLineage(t *testing.T) {
	contributor := model.Contributor{Name: "alice", Email: "alice@example.com"}
	ds := testDataset(t, Contributor(contributor))

	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"))
	assert.True(t, c0.IsRoot())
	assert.NotEmpty(t, c0.ID)
	assert.NotEmpty(t, c0.SnapshotID)
	assert.Equal(t, "initial commit", c0.Message)
	require.Len(t, c0.Contributors, 1)
	assert.Equal(t, "alice", c0.Contributors[0].Name)

	c1 := amendSegment(t, ds, c0.ID, "train", "add s2", func(seg *Segment) {
		require.NoError(t, seg.Append(testSample("s2")))
	})
	require.Equal(t, []string{c0.ID}, c1.Parents)
	assert.True(t, c1.HasParent(c0.ID))

	got, err := ds.GetCommit(c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, got.ID)

	_, err = ds.GetCommit("no-such-commit")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownRef))
}

func TestDataset_CommitRejectsUnknownParent(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()
	seg, err := draft.CreateSegment("train")
	require.NoError(t, err)
	require.NoError(t, seg.Append(testSample("s1")))

	_, err = ds.Commit(draft, "orphan", WithParents("deadbeef"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownRef))
}

func TestDataset_EmptyCommitRejectedUnlessForced(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"))

	unchanged, err := ds.Checkout(c0.ID)
	require.NoError(t, err)
	_, err = ds.Commit(unchanged, "no-op")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrEmptyCommit))

	// the draft is still usable after the rejection
	forced, err := ds.Commit(unchanged, "checkpoint", Force(true))
	require.NoError(t, err)
	assert.Equal(t, c0.SnapshotID, forced.SnapshotID)
	assert.NotEqual(t, c0.ID, forced.ID)
}

func TestDataset_CommitValidatesFusionAlignment(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()
	fus, err := draft.CreateFusionSegment("scene-0001")
	require.NoError(t, err)
	require.NoError(t, fus.AddSensor("left"))
	require.NoError(t, fus.AddSensor("right"))
	for i := uint64(0); i < 3; i++ {
		require.NoError(t, fus.AddFrame("left", i, testSample("l")))
	}
	for i := uint64(0); i < 2; i++ {
		require.NoError(t, fus.AddFrame("right", i, testSample("r")))
	}

	_, err = ds.Commit(draft, "ragged")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRaggedFusion))

	// alignment is validated at commit time, not eagerly: fixing the
	// draft makes the commit pass
	require.NoError(t, fus.AddFrame("right", 2, testSample("r")))
	_, err = ds.Commit(draft, "aligned")
	require.NoError(t, err)
}

func TestDataset_CommitReportsAllInvalidSegments(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()

	_, err := draft.CreateSegment("empty-one")
	require.NoError(t, err)
	_, err = draft.CreateSegment("empty-two")
	require.NoError(t, err)

	_, err = ds.Commit(draft, "both invalid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrEmptySegment))
	assert.Contains(t, err.Error(), "empty-one")
	assert.Contains(t, err.Error(), "empty-two")

	// draft segments may be committed empty
	seg, err := draft.Segment("empty-one")
	require.NoError(t, err)
	require.NoError(t, seg.MarkDraft())
	seg, err = draft.Segment("empty-two")
	require.NoError(t, err)
	require.NoError(t, seg.MarkDraft())
	_, err = ds.Commit(draft, "drafts allowed")
	require.NoError(t, err)
}

func TestDataset_CommitDeduplicatesContent(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"), testSample("s2"))

	// an identical segment re-created from scratch shares its
	// fingerprint with the committed one
	draft, err := ds.Checkout(c0.ID)
	require.NoError(t, err)
	seg, err := draft.CreateSegment("validation")
	require.NoError(t, err)
	require.NoError(t, seg.Append(testSample("v1")))
	c1, err := ds.Commit(draft, "add validation")
	require.NoError(t, err)

	snap0, err := ds.Snapshot(c0.ID)
	require.NoError(t, err)
	snap1, err := ds.Snapshot(c1.ID)
	require.NoError(t, err)

	e0, ok := snap0.Find("train")
	require.True(t, ok)
	e1, ok := snap1.Find("train")
	require.True(t, ok)
	assert.Equal(t, e0.Fingerprint, e1.Fingerprint)
}

func TestDataset_BranchLifecycle(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"))

	require.NoError(t, ds.CreateBranch("main", c0.ID))
	err := ds.CreateBranch("main", c0.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrBranchExists))

	head, err := ds.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, c0.ID, head)

	c1 := amendSegment(t, ds, "main", "train", "add s2", func(seg *Segment) {
		require.NoError(t, seg.Append(testSample("s2")))
	})
	require.NoError(t, ds.AdvanceBranch("main", c1.ID))

	branches := ds.Branches()
	require.Len(t, branches, 1)
	assert.Equal(t, c1.ID, branches[0].CommitID)

	require.NoError(t, ds.DeleteBranch("main"))
	err = ds.DeleteBranch("main")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownRef))

	// deleting the branch does not delete its commits
	_, err = ds.GetCommit(c1.ID)
	require.NoError(t, err)
}

func TestDataset_TagsAreWriteOnce(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"))

	require.NoError(t, ds.CreateTag("v1.0", c0.ID))
	err := ds.CreateTag("v1.0", c0.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrDuplicateTag))

	id, err := ds.Resolve("v1.0")
	require.NoError(t, err)
	assert.Equal(t, c0.ID, id)

	tags := ds.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "v1.0", tags[0].Name)
	assert.Equal(t, c0.ID, tags[0].CommitID)
}

// The end-to-end scenario: stale working copies lose the race to
// advance a branch and must rebase.
func TestDataset_StaleWorkingCopyScenario(t *testing.T) {
	ds := testDataset(t)

	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"), testSample("s2"))
	require.NoError(t, ds.CreateBranch("main", c0.ID))

	c1 := amendSegment(t, ds, "main", "train", "add s3", func(seg *Segment) {
		require.NoError(t, seg.Append(testSample("s3")))
	})
	require.NoError(t, ds.AdvanceBranch("main", c1.ID))

	diff, err := ds.Diff(c0.ID, c1.ID)
	require.NoError(t, err)
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, "train", diff.Entries[0].Name)
	assert.Equal(t, DiffType(DiffTypeDif), diff.Entries[0].Type)
	require.Len(t, diff.Entries[0].Samples, 1)
	assert.Equal(t, DiffType(DiffTypeAdd), diff.Entries[0].Samples[0].Type)
	assert.Equal(t, "s3", diff.Entries[0].Samples[0].Path)

	// a stale working copy based on c0 commits c2, then loses the race
	c2 := amendSegment(t, ds, c0.ID, "train", "stale edit", func(seg *Segment) {
		require.NoError(t, seg.Append(testSample("s4")))
	})
	err = ds.AdvanceBranch("main", c2.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNonFastForward))

	// head is untouched by the failed advance
	head, err := ds.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, head)
}

func TestDataset_ResolvePrecedence(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"))

	_, err := ds.Resolve("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownRef))

	// raw commit ids resolve to themselves
	id, err := ds.Resolve(c0.ID)
	require.NoError(t, err)
	assert.Equal(t, c0.ID, id)
}
