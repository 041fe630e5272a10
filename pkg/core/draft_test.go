package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/errors"
)

func TestDraft_CreateAndDelete(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()
	assert.NotEmpty(t, draft.ID())
	assert.Empty(t, draft.Base())

	_, err := draft.CreateSegment("train")
	require.NoError(t, err)
	_, err = draft.CreateFusionSegment("scene-0001")
	require.NoError(t, err)

	_, err = draft.CreateSegment("train")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrSegmentExists))

	_, err = draft.CreateSegment("bad/name")
	require.Error(t, err)

	assert.Equal(t, []string{"scene-0001", "train"}, draft.SegmentNames())

	require.NoError(t, draft.DeleteSegment("train"))
	err = draft.DeleteSegment("train")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrUnknownSegment))
}

func TestDraft_KindMismatch(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()
	_, err := draft.CreateFusionSegment("scene-0001")
	require.NoError(t, err)

	_, err = draft.Segment("scene-0001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrKindMismatch))
}

func TestDraft_CopyOnWrite(t *testing.T) {
	ds := testDataset(t)
	c0 := commitSegment(t, ds, "train", "initial commit", testSample("s1"), testSample("s2"))

	draft, err := ds.Checkout(c0.ID)
	require.NoError(t, err)

	// the checked-out segment is shared with the commit until edited
	entry := draft.entries["train"]
	require.False(t, entry.materialized())

	seg, err := draft.Segment("train")
	require.NoError(t, err)
	require.True(t, entry.materialized())
	require.NoError(t, seg.Append(testSample("s3")))

	// the frozen view of c0 is untouched
	view, err := ds.Segment(c0.ID, "train")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, 3, seg.Len())
}

func TestDraft_SpentAfterCommit(t *testing.T) {
	ds := testDataset(t)
	draft := ds.NewDraft()
	seg, err := draft.CreateSegment("train")
	require.NoError(t, err)
	require.NoError(t, seg.Append(testSample("s1")))

	_, err = ds.Commit(draft, "initial commit")
	require.NoError(t, err)
	assert.True(t, draft.Spent())

	_, err = draft.CreateSegment("more")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrImmutable))

	_, err = draft.Segment("train")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrImmutable))

	_, err = ds.Commit(draft, "again")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrImmutable))

	// the committed segment container is frozen as well
	err = seg.Append(testSample("s2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrImmutable))
}
