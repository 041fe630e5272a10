package localfs

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graviti/tensorbay/pkg/errors"
	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

func newTestStore(t *testing.T) *localFsStore {
	t.Helper()
	s := New(BaseDir("/meta"), FileSystem(afero.NewMemMapFs()))
	require.NoError(t, s.Initialize())
	return s
}

func fixtureCommit(id string) model.CommitDescriptor {
	return model.CommitDescriptor{
		ID:         id,
		Parents:    []string{"parent-1"},
		Message:    "checkpoint",
		Timestamp:  time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC),
		SnapshotID: "snap-1",
		Version:    model.CurrentCommitVersion,
		Contributors: []model.Contributor{
			{Name: "alice", Email: "alice@example.com"},
		},
	}
}

func fixtureRecord(name string) model.SegmentRecord {
	return model.SegmentRecord{
		Kind: model.KindSegment,
		Segment: &model.SegmentDescriptor{
			Name: name,
			Samples: []model.SampleDescriptor{
				{RemotePath: "a", Labels: []model.Label{{Type: "classification", Category: "cat"}}},
				{RemotePath: "b"},
			},
		},
	}
}

func TestStore_CommitRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer func() { require.NoError(t, s.Close()) }()

	commit := fixtureCommit("c1")
	require.NoError(t, s.PutCommit(commit))

	got, err := s.GetCommit("c1")
	require.NoError(t, err)
	assert.Equal(t, commit.ID, got.ID)
	assert.Equal(t, commit.Parents, got.Parents)
	assert.Equal(t, commit.Message, got.Message)
	assert.Equal(t, commit.SnapshotID, got.SnapshotID)
	assert.True(t, commit.Timestamp.Equal(got.Timestamp))

	_, err = s.GetCommit("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = s.PutCommit(model.CommitDescriptor{})
	assert.True(t, errors.Is(err, store.ErrIDIsRequired))
	_, err = s.GetCommit("")
	assert.True(t, errors.Is(err, store.ErrIDIsRequired))

	require.NoError(t, s.PutCommit(fixtureCommit("c0")))
	ids, err := s.ListCommits()
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1"}, ids)
}

func TestStore_SnapshotAndSegmentRoundTrip(t *testing.T) {
	s := newTestStore(t)

	record := fixtureRecord("train")
	require.NoError(t, s.PutSegment("fp-1", record))
	gotRecord, err := s.GetSegment("fp-1")
	require.NoError(t, err)
	require.NotNil(t, gotRecord.Segment)
	assert.Equal(t, "train", gotRecord.Name())
	require.Len(t, gotRecord.Segment.Samples, 2)
	assert.Equal(t, "cat", gotRecord.Segment.Samples[0].Labels[0].Category)

	snapshot := model.SnapshotDescriptor{
		Entries: []model.SnapshotEntry{
			{Name: "train", Kind: model.KindSegment, Fingerprint: "fp-1"},
		},
	}
	require.NoError(t, s.PutSnapshot("snap-1", snapshot))
	gotSnapshot, err := s.GetSnapshot("snap-1")
	require.NoError(t, err)
	assert.Equal(t, snapshot.Entries, gotSnapshot.Entries)

	_, err = s.GetSegment("nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.GetSnapshot("nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_BranchLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutBranch(model.BranchDescriptor{Name: "main", CommitID: "c1"}))
	got, err := s.GetBranch("main")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CommitID)

	// a branch put is an upsert: advancing overwrites the head
	require.NoError(t, s.PutBranch(model.BranchDescriptor{Name: "main", CommitID: "c2"}))
	got, err = s.GetBranch("main")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.CommitID)

	names, err := s.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names)

	require.NoError(t, s.DeleteBranch("main"))
	err = s.DeleteBranch("main")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.GetBranch("main")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_TagsAreWriteOnce(t *testing.T) {
	s := newTestStore(t)

	tag := model.NewTagDescriptor("v1.0", "c1")
	require.NoError(t, s.PutTag(*tag))
	err := s.PutTag(*tag)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))

	got, err := s.GetTag("v1.0")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CommitID)

	names, err := s.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0"}, names)
}

// Unchanged descriptors re-serialize to the same bytes, keeping the
// archive diff-friendly.
func TestStore_StableSerialization(t *testing.T) {
	s := newTestStore(t)
	commit := fixtureCommit("c1")
	require.NoError(t, s.PutCommit(commit))

	pth := s.path(model.GetArchivePathToCommit("c1"))
	first, err := afero.ReadFile(s.fs, pth)
	require.NoError(t, err)

	reread, err := s.GetCommit("c1")
	require.NoError(t, err)
	require.NoError(t, s.PutCommit(reread))
	second, err := afero.ReadFile(s.fs, pth)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestStore_ListOnEmptyArchive(t *testing.T) {
	s := newTestStore(t)
	for _, list := range []func() ([]string, error){
		s.ListCommits, s.ListBranches, s.ListTags,
	} {
		names, err := list()
		require.NoError(t, err)
		assert.Empty(t, names)
	}
}
