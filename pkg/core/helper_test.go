package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graviti/tensorbay/pkg/model"
)

func testSample(path string) model.SampleDescriptor {
	return model.SampleDescriptor{RemotePath: path}
}

func labeledSample(path, category string) model.SampleDescriptor {
	return model.SampleDescriptor{
		RemotePath: path,
		Labels: []model.Label{
			{Type: "classification", Category: category},
		},
	}
}

func testDataset(t *testing.T, opts ...DatasetOption) *Dataset {
	t.Helper()
	ds, err := New("test-dataset", opts...)
	require.NoError(t, err)
	return ds
}

// commitSegment commits a single plain segment with the given samples
// on a fresh root draft
func commitSegment(t *testing.T, ds *Dataset, segmentName, message string, samples ...model.SampleDescriptor) model.CommitDescriptor {
	t.Helper()
	draft := ds.NewDraft()
	seg, err := draft.CreateSegment(segmentName)
	require.NoError(t, err)
	for _, s := range samples {
		require.NoError(t, seg.Append(s))
	}
	commit, err := ds.Commit(draft, message)
	require.NoError(t, err)
	return commit
}

// amendSegment checks out ref, applies edit to one segment and commits
func amendSegment(t *testing.T, ds *Dataset, ref, segmentName, message string, edit func(*Segment)) model.CommitDescriptor {
	t.Helper()
	draft, err := ds.Checkout(ref)
	require.NoError(t, err)
	seg, err := draft.Segment(segmentName)
	require.NoError(t, err)
	edit(seg)
	commit, err := ds.Commit(draft, message)
	require.NoError(t, err)
	return commit
}
