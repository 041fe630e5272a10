package core

import (
	"go.uber.org/zap"

	"github.com/graviti/tensorbay/pkg/fingerprint"
	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

// DatasetOption is a functor to build a dataset with some options
type DatasetOption func(*Dataset)

// Logger injects a logging facility into dataset operations
func Logger(l *zap.Logger) DatasetOption {
	return func(d *Dataset) {
		d.l = l
	}
}

// Contributor defines the contributor recorded on commits and tags
func Contributor(c model.Contributor) DatasetOption {
	return func(d *Dataset) {
		d.contributors = []model.Contributor{c}
	}
}

// Contributors defines the list of contributors recorded on commits and
// tags
func Contributors(c []model.Contributor) DatasetOption {
	return func(d *Dataset) {
		d.contributors = c
	}
}

// MetaStore wires an offline metadata cache: commits, snapshots,
// segments and refs are persisted as they are created
func MetaStore(ms store.MetaStore) DatasetOption {
	return func(d *Dataset) {
		d.metaStore = ms
	}
}

// WithRemote wires the hosting backend used by Push and Pull
func WithRemote(r Remote) DatasetOption {
	return func(d *Dataset) {
		d.remote = r
	}
}

// FingerprintMaker overrides the fingerprint maker
func FingerprintMaker(m *fingerprint.Maker) DatasetOption {
	return func(d *Dataset) {
		d.maker = m
	}
}

// CommitOption is a functor to tune a single commit operation
type CommitOption func(*commitSettings)

type commitSettings struct {
	force        bool
	parents      []string
	contributors []model.Contributor
}

// Force allows a no-op commit whose snapshot is unchanged relative to
// its parent
func Force(force bool) CommitOption {
	return func(s *commitSettings) {
		s.force = force
	}
}

// WithParents overrides the recorded parents, e.g. to record a merge
// commit with two parents. First parent is the mainline.
func WithParents(parents ...string) CommitOption {
	return func(s *commitSettings) {
		s.parents = parents
	}
}

// CommitContributors overrides the contributors recorded on this commit
func CommitContributors(c []model.Contributor) CommitOption {
	return func(s *commitSettings) {
		s.contributors = c
	}
}
