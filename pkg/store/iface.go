// Package store defines persistence for version metadata: an offline
// cache of commits, snapshots, frozen segments and refs.
//
// Commits, snapshots and segments are content-addressed: writing the
// same id twice with unchanged content is idempotent. Branches are
// mutable, tags are write-once.
package store

import (
	"github.com/graviti/tensorbay/pkg/errors"
	"github.com/graviti/tensorbay/pkg/model"
)

var (
	// ErrNotFound indicates an object absent from the store
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a write-once object that is already
	// present
	ErrAlreadyExists = errors.New("object already exists")

	// ErrIDIsRequired indicates an empty id or name on a store operation
	ErrIDIsRequired = errors.New("id is required")
)

// A MetaStore manages persistence for version metadata
type MetaStore interface {
	Initialize() error
	Close() error

	PutCommit(commit model.CommitDescriptor) error
	GetCommit(id string) (model.CommitDescriptor, error)
	ListCommits() ([]string, error)

	PutSnapshot(id string, snapshot model.SnapshotDescriptor) error
	GetSnapshot(id string) (model.SnapshotDescriptor, error)

	PutSegment(id string, record model.SegmentRecord) error
	GetSegment(id string) (model.SegmentRecord, error)

	PutBranch(branch model.BranchDescriptor) error
	GetBranch(name string) (model.BranchDescriptor, error)
	DeleteBranch(name string) error
	ListBranches() ([]string, error)

	PutTag(tag model.TagDescriptor) error
	GetTag(name string) (model.TagDescriptor, error)
	ListTags() ([]string, error)
}
