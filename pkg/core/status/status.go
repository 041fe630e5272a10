// Package status exports the error kinds produced by the core package.
//
// All outcomes are distinct, inspectable sentinels so calling code can
// branch on kind: e.g. retry on ErrNonFastForward after rebasing, but
// abort on ErrImmutable.
package status

import (
	"github.com/graviti/tensorbay/pkg/errors"
	"github.com/graviti/tensorbay/pkg/model"
)

var (
	// ErrImmutable indicates a write against a frozen commit, snapshot
	// or segment, or against an already-committed draft
	ErrImmutable = errors.New("immutable entity")

	// ErrNonFastForward indicates a branch advance whose base does not
	// match the branch's current head
	ErrNonFastForward = errors.New("non-fast-forward")

	// ErrUnknownRef indicates a branch, tag or commit id that cannot be
	// resolved
	ErrUnknownRef = errors.New("unknown ref")

	// ErrMergeConflict indicates a three-way merge with sample-level
	// edits that require caller resolution
	ErrMergeConflict = errors.New("merge conflict")

	// ErrDuplicateTag indicates a tag name that is already taken: tags
	// are write-once
	ErrDuplicateTag = errors.New("duplicate tag")

	// ErrEmptyCommit indicates a no-op commit, rejected unless forced
	ErrEmptyCommit = errors.New("empty commit")

	// ErrBranchExists indicates a branch name that is already taken
	ErrBranchExists = errors.New("branch already exists")

	// ErrSegmentExists indicates a segment name already present in the
	// draft
	ErrSegmentExists = errors.New("segment already exists")

	// ErrSensorExists indicates a sensor name already present in a
	// fusion segment
	ErrSensorExists = errors.New("sensor already exists")

	// ErrUnknownSegment indicates a segment name absent from the draft
	// or snapshot
	ErrUnknownSegment = errors.New("unknown segment")

	// ErrUnknownSensor indicates a sensor name absent from a fusion
	// segment
	ErrUnknownSensor = errors.New("unknown sensor")

	// ErrKindMismatch indicates a plain-segment operation against a
	// fusion segment, or vice versa
	ErrKindMismatch = errors.New("segment kind mismatch")

	// ErrOutOfRange indicates a sample index beyond the segment bounds
	ErrOutOfRange = errors.New("sample index out of range")

	// ErrRaggedFusion indicates a fusion segment whose sensors disagree
	// on frame indices, caught at commit time
	ErrRaggedFusion = model.ErrRaggedFusion

	// ErrEmptySegment indicates a non-draft segment without samples,
	// caught at commit time
	ErrEmptySegment = model.ErrEmptySegment
)
