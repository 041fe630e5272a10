package model

import (
	"time"
)

// BranchDescriptor is a mutable named pointer into the commit graph
type BranchDescriptor struct {
	Name     string `json:"name" yaml:"name"`
	CommitID string `json:"id" yaml:"id"`
	_        struct{}
}

// TagDescriptor is a write-once named pointer into the commit graph,
// analogous to tags in git. Examples: Latest, production.
type TagDescriptor struct {
	Name         string        `json:"name" yaml:"name"`
	CommitID     string        `json:"id" yaml:"id"`
	Timestamp    time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	_            struct{}
}

// TagDescriptorOption is a functor to build tag descriptors
type TagDescriptorOption func(*TagDescriptor)

// TagContributors sets a list of contributors for the tag
func TagContributors(c []Contributor) TagDescriptorOption {
	return func(td *TagDescriptor) {
		td.Contributors = c
	}
}

// TagContributor sets a single contributor for the tag
func TagContributor(c Contributor) TagDescriptorOption {
	return TagContributors([]Contributor{c})
}

// NewTagDescriptor builds a tag descriptor for a commit
func NewTagDescriptor(name, commitID string, opts ...TagDescriptorOption) *TagDescriptor {
	td := &TagDescriptor{
		Name:      name,
		CommitID:  commitID,
		Timestamp: GetCommitTimestamp(),
	}
	for _, apply := range opts {
		apply(td)
	}
	return td
}
