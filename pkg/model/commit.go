package model

import (
	"time"
)

const (
	// CurrentCommitVersion of the commit descriptor schema
	CurrentCommitVersion = 1
)

// CommitDescriptor represents one immutable point in a dataset's
// history: a snapshot reference plus lineage metadata.
//
// The ID is the content fingerprint of the commit seed (snapshot id,
// message, parents, timestamp, contributors), so identical history is
// never duplicated. Parents are stored as ids, not live references:
// first parent is the mainline.
type CommitDescriptor struct {
	ID           string        `json:"id" yaml:"id"`
	Parents      []string      `json:"parents,omitempty" yaml:"parents,omitempty"`
	Message      string        `json:"message" yaml:"message"`
	Timestamp    time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Contributors []Contributor `json:"contributors" yaml:"contributors"`
	SnapshotID   string        `json:"snapshot" yaml:"snapshot"`
	Version      uint64        `json:"version,omitempty" yaml:"version,omitempty"`
	_            struct{}
}

// IsRoot tells whether the commit has no parent
func (c *CommitDescriptor) IsRoot() bool {
	return len(c.Parents) == 0
}

// HasParent tells whether id is one of the commit's recorded parents
func (c *CommitDescriptor) HasParent(id string) bool {
	for _, p := range c.Parents {
		if p == id {
			return true
		}
	}
	return false
}

// GetCommitTimestamp yields the timestamp to record on a new commit
func GetCommitTimestamp() time.Time {
	return time.Now().UTC()
}
