package model

import (
	"fmt"
)

// Label is one annotation attached to a sample.
//
// The Type discriminates the label format (e.g. "classification",
// "box2d", "box3d"); Attributes carry format-specific fields and are
// validated upstream by schema validators, not by this engine.
type Label struct {
	Type       string                 `json:"type" yaml:"type"`
	Category   string                 `json:"category,omitempty" yaml:"category,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// SampleDescriptor references one unit of raw data plus its labels.
//
// A sample is identified within a segment by its RemotePath and
// fingerprinted over its semantic fields. LocalPath is ephemeral cache
// state and is excluded from both serialization and fingerprinting.
type SampleDescriptor struct {
	RemotePath string  `json:"remotePath" yaml:"remotePath"`
	Timestamp  float64 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Labels     []Label `json:"labels,omitempty" yaml:"labels,omitempty"`

	LocalPath string `json:"-" yaml:"-"`
	_         struct{}
}

// Validate a sample descriptor
func (s *SampleDescriptor) Validate() error {
	if s.RemotePath == "" {
		return ErrInvalidSample.WrapMessage("remote path is required")
	}
	return nil
}

// Contributor who created the object
type Contributor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	_     struct{}
}

func (c *Contributor) String() string {
	if c.Email == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}
