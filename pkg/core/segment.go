package core

import (
	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/fingerprint"
	"github.com/graviti/tensorbay/pkg/model"
)

// Segment is a named ordered collection of data samples.
//
// A segment is a mutable container until its parent draft is committed.
// After commit, reads keep working on the frozen view and writes fail
// with status.ErrImmutable.
type Segment struct {
	name        string
	description string
	draft       bool

	samples []model.SampleDescriptor

	frozen      bool
	fp          fingerprint.Key
	sampleIndex map[string]string
}

func newSegment(name string) *Segment {
	return &Segment{name: name}
}

// Name of the segment
func (s *Segment) Name() string {
	return s.name
}

// Description of the segment
func (s *Segment) Description() string {
	return s.description
}

// SetDescription updates the segment description
func (s *Segment) SetDescription(description string) error {
	if s.frozen {
		return status.ErrImmutable.WrapMessage("segment %q is frozen", s.name)
	}
	s.description = description
	return nil
}

// MarkDraft marks the segment as draft: draft segments may be committed
// empty
func (s *Segment) MarkDraft() error {
	if s.frozen {
		return status.ErrImmutable.WrapMessage("segment %q is frozen", s.name)
	}
	s.draft = true
	return nil
}

// Append adds a sample at the end of the segment
func (s *Segment) Append(sample model.SampleDescriptor) error {
	if s.frozen {
		return status.ErrImmutable.WrapMessage("segment %q is frozen", s.name)
	}
	s.samples = append(s.samples, sample)
	return nil
}

// Remove deletes the sample at the given position
func (s *Segment) Remove(index int) error {
	if s.frozen {
		return status.ErrImmutable.WrapMessage("segment %q is frozen", s.name)
	}
	if index < 0 || index >= len(s.samples) {
		return status.ErrOutOfRange.WrapMessage("index %d, segment %q has %d samples", index, s.name, len(s.samples))
	}
	s.samples = append(s.samples[:index], s.samples[index+1:]...)
	return nil
}

// Len yields the number of samples
func (s *Segment) Len() int {
	return len(s.samples)
}

// Samples yields the ordered sequence of samples as a copy: mutating
// the returned slice does not affect the segment.
func (s *Segment) Samples() []model.SampleDescriptor {
	out := make([]model.SampleDescriptor, len(s.samples))
	copy(out, s.samples)
	return out
}

// Frozen tells whether the segment has been committed
func (s *Segment) Frozen() bool {
	return s.frozen
}

// Fingerprint of the frozen segment. Zero until frozen.
func (s *Segment) Fingerprint() fingerprint.Key {
	return s.fp
}

// Descriptor yields the persistable form of the segment
func (s *Segment) Descriptor() model.SegmentDescriptor {
	return model.SegmentDescriptor{
		Name:        s.name,
		Description: s.description,
		Draft:       s.draft,
		Samples:     s.Samples(),
	}
}

func (s *Segment) validate() error {
	desc := s.Descriptor()
	return desc.Validate()
}

// freeze fingerprints the segment and turns it immutable. Idempotent.
func (s *Segment) freeze(maker *fingerprint.Maker) error {
	if s.frozen {
		return nil
	}
	desc := s.Descriptor()
	key, err := maker.Entity(desc)
	if err != nil {
		return err
	}
	index := make(map[string]string, len(s.samples))
	for i := range s.samples {
		sk, e := maker.Entity(s.samples[i])
		if e != nil {
			return e
		}
		index[s.samples[i].RemotePath] = sk.String()
	}
	s.fp = key
	s.sampleIndex = index
	s.frozen = true
	return nil
}

// thaw yields an unfrozen copy for copy-on-write edits
func (s *Segment) thaw() *Segment {
	out := newSegment(s.name)
	out.description = s.description
	out.draft = s.draft
	out.samples = s.Samples()
	return out
}

func segmentFromDescriptor(desc model.SegmentDescriptor) *Segment {
	out := newSegment(desc.Name)
	out.description = desc.Description
	out.draft = desc.Draft
	out.samples = make([]model.SampleDescriptor, len(desc.Samples))
	copy(out.samples, desc.Samples)
	return out
}
