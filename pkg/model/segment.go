package model

import (
	"sort"
)

// SegmentKind discriminates plain segments from fusion segments
type SegmentKind string

const (
	// KindSegment is a plain ordered sequence of samples
	KindSegment SegmentKind = "segment"

	// KindFusion is a multi-sensor segment aligned by frame index
	KindFusion SegmentKind = "fusion"
)

// SegmentDescriptor is the frozen form of a plain segment.
//
// Sample order is semantically meaningful for temporal data and is part
// of the fingerprinted content.
type SegmentDescriptor struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Draft       bool               `json:"draft,omitempty" yaml:"draft,omitempty"`
	Samples     []SampleDescriptor `json:"samples" yaml:"samples"`
	_           struct{}
}

// Validate a segment descriptor. Only draft segments may be empty.
func (s *SegmentDescriptor) Validate() error {
	if err := CheckName(s.Name); err != nil {
		return err
	}
	if len(s.Samples) == 0 && !s.Draft {
		return ErrEmptySegment.WrapMessage("segment %q", s.Name)
	}
	for i := range s.Samples {
		if err := s.Samples[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FrameDescriptor binds one sample to a frame index within a sensor track
type FrameDescriptor struct {
	Index  uint64           `json:"index" yaml:"index"`
	Sample SampleDescriptor `json:"sample" yaml:"sample"`
	_      struct{}
}

// SensorDescriptor is one sensor track of a fusion segment, frames
// sorted by index
type SensorDescriptor struct {
	Name   string            `json:"name" yaml:"name"`
	Frames []FrameDescriptor `json:"frames" yaml:"frames"`
	_      struct{}
}

// FusionSegmentDescriptor is the frozen form of a fusion segment,
// sensors sorted by name.
//
// Once committed, every sensor shares the same set of frame indices.
type FusionSegmentDescriptor struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Draft       bool               `json:"draft,omitempty" yaml:"draft,omitempty"`
	Sensors     []SensorDescriptor `json:"sensors" yaml:"sensors"`
	_           struct{}
}

// Validate a fusion segment descriptor: names, non-emptiness and frame
// alignment across sensors.
func (f *FusionSegmentDescriptor) Validate() error {
	if err := CheckName(f.Name); err != nil {
		return err
	}
	if len(f.Sensors) == 0 && !f.Draft {
		return ErrEmptySegment.WrapMessage("fusion segment %q", f.Name)
	}
	var reference []uint64
	for i := range f.Sensors {
		sensor := &f.Sensors[i]
		if err := CheckName(sensor.Name); err != nil {
			return err
		}
		indices := make([]uint64, 0, len(sensor.Frames))
		for j := range sensor.Frames {
			if err := sensor.Frames[j].Sample.Validate(); err != nil {
				return err
			}
			indices = append(indices, sensor.Frames[j].Index)
		}
		sort.Slice(indices, func(a, b int) bool { return indices[a] < indices[b] })
		if i == 0 {
			reference = indices
			continue
		}
		if !equalIndices(reference, indices) {
			return ErrRaggedFusion.WrapMessage(
				"fusion segment %q: sensor %q disagrees with sensor %q on frame indices",
				f.Name, sensor.Name, f.Sensors[0].Name)
		}
	}
	return nil
}

func equalIndices(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SegmentRecord is the persisted union of the two segment kinds,
// addressed by content fingerprint in metadata stores.
type SegmentRecord struct {
	Kind    SegmentKind              `json:"kind" yaml:"kind"`
	Segment *SegmentDescriptor       `json:"segment,omitempty" yaml:"segment,omitempty"`
	Fusion  *FusionSegmentDescriptor `json:"fusion,omitempty" yaml:"fusion,omitempty"`
	_       struct{}
}

// Name of the wrapped segment
func (r *SegmentRecord) Name() string {
	switch r.Kind {
	case KindFusion:
		if r.Fusion != nil {
			return r.Fusion.Name
		}
	default:
		if r.Segment != nil {
			return r.Segment.Name
		}
	}
	return ""
}
