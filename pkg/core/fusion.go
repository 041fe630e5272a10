package core

import (
	"fmt"
	"sort"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/fingerprint"
	"github.com/graviti/tensorbay/pkg/model"
)

// FusionSegment groups multiple per-sensor frame sequences keyed by
// sensor name, aligned by a common frame index.
//
// Sensors may hold differing index sets while the parent draft is
// mutable; alignment is validated at commit time and a ragged fusion
// segment fails the commit.
type FusionSegment struct {
	name        string
	description string
	draft       bool

	sensors map[string]map[uint64]model.SampleDescriptor

	frozen      bool
	fp          fingerprint.Key
	sampleIndex map[string]string
}

func newFusionSegment(name string) *FusionSegment {
	return &FusionSegment{
		name:    name,
		sensors: make(map[string]map[uint64]model.SampleDescriptor),
	}
}

// Name of the fusion segment
func (f *FusionSegment) Name() string {
	return f.name
}

// Description of the fusion segment
func (f *FusionSegment) Description() string {
	return f.description
}

// SetDescription updates the description
func (f *FusionSegment) SetDescription(description string) error {
	if f.frozen {
		return status.ErrImmutable.WrapMessage("fusion segment %q is frozen", f.name)
	}
	f.description = description
	return nil
}

// MarkDraft marks the fusion segment as draft
func (f *FusionSegment) MarkDraft() error {
	if f.frozen {
		return status.ErrImmutable.WrapMessage("fusion segment %q is frozen", f.name)
	}
	f.draft = true
	return nil
}

// AddSensor registers a new sensor track
func (f *FusionSegment) AddSensor(name string) error {
	if f.frozen {
		return status.ErrImmutable.WrapMessage("fusion segment %q is frozen", f.name)
	}
	if err := model.CheckName(name); err != nil {
		return err
	}
	if _, ok := f.sensors[name]; ok {
		return status.ErrSensorExists.WrapMessage("sensor %q in fusion segment %q", name, f.name)
	}
	f.sensors[name] = make(map[uint64]model.SampleDescriptor)
	return nil
}

// AddFrame binds a sample to a frame index on a sensor track. Adding to
// an index already populated on that sensor replaces the sample.
func (f *FusionSegment) AddFrame(sensor string, index uint64, sample model.SampleDescriptor) error {
	if f.frozen {
		return status.ErrImmutable.WrapMessage("fusion segment %q is frozen", f.name)
	}
	track, ok := f.sensors[sensor]
	if !ok {
		return status.ErrUnknownSensor.WrapMessage("sensor %q in fusion segment %q", sensor, f.name)
	}
	track[index] = sample
	return nil
}

// RemoveFrame drops the sample at a frame index on a sensor track
func (f *FusionSegment) RemoveFrame(sensor string, index uint64) error {
	if f.frozen {
		return status.ErrImmutable.WrapMessage("fusion segment %q is frozen", f.name)
	}
	track, ok := f.sensors[sensor]
	if !ok {
		return status.ErrUnknownSensor.WrapMessage("sensor %q in fusion segment %q", sensor, f.name)
	}
	if _, ok = track[index]; !ok {
		return status.ErrOutOfRange.WrapMessage("frame %d on sensor %q in fusion segment %q", index, sensor, f.name)
	}
	delete(track, index)
	return nil
}

// Sensors yields the sensor names, sorted
func (f *FusionSegment) Sensors() []string {
	out := make([]string, 0, len(f.sensors))
	for name := range f.sensors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Frames yields one sensor's frames sorted by index, as a copy
func (f *FusionSegment) Frames(sensor string) ([]model.FrameDescriptor, error) {
	track, ok := f.sensors[sensor]
	if !ok {
		return nil, status.ErrUnknownSensor.WrapMessage("sensor %q in fusion segment %q", sensor, f.name)
	}
	out := make([]model.FrameDescriptor, 0, len(track))
	for index, sample := range track {
		out = append(out, model.FrameDescriptor{Index: index, Sample: sample})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Frozen tells whether the fusion segment has been committed
func (f *FusionSegment) Frozen() bool {
	return f.frozen
}

// Fingerprint of the frozen fusion segment. Zero until frozen.
func (f *FusionSegment) Fingerprint() fingerprint.Key {
	return f.fp
}

// Descriptor yields the persistable form: sensors sorted by name,
// frames sorted by index, so the canonical encoding is deterministic.
func (f *FusionSegment) Descriptor() model.FusionSegmentDescriptor {
	sensors := make([]model.SensorDescriptor, 0, len(f.sensors))
	for _, name := range f.Sensors() {
		frames, _ := f.Frames(name)
		sensors = append(sensors, model.SensorDescriptor{Name: name, Frames: frames})
	}
	return model.FusionSegmentDescriptor{
		Name:        f.name,
		Description: f.description,
		Draft:       f.draft,
		Sensors:     sensors,
	}
}

func (f *FusionSegment) validate() error {
	desc := f.Descriptor()
	return desc.Validate()
}

// frameKey identifies a frame sample within a fusion segment for diff
// and merge purposes
func frameKey(sensor string, index uint64) string {
	return fmt.Sprintf("%s/%d", sensor, index)
}

// freeze fingerprints the fusion segment and turns it immutable.
// Idempotent.
func (f *FusionSegment) freeze(maker *fingerprint.Maker) error {
	if f.frozen {
		return nil
	}
	desc := f.Descriptor()
	key, err := maker.Entity(desc)
	if err != nil {
		return err
	}
	index := make(map[string]string)
	for _, sensor := range desc.Sensors {
		for _, frame := range sensor.Frames {
			sk, e := maker.Entity(frame.Sample)
			if e != nil {
				return e
			}
			index[frameKey(sensor.Name, frame.Index)] = sk.String()
		}
	}
	f.fp = key
	f.sampleIndex = index
	f.frozen = true
	return nil
}

// thaw yields an unfrozen copy for copy-on-write edits
func (f *FusionSegment) thaw() *FusionSegment {
	out := newFusionSegment(f.name)
	out.description = f.description
	out.draft = f.draft
	for name, track := range f.sensors {
		cp := make(map[uint64]model.SampleDescriptor, len(track))
		for index, sample := range track {
			cp[index] = sample
		}
		out.sensors[name] = cp
	}
	return out
}

func fusionFromDescriptor(desc model.FusionSegmentDescriptor) *FusionSegment {
	out := newFusionSegment(desc.Name)
	out.description = desc.Description
	out.draft = desc.Draft
	for _, sensor := range desc.Sensors {
		track := make(map[uint64]model.SampleDescriptor, len(sensor.Frames))
		for _, frame := range sensor.Frames {
			track[frame.Index] = frame.Sample
		}
		out.sensors[sensor.Name] = track
	}
	return out
}
