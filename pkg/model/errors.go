package model

import (
	"github.com/graviti/tensorbay/pkg/errors"
)

var (
	// ErrInvalidName indicates a segment, sensor, branch or tag name that
	// does not abide by naming rules
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidSample indicates a sample descriptor with missing or
	// inconsistent fields
	ErrInvalidSample = errors.New("invalid sample")

	// ErrEmptySegment indicates a non-draft segment without any sample
	ErrEmptySegment = errors.New("empty segment")

	// ErrRaggedFusion indicates a fusion segment whose sensors disagree
	// on the set of frame indices
	ErrRaggedFusion = errors.New("ragged fusion segment")
)
