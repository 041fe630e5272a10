// Package model describes the base objects manipulated by the version engine.
//
// The object model is composed of:
//
//	Samples:
//	  A sample references one unit of raw data by its remote path (URL or
//	  object key) and carries label annotations. Raw bytes live in external
//	  storage and are never inlined.
//
//	Segments:
//	  A segment is a named, ordered sequence of samples. A fusion segment
//	  multiplexes several per-sensor frame sequences aligned by frame index.
//
//	Snapshots:
//	  A snapshot maps segment names to content fingerprints, capturing the
//	  full state of a dataset at one point in time.
//
//	Commits:
//	  A commit is an immutable, content-addressed record of one snapshot
//	  plus lineage metadata. This is analogous to a commit in git.
//
//	Branches and tags:
//	  Named refs into the commit graph. Branches advance in a
//	  history-preserving manner, tags are write-once.
package model
