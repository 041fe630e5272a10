package model

import (
	"fmt"
	"strings"
)

func getArchivePathToCommits() string {
	return "commits/"
}

// GetArchivePathToCommit yields the path to a commit descriptor in a
// metadata archive
func GetArchivePathToCommit(commitID string) string {
	return fmt.Sprint(getArchivePathToCommits(), commitID, "/commit.yaml")
}

// GetArchivePathPrefixToCommits yields the path prefix under which all
// commit descriptors live
func GetArchivePathPrefixToCommits() string {
	return getArchivePathToCommits()
}

// GetArchivePathToSnapshot yields the path to a snapshot descriptor
func GetArchivePathToSnapshot(snapshotID string) string {
	return fmt.Sprint("snapshots/", snapshotID, ".yaml")
}

// GetArchivePathToSegment yields the path to a frozen segment record,
// addressed by its content fingerprint
func GetArchivePathToSegment(fingerprint string) string {
	return fmt.Sprint("segments/", fingerprint, ".yaml")
}

func getArchivePathToBranches() string {
	return "branches/"
}

// GetArchivePathToBranch yields the path to a branch descriptor
func GetArchivePathToBranch(name string) string {
	return fmt.Sprint(getArchivePathToBranches(), name, ".yaml")
}

// GetArchivePathPrefixToBranches yields the path prefix under which all
// branch descriptors live
func GetArchivePathPrefixToBranches() string {
	return getArchivePathToBranches()
}

func getArchivePathToTags() string {
	return "tags/"
}

// GetArchivePathToTag yields the path to a tag descriptor
func GetArchivePathToTag(name string) string {
	return fmt.Sprint(getArchivePathToTags(), name, ".yaml")
}

// GetArchivePathPrefixToTags yields the path prefix under which all tag
// descriptors live
func GetArchivePathPrefixToTags() string {
	return getArchivePathToTags()
}

// ArchivePathComponents describes the parsed parts of an archive path
type ArchivePathComponents struct {
	Class           string
	ID              string
	ArchiveFileName string
}

// GetArchivePathComponents parses an archive path produced by the
// helpers above
func GetArchivePathComponents(archivePath string) (ArchivePathComponents, error) {
	cs := strings.SplitN(archivePath, "/", 3)
	if len(cs) < 2 {
		return ArchivePathComponents{}, fmt.Errorf("invalid archive path %q", archivePath)
	}
	out := ArchivePathComponents{Class: cs[0]}
	if len(cs) == 3 {
		out.ID = cs[1]
		out.ArchiveFileName = cs[2]
		return out, nil
	}
	name := cs[1]
	out.ID = strings.TrimSuffix(name, ".yaml")
	out.ArchiveFileName = name
	return out, nil
}
