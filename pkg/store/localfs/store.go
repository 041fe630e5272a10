// Package localfs persists version metadata as yaml descriptors on a
// filesystem, laid out along the archive paths of the model package.
package localfs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

var _ store.MetaStore = &localFsStore{}

// Option is a functor to configure the store
type Option func(*localFsStore)

// BaseDir sets the root directory of the metadata archive
func BaseDir(path string) Option {
	return func(fs *localFsStore) {
		fs.baseDir = path
	}
}

// FileSystem overrides the filesystem, e.g. with afero.NewMemMapFs()
// in tests
func FileSystem(afs afero.Fs) Option {
	return func(fs *localFsStore) {
		fs.fs = afs
	}
}

// New creates a filesystem-backed metadata store
func New(opts ...Option) *localFsStore {
	fs := &localFsStore{
		baseDir: ".tensorbay",
		fs:      afero.NewOsFs(),
	}
	for _, configure := range opts {
		configure(fs)
	}
	return fs
}

type localFsStore struct {
	baseDir string
	fs      afero.Fs
	once    sync.Once
}

func (s *localFsStore) Initialize() error {
	var err error
	s.once.Do(func() {
		err = s.fs.MkdirAll(s.baseDir, 0700)
	})
	return err
}

func (s *localFsStore) Close() error {
	return nil
}

func (s *localFsStore) path(archivePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(archivePath))
}

func (s *localFsStore) write(archivePath string, v interface{}) error {
	buffer, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	pth := s.path(archivePath)
	if err = s.fs.MkdirAll(filepath.Dir(pth), 0700); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, pth, buffer, 0600)
}

func (s *localFsStore) read(archivePath string, v interface{}) error {
	data, err := afero.ReadFile(s.fs, s.path(archivePath))
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound.Wrap(err)
		}
		return err
	}
	return yaml.Unmarshal(data, v)
}

func (s *localFsStore) exists(archivePath string) bool {
	ok, err := afero.Exists(s.fs, s.path(archivePath))
	return err == nil && ok
}

// list yields the ids found under an archive prefix, one per yaml file
// or per directory (commits)
func (s *localFsStore) list(prefix string) ([]string, error) {
	dir := s.path(prefix)
	ok, err := afero.DirExists(s.fs, dir)
	if err != nil || !ok {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if !info.IsDir() {
			if !strings.HasSuffix(name, ".yaml") {
				continue
			}
			name = strings.TrimSuffix(name, ".yaml")
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *localFsStore) PutCommit(commit model.CommitDescriptor) error {
	if commit.ID == "" {
		return store.ErrIDIsRequired
	}
	return s.write(model.GetArchivePathToCommit(commit.ID), &commit)
}

func (s *localFsStore) GetCommit(id string) (model.CommitDescriptor, error) {
	var out model.CommitDescriptor
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := s.read(model.GetArchivePathToCommit(id), &out)
	return out, err
}

func (s *localFsStore) ListCommits() ([]string, error) {
	return s.list(model.GetArchivePathPrefixToCommits())
}

func (s *localFsStore) PutSnapshot(id string, snapshot model.SnapshotDescriptor) error {
	if id == "" {
		return store.ErrIDIsRequired
	}
	return s.write(model.GetArchivePathToSnapshot(id), &snapshot)
}

func (s *localFsStore) GetSnapshot(id string) (model.SnapshotDescriptor, error) {
	var out model.SnapshotDescriptor
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := s.read(model.GetArchivePathToSnapshot(id), &out)
	return out, err
}

func (s *localFsStore) PutSegment(id string, record model.SegmentRecord) error {
	if id == "" {
		return store.ErrIDIsRequired
	}
	return s.write(model.GetArchivePathToSegment(id), &record)
}

func (s *localFsStore) GetSegment(id string) (model.SegmentRecord, error) {
	var out model.SegmentRecord
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := s.read(model.GetArchivePathToSegment(id), &out)
	return out, err
}

func (s *localFsStore) PutBranch(branch model.BranchDescriptor) error {
	if branch.Name == "" {
		return store.ErrIDIsRequired
	}
	return s.write(model.GetArchivePathToBranch(branch.Name), &branch)
}

func (s *localFsStore) GetBranch(name string) (model.BranchDescriptor, error) {
	var out model.BranchDescriptor
	if name == "" {
		return out, store.ErrIDIsRequired
	}
	err := s.read(model.GetArchivePathToBranch(name), &out)
	return out, err
}

func (s *localFsStore) DeleteBranch(name string) error {
	if name == "" {
		return store.ErrIDIsRequired
	}
	pth := model.GetArchivePathToBranch(name)
	if !s.exists(pth) {
		return store.ErrNotFound.WrapMessage("branch %q", name)
	}
	return s.fs.Remove(s.path(pth))
}

func (s *localFsStore) ListBranches() ([]string, error) {
	return s.list(model.GetArchivePathPrefixToBranches())
}

func (s *localFsStore) PutTag(tag model.TagDescriptor) error {
	if tag.Name == "" {
		return store.ErrIDIsRequired
	}
	pth := model.GetArchivePathToTag(tag.Name)
	if s.exists(pth) {
		return store.ErrAlreadyExists.WrapMessage("tag %q", tag.Name)
	}
	return s.write(pth, &tag)
}

func (s *localFsStore) GetTag(name string) (model.TagDescriptor, error) {
	var out model.TagDescriptor
	if name == "" {
		return out, store.ErrIDIsRequired
	}
	err := s.read(model.GetArchivePathToTag(name), &out)
	return out, err
}

func (s *localFsStore) ListTags() ([]string, error) {
	return s.list(model.GetArchivePathPrefixToTags())
}
