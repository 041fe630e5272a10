// Package badgerdb persists version metadata in a badger key-value
// store, with jsoniter-encoded values under class-prefixed keys.
package badgerdb

import (
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/graviti/tensorbay/pkg/model"
	"github.com/graviti/tensorbay/pkg/store"
)

const (
	commitPrefix   = "commit:"
	snapshotPrefix = "snapshot:"
	segmentPrefix  = "segment:"
	branchPrefix   = "branch:"
	tagPrefix      = "tag:"
)

var _ store.MetaStore = &metaStore{}

// Option is a functor to configure the store
type Option func(*metaStore)

// InMemory runs badger without a backing directory, for tests
func InMemory() Option {
	return func(m *metaStore) {
		m.inMemory = true
	}
}

// New creates a badger-backed metadata store rooted at baseDir
func New(baseDir string, opts ...Option) *metaStore {
	m := &metaStore{baseDir: baseDir}
	for _, configure := range opts {
		configure(m)
	}
	return m
}

type metaStore struct {
	baseDir  string
	inMemory bool
	db       *badger.DB
	init     sync.Once
	close    sync.Once
}

func (m *metaStore) Initialize() error {
	var err error
	m.init.Do(func() {
		bopts := badger.DefaultOptions(m.baseDir).WithLogger(nil)
		if m.inMemory {
			bopts = bopts.WithInMemory(true).WithDir("").WithValueDir("")
		}
		m.db, err = badger.Open(bopts)
	})
	return err
}

func (m *metaStore) Close() error {
	var err error
	m.close.Do(func() {
		if m.db != nil {
			err = m.db.Close()
			if err == nil {
				m.db = nil
			}
		}
	})
	return err
}

func rewriteBadgerError(err error) error {
	switch err {
	case badger.ErrKeyNotFound:
		return store.ErrNotFound.Wrap(err)
	case badger.ErrEmptyKey:
		return store.ErrIDIsRequired
	default:
		return err
	}
}

func (m *metaStore) put(key string, v interface{}) error {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return rewriteBadgerError(txn.Set([]byte(key), data))
	})
}

func (m *metaStore) get(key string, v interface{}) error {
	return m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return rewriteBadgerError(err)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return rewriteBadgerError(err)
		}
		return jsoniter.Unmarshal(data, v)
	})
}

func (m *metaStore) has(key string) (bool, error) {
	err := m.db.View(func(txn *badger.Txn) error {
		_, e := txn.Get([]byte(key))
		return e
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *metaStore) keysWithPrefix(prefix string) ([]string, error) {
	out := make([]string, 0)
	err := m.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = false
		it := txn.NewIterator(iopts)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			out = append(out, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	return out, err
}

func (m *metaStore) PutCommit(commit model.CommitDescriptor) error {
	if commit.ID == "" {
		return store.ErrIDIsRequired
	}
	return m.put(commitPrefix+commit.ID, &commit)
}

func (m *metaStore) GetCommit(id string) (model.CommitDescriptor, error) {
	var out model.CommitDescriptor
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := m.get(commitPrefix+id, &out)
	return out, err
}

func (m *metaStore) ListCommits() ([]string, error) {
	return m.keysWithPrefix(commitPrefix)
}

func (m *metaStore) PutSnapshot(id string, snapshot model.SnapshotDescriptor) error {
	if id == "" {
		return store.ErrIDIsRequired
	}
	return m.put(snapshotPrefix+id, &snapshot)
}

func (m *metaStore) GetSnapshot(id string) (model.SnapshotDescriptor, error) {
	var out model.SnapshotDescriptor
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := m.get(snapshotPrefix+id, &out)
	return out, err
}

func (m *metaStore) PutSegment(id string, record model.SegmentRecord) error {
	if id == "" {
		return store.ErrIDIsRequired
	}
	return m.put(segmentPrefix+id, &record)
}

func (m *metaStore) GetSegment(id string) (model.SegmentRecord, error) {
	var out model.SegmentRecord
	if id == "" {
		return out, store.ErrIDIsRequired
	}
	err := m.get(segmentPrefix+id, &out)
	return out, err
}

func (m *metaStore) PutBranch(branch model.BranchDescriptor) error {
	if branch.Name == "" {
		return store.ErrIDIsRequired
	}
	return m.put(branchPrefix+branch.Name, &branch)
}

func (m *metaStore) GetBranch(name string) (model.BranchDescriptor, error) {
	var out model.BranchDescriptor
	if name == "" {
		return out, store.ErrIDIsRequired
	}
	err := m.get(branchPrefix+name, &out)
	return out, err
}

func (m *metaStore) DeleteBranch(name string) error {
	if name == "" {
		return store.ErrIDIsRequired
	}
	key := branchPrefix + name
	ok, err := m.has(key)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound.WrapMessage("branch %q", name)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return rewriteBadgerError(txn.Delete([]byte(key)))
	})
}

func (m *metaStore) ListBranches() ([]string, error) {
	return m.keysWithPrefix(branchPrefix)
}

func (m *metaStore) PutTag(tag model.TagDescriptor) error {
	if tag.Name == "" {
		return store.ErrIDIsRequired
	}
	key := tagPrefix + tag.Name
	ok, err := m.has(key)
	if err != nil {
		return err
	}
	if ok {
		return store.ErrAlreadyExists.WrapMessage("tag %q", tag.Name)
	}
	return m.put(key, &tag)
}

func (m *metaStore) GetTag(name string) (model.TagDescriptor, error) {
	var out model.TagDescriptor
	if name == "" {
		return out, store.ErrIDIsRequired
	}
	err := m.get(tagPrefix+name, &out)
	return out, err
}

func (m *metaStore) ListTags() ([]string, error) {
	return m.keysWithPrefix(tagPrefix)
}
