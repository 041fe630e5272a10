package core

import (
	"sort"
	"sync"

	"github.com/graviti/tensorbay/pkg/core/status"
	"github.com/graviti/tensorbay/pkg/model"
)

// refRegistry holds the mutable pointers into the commit graph.
//
// All head movements happen under one mutex hold, so a branch advance
// is an atomic compare-and-swap: two commits racing to advance the same
// branch cannot both win, the loser observes ErrNonFastForward.
type refRegistry struct {
	mu       sync.Mutex
	branches map[string]string
	tags     map[string]model.TagDescriptor
}

func newRefRegistry() *refRegistry {
	return &refRegistry{
		branches: make(map[string]string),
		tags:     make(map[string]model.TagDescriptor),
	}
}

func (r *refRegistry) createBranch(name, commitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[name]; ok {
		return status.ErrBranchExists.WrapMessage("branch %q", name)
	}
	r.branches[name] = commitID
	return nil
}

// advance moves a branch head to the given commit. The fast-forward
// check and the swap share the critical section: the new commit's
// recorded parents must include the head observed at swap time.
func (r *refRegistry) advance(name string, commit model.CommitDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	head, ok := r.branches[name]
	if !ok {
		return status.ErrUnknownRef.WrapMessage("branch %q", name)
	}
	if !commit.HasParent(head) {
		return status.ErrNonFastForward.WrapMessage(
			"branch %q is at %s, not a parent of %s", name, head, commit.ID)
	}
	r.branches[name] = commit.ID
	return nil
}

func (r *refRegistry) deleteBranch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[name]; !ok {
		return status.ErrUnknownRef.WrapMessage("branch %q", name)
	}
	delete(r.branches, name)
	return nil
}

func (r *refRegistry) createTag(td model.TagDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[td.Name]; ok {
		return status.ErrDuplicateTag.WrapMessage("tag %q", td.Name)
	}
	r.tags[td.Name] = td
	return nil
}

func (r *refRegistry) branchHead(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	head, ok := r.branches[name]
	return head, ok
}

func (r *refRegistry) tag(name string) (model.TagDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	td, ok := r.tags[name]
	return td, ok
}

func (r *refRegistry) listBranches() []model.BranchDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.BranchDescriptor, 0, len(r.branches))
	for name, head := range r.branches {
		out = append(out, model.BranchDescriptor{Name: name, CommitID: head})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *refRegistry) listTags() []model.TagDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TagDescriptor, 0, len(r.tags))
	for _, td := range r.tags {
		out = append(out, td)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
