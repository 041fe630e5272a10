package core

import (
	"github.com/graviti/tensorbay/pkg/model"
)

// CommitIterator walks a commit's ancestry lazily, in reverse
// chronological (topological) order: a commit is yielded only after
// every in-walk descendant has been yielded. Ties are broken by the
// parent order recorded on commits, first parent (the mainline) first.
//
// The iterator is not resumable mid-stream across histories that grow
// underneath it; re-issue Ancestors to restart.
type CommitIterator struct {
	graph *commitGraph
	ready []string
	// pending child count per reachable commit
	indegree map[string]int
}

// Next yields the next ancestor, or false when the walk is exhausted
func (it *CommitIterator) Next() (model.CommitDescriptor, bool) {
	for len(it.ready) > 0 {
		id := it.ready[0]
		it.ready = it.ready[1:]
		commit, ok := it.graph.getCommit(id)
		if !ok {
			continue
		}
		for _, parent := range commit.Parents {
			it.indegree[parent]--
			if it.indegree[parent] == 0 {
				it.ready = append(it.ready, parent)
			}
		}
		return commit, true
	}
	return model.CommitDescriptor{}, false
}

// Ancestors opens a lazy walk over a commit and its ancestry. The
// sequence is finite and restartable only by calling Ancestors again.
//
// Opening counts each reachable commit's children within the walked
// subgraph; yields then release parents as their last child is emitted,
// which keeps the order topological on merge diamonds where plain
// depth-first traversal would surface a shared ancestor too early.
func (d *Dataset) Ancestors(ref string) (*CommitIterator, error) {
	id, err := d.Resolve(ref)
	if err != nil {
		return nil, err
	}
	indegree := map[string]int{id: 0}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		commit, ok := d.graph.getCommit(cur)
		if !ok {
			continue
		}
		for _, parent := range commit.Parents {
			if _, seen := indegree[parent]; !seen {
				stack = append(stack, parent)
			}
			indegree[parent]++
		}
	}
	return &CommitIterator{
		graph:    d.graph,
		ready:    []string{id},
		indegree: indegree,
	}, nil
}

// IsAncestor tells whether a is an ancestor of b (or a == b). The walk
// memoizes visited commits to bound cost on deep histories.
func (d *Dataset) IsAncestor(a, b string) (bool, error) {
	aID, err := d.Resolve(a)
	if err != nil {
		return false, err
	}
	bID, err := d.Resolve(b)
	if err != nil {
		return false, err
	}
	seen := make(map[string]struct{})
	stack := []string{bID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == aID {
			return true, nil
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		commit, ok := d.graph.getCommit(id)
		if !ok {
			continue
		}
		stack = append(stack, commit.Parents...)
	}
	return false, nil
}
