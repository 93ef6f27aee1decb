package object

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// MissingObjectError reports an address referenced by a stored object that
// does not resolve in the store.
type MissingObjectError struct {
	Hash         Hash
	ReferencedBy Hash
}

func (e *MissingObjectError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("missing object %s (referenced by %s)", e.Hash, e.ReferencedBy)
}

func (e *MissingObjectError) Is(target error) bool {
	return target == ErrObjectNotFound
}

// ReachableSet returns all object hashes reachable from roots by following
// object references. Missing roots are ignored.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	out := make(map[Hash]struct{}, len(roots))
	err := s.walk(roots, func(h Hash, _ Object) {
		out[h] = struct{}{}
	}, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckConnectivity walks everything reachable from root and reports every
// referenced address that is not in the store. A missing root is itself an
// error. Commits are followed through their tree and parents.
func (s *Store) CheckConnectivity(root Hash) (int, error) {
	if !s.Has(root) {
		return 0, fmt.Errorf("connectivity %s: %w", root, ErrObjectNotFound)
	}
	var visited int
	var missing error
	err := s.walk([]Hash{root}, func(Hash, Object) {
		visited++
	}, func(h, from Hash) {
		missing = multierr.Append(missing, &MissingObjectError{Hash: h, ReferencedBy: from})
	})
	if err != nil {
		return visited, err
	}
	return visited, missing
}

// walk visits each reachable object once. onMissing, when set, receives
// references that do not resolve; otherwise they are skipped.
func (s *Store) walk(roots []Hash, visit func(Hash, Object), onMissing func(h, from Hash)) error {
	type ref struct {
		hash Hash
		from Hash
	}
	stack := make([]ref, 0, len(roots))
	for _, h := range uniqueHashes(roots) {
		stack = append(stack, ref{hash: h})
	}
	seen := make(map[Hash]struct{})
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[r.hash]; ok {
			continue
		}
		seen[r.hash] = struct{}{}

		obj, err := s.ReadObject(r.hash)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				if onMissing != nil && r.from != "" {
					onMissing(r.hash, r.from)
				}
				continue
			}
			return fmt.Errorf("reachable set read %s: %w", r.hash, err)
		}
		visit(r.hash, obj)

		for _, child := range referencedHashes(obj) {
			stack = append(stack, ref{hash: child, from: r.hash})
		}
	}
	return nil
}

func referencedHashes(obj Object) []Hash {
	switch o := obj.(type) {
	case *Blob:
		return nil
	case *TreeObj:
		refs := make([]Hash, 0, len(o.Entries))
		for _, e := range o.Entries {
			// Gitlinks name commits in another repository.
			if e.Mode == TreeModeGitlink {
				continue
			}
			refs = append(refs, e.Hash)
		}
		return refs
	case *CommitObj:
		refs := make([]Hash, 0, 1+len(o.Parents))
		refs = append(refs, o.TreeHash)
		return append(refs, o.Parents...)
	}
	return nil
}

func uniqueHashes(in []Hash) []Hash {
	set := make(map[Hash]struct{}, len(in))
	for _, h := range in {
		if h == "" {
			continue
		}
		set[h] = struct{}{}
	}
	out := make([]Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
