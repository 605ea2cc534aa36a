// Package gitstore adapts a repository on disk to the read-only queries
// the hook package needs: object types, branch containment, and hook
// options from the repository config.
package gitstore

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/juju/errors"
	"github.com/niukuo/refguard/hook"
	"github.com/niukuo/refguard/logging"
)

type Store = *store
type store struct {
	store  storage.Storer
	logger logging.Logger
}

var _ hook.ObjectStore = (Store)(nil)

type Options func(s *store)

// WithStorer replaces the filesystem storage, mainly for tests.
func WithStorer(st storage.Storer) Options {
	return Options(func(s *store) {
		s.store = st
	})
}

// NewStore returns a store for the repository at dir.
func NewStore(dir string, logger logging.Logger, opts ...Options) (Store, error) {

	s := &store{
		logger: logger,
	}
	s.store = filesystem.NewStorageWithOptions(osfs.New(dir),
		cache.NewObjectLRUDefault(), filesystem.Options{})

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TypeOf resolves the type of the object hash refers to.
func (s *store) TypeOf(hash plumbing.Hash) (hook.ObjectKind, error) {

	obj, err := s.store.EncodedObject(plumbing.AnyObject, hash)
	if err != nil {
		return hook.ObjectOther, errors.Annotatef(err, "resolve object %s", hash)
	}

	switch obj.Type() {
	case plumbing.CommitObject:
		return hook.ObjectCommit, nil
	case plumbing.TagObject:
		return hook.ObjectTag, nil
	}

	return hook.ObjectOther, nil
}

// BranchesContaining counts the branch tips whose history includes hash.
// Annotated tag objects are peeled to the commit they tag first; objects
// that do not peel to a commit are contained in no branch.
func (s *store) BranchesContaining(hash plumbing.Hash) (int, error) {

	target, err := s.peelToCommit(hash)
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, nil
	}

	iter, err := s.store.IterReferences()
	if err != nil {
		s.logger.Warning("iter refs failed: ", err)
		return 0, errors.Annotate(err, "iter refs")
	}
	defer iter.Close()

	count := 0
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !ref.Name().IsBranch() {
			return nil
		}

		if ref.Hash() == target.Hash {
			count++
			return nil
		}

		tip, err := object.GetCommit(s.store, ref.Hash())
		if err != nil {
			return errors.Annotatef(err, "resolve tip of %s", ref.Name())
		}

		ok, err := target.IsAncestor(tip)
		if err != nil {
			return errors.Annotatef(err, "walk history of %s", ref.Name())
		}
		if ok {
			count++
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// peelToCommit follows tag objects until a commit is reached. Returns
// nil for objects that are neither commits nor tags.
func (s *store) peelToCommit(hash plumbing.Hash) (*object.Commit, error) {

	for {
		obj, err := s.store.EncodedObject(plumbing.AnyObject, hash)
		if err != nil {
			return nil, errors.Annotatef(err, "resolve object %s", hash)
		}

		switch obj.Type() {
		case plumbing.CommitObject:
			return object.GetCommit(s.store, hash)
		case plumbing.TagObject:
			tag, err := object.GetTag(s.store, hash)
			if err != nil {
				return nil, errors.Annotatef(err, "decode tag %s", hash)
			}
			hash = tag.Target
		default:
			return nil, nil
		}
	}
}
