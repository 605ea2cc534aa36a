package gitstore

import (
	"strings"
	"testing"

	fixtures "github.com/go-git/go-git-fixtures/v4"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/niukuo/refguard/hook"
	"github.com/niukuo/refguard/logging"
	"github.com/stretchr/testify/assert"
)

func newFixtureStore(t *testing.T, f *fixtures.Fixture) Store {
	st := filesystem.NewStorageWithOptions(f.DotGit(),
		cache.NewObjectLRUDefault(), filesystem.Options{})

	s, err := NewStore("", logging.GetLogger("gitstore_test"), WithStorer(st))
	assert.NoError(t, err)

	return s
}

func branchTips(t *testing.T, s Store) map[plumbing.ReferenceName]plumbing.Hash {
	iter, err := s.store.IterReferences()
	assert.NoError(t, err)
	defer iter.Close()

	tips := make(map[plumbing.ReferenceName]plumbing.Hash)
	assert.NoError(t, iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && ref.Name().IsBranch() {
			tips[ref.Name()] = ref.Hash()
		}
		return nil
	}))

	return tips
}

func TestTypeOf(t *testing.T) {
	s := assert.New(t)

	store := newFixtureStore(t, fixtures.Basic().One())
	tips := branchTips(t, store)
	s.NotEmpty(tips)

	for name, tip := range tips {
		kind, err := store.TypeOf(tip)
		s.NoError(err)
		s.Equal(hook.ObjectCommit, kind, name)

		// the commit's tree is neither a commit nor a tag
		commit, err := object.GetCommit(store.store, tip)
		s.NoError(err)
		kind, err = store.TypeOf(commit.TreeHash)
		s.NoError(err)
		s.Equal(hook.ObjectOther, kind, name)
	}

	_, err := store.TypeOf(plumbing.NewHash(strings.Repeat("a", 40)))
	s.Error(err)
}

func TestTypeOfTagObjects(t *testing.T) {
	s := assert.New(t)

	f := fixtures.ByURL("https://github.com/git-fixtures/tags.git").One()
	store := newFixtureStore(t, f)

	iter, err := store.store.IterReferences()
	s.NoError(err)
	defer iter.Close()

	annotated := 0
	s.NoError(iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !ref.Name().IsTag() {
			return nil
		}
		kind, err := store.TypeOf(ref.Hash())
		s.NoError(err)
		if kind == hook.ObjectTag {
			annotated++
		}
		return nil
	}))

	s.NotZero(annotated)
}

func TestBranchesContaining(t *testing.T) {
	s := assert.New(t)

	store := newFixtureStore(t, fixtures.Basic().One())
	tips := branchTips(t, store)
	s.NotEmpty(tips)

	var root *object.Commit
	for name, tip := range tips {
		n, err := store.BranchesContaining(tip)
		s.NoError(err)
		s.GreaterOrEqual(n, 1, name)

		// walk to the root commit: every branch shares it
		commit, err := object.GetCommit(store.store, tip)
		s.NoError(err)
		for commit.NumParents() > 0 {
			commit, err = commit.Parent(0)
			s.NoError(err)
		}
		if root == nil {
			root = commit
		} else {
			s.Equal(root.Hash, commit.Hash)
		}
	}

	n, err := store.BranchesContaining(root.Hash)
	s.NoError(err)
	s.Equal(len(tips), n)

	// trees peel to nothing and are contained nowhere
	tip := tips["refs/heads/master"]
	commit, err := object.GetCommit(store.store, tip)
	s.NoError(err)
	n, err = store.BranchesContaining(commit.TreeHash)
	s.NoError(err)
	s.Zero(n)

	_, err = store.BranchesContaining(plumbing.NewHash(strings.Repeat("a", 40)))
	s.Error(err)
}

func TestBranchesContainingPeelsTags(t *testing.T) {
	s := assert.New(t)

	f := fixtures.ByURL("https://github.com/git-fixtures/tags.git").One()
	store := newFixtureStore(t, f)

	iter, err := store.store.IterReferences()
	s.NoError(err)
	defer iter.Close()

	checked := 0
	s.NoError(iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !ref.Name().IsTag() {
			return nil
		}

		kind, err := store.TypeOf(ref.Hash())
		s.NoError(err)
		if kind != hook.ObjectTag {
			return nil
		}

		tag, err := object.GetTag(store.store, ref.Hash())
		s.NoError(err)

		n, err := store.BranchesContaining(ref.Hash())
		s.NoError(err)
		if tag.TargetType == plumbing.CommitObject {
			// the fixture tags its branch history
			s.GreaterOrEqual(n, 1, ref.Name())
		} else {
			s.Zero(n, ref.Name())
		}
		checked++
		return nil
	}))

	s.NotZero(checked)
}
