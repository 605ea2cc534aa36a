// Package hook implements the policy decision for a single ref update.
//
// A git update hook is invoked once per ref per push with the ref name and
// the old/new object ids. Evaluate classifies the update and walks a fixed
// decision table; the first failing check wins. It keeps no state across
// invocations.
package hook

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// UpdateKind classifies an update by its old/new object ids.
type UpdateKind int

const (
	KindCreate UpdateKind = iota
	KindDelete
	KindModify
)

func (k UpdateKind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindDelete:
		return "delete"
	case KindModify:
		return "modify"
	}
	return "unknown"
}

// ObjectKind is the type of the object a modify points at. Only
// meaningful for KindModify.
type ObjectKind int

const (
	ObjectCommit ObjectKind = iota
	ObjectTag
	ObjectOther
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectCommit:
		return "commit"
	case ObjectTag:
		return "tag"
	}
	return "other"
}

// RefNamespace is the recognized ref prefix, checked in the fixed
// priority order tags, heads, remotes.
type RefNamespace int

const (
	NamespaceTags RefNamespace = iota
	NamespaceHeads
	NamespaceRemotes
	NamespaceOther
)

func (n RefNamespace) String() string {
	switch n {
	case NamespaceTags:
		return "tags"
	case NamespaceHeads:
		return "heads"
	case NamespaceRemotes:
		return "remotes"
	}
	return "other"
}

// RefUpdate is one proposed ref update. A zero hash on either side means
// the ref does not exist on that side.
type RefUpdate struct {
	Name plumbing.ReferenceName
	Old  plumbing.Hash
	New  plumbing.Hash
}

// Kind derives the update kind. Delete is tested first: a zero new side
// is a delete no matter what the old side says.
func (u RefUpdate) Kind() UpdateKind {
	switch {
	case u.New.IsZero():
		return KindDelete
	case u.Old.IsZero():
		return KindCreate
	}
	return KindModify
}

// Namespace derives the ref namespace from the name prefix.
func (u RefUpdate) Namespace() RefNamespace {
	switch {
	case u.Name.IsTag():
		return NamespaceTags
	case u.Name.IsBranch():
		return NamespaceHeads
	case u.Name.IsRemote():
		return NamespaceRemotes
	}
	return NamespaceOther
}

// ObjectStore is the read-only view of the repository the validator
// needs. Both queries may fail when the object is missing or corrupt;
// a failure rejects the update.
type ObjectStore interface {
	TypeOf(hash plumbing.Hash) (ObjectKind, error)
	BranchesContaining(hash plumbing.Hash) (int, error)
}

// Decision is the outcome of one evaluation. Message and Hint are only
// set on rejection; Hint carries the configured tag-name hint when the
// naming check fails.
type Decision struct {
	Accepted bool
	Message  string
	Hint     string
}

func accept() Decision {
	return Decision{Accepted: true}
}

func reject(message string) Decision {
	return Decision{Message: message}
}

// Evaluate decides whether a single ref update is allowed. It is a pure
// function of its arguments: nothing is cached or retained, and the store
// is only queried, never mutated.
func Evaluate(req RefUpdate, policy *Policy, store ObjectStore) Decision {
	start := time.Now()

	kind := req.Kind()
	namespace := req.Namespace()

	var objKind ObjectKind
	if kind == KindModify {
		var err error
		if objKind, err = store.TypeOf(req.New); err != nil {
			return observe(namespace, kind, reject("cannot determine object type"), start)
		}
	}

	var d Decision
	switch namespace {
	case NamespaceTags:
		d = evaluateTag(req, kind, objKind, policy, store)
	case NamespaceHeads:
		d = evaluateBranch(kind, policy,
			"Creating branches is not allowed",
			"Deleting a branch is not allowed")
	case NamespaceRemotes:
		d = evaluateBranch(kind, policy,
			"Creating a tracking branch is not allowed",
			"Deleting a tracking branch is not allowed")
	default:
		d = reject("unknown type of update")
	}

	return observe(namespace, kind, d, start)
}

func evaluateTag(req RefUpdate, kind UpdateKind, objKind ObjectKind,
	policy *Policy, store ObjectStore) Decision {

	switch kind {
	case KindCreate:
		if !policy.CreateTag {
			return reject("Creating tags is not allowed")
		}
		// a brand new tag still has to point at reachable history
		// and carry an acceptable name
		return checkTagName(req, policy, store)

	case KindDelete:
		if !policy.DeleteTag {
			return reject("Deleting tags is not allowed")
		}
		return accept()
	}

	switch objKind {
	case ObjectCommit:
		// lightweight tag: points straight at a commit
		if !policy.UnannotatedTag {
			return reject("Unannotated tags are not allowed")
		}
	case ObjectTag:
		// annotated tags need no extra gate
	default:
		return reject("unknown type of update")
	}

	return checkTagName(req, policy, store)
}

// checkTagName runs the shared tag-modify checks in fixed order:
// branch containment, master-name ban, naming convention.
func checkTagName(req RefUpdate, policy *Policy, store ObjectStore) Decision {
	if !policy.NakedTag {
		n, err := store.BranchesContaining(req.New)
		if err != nil {
			return reject("cannot check branch containment")
		}
		if n == 0 {
			return reject("tag not included in any branch")
		}
	}

	if strings.Contains(strings.ToLower(string(req.Name)), "master") {
		return reject("Tag names must not include the master branch name")
	}

	if policy.TagNameRegexp != nil && !policy.TagNameRegexp.MatchString(req.Name.Short()) {
		d := reject("violates tag naming convention")
		d.Hint = policy.TagNameHint
		return d
	}

	return accept()
}

func evaluateBranch(kind UpdateKind, policy *Policy, createMsg, deleteMsg string) Decision {
	switch kind {
	case KindCreate:
		if !policy.CreateBranch {
			return reject(createMsg)
		}
	case KindDelete:
		if !policy.DeleteBranch {
			return reject(deleteMsg)
		}
	}
	return accept()
}

func observe(namespace RefNamespace, kind UpdateKind, d Decision, start time.Time) Decision {
	result := "rejected"
	if d.Accepted {
		result = "accepted"
	}
	decisionCounter.WithLabelValues(namespace.String(), kind.String(), result).Inc()
	evaluateSeconds.Observe(time.Since(start).Seconds())
	return d
}
