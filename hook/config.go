package hook

import (
	"fmt"
	"regexp"
)

// ConfigSource provides hook options by key. Lookups are done fresh on
// every load; nothing is cached across invocations.
type ConfigSource interface {
	// HookOption returns the raw value for the named option and whether
	// it is set at all. A set key with an empty value is a git-style
	// boolean true.
	HookOption(name string) (value string, ok bool)
}

// Policy holds the per-repository hook options. TagNameRegexp is nil
// when no naming constraint is configured.
type Policy struct {
	UnannotatedTag bool
	CreateTag      bool
	DeleteTag      bool
	CreateBranch   bool
	DeleteBranch   bool
	NakedTag       bool

	TagNameRegexp *regexp.Regexp
	TagNameHint   string
}

// DefaultPolicy returns the policy used when no option is configured:
// creation is allowed, deletion and unannotated/naked tags are not.
func DefaultPolicy() *Policy {
	return &Policy{
		CreateTag:    true,
		CreateBranch: true,
	}
}

// LoadPolicy reads all hook options from src. An unparsable boolean or
// an invalid tag-name pattern is an error; the caller must treat a load
// error as a veto.
func LoadPolicy(src ConfigSource) (*Policy, error) {
	p := DefaultPolicy()

	for _, opt := range []struct {
		name  string
		value *bool
	}{
		{"unannotatedtag", &p.UnannotatedTag},
		{"createtag", &p.CreateTag},
		{"deletetag", &p.DeleteTag},
		{"createbranch", &p.CreateBranch},
		{"deletebranch", &p.DeleteBranch},
		{"nakedtag", &p.NakedTag},
	} {
		raw, ok := src.HookOption(opt.name)
		if !ok {
			continue
		}
		b, err := parseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", opt.name, err)
		}
		*opt.value = b
	}

	if raw, ok := src.HookOption("tagnameregexp"); ok && raw != "" {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("option tagnameregexp: %w", err)
		}
		p.TagNameRegexp = re
	}

	if raw, ok := src.HookOption("tagnamehint"); ok {
		p.TagNameHint = raw
	}

	return p, nil
}

// parseBool follows git's boolean syntax. A key set without a value
// means true.
func parseBool(raw string) (bool, error) {
	switch raw {
	case "", "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", raw)
}
