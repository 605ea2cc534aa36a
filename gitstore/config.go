package gitstore

import (
	format "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/juju/errors"
	"github.com/niukuo/refguard/hook"
)

// SectionHooks is the config section the hook options live in, e.g.
//
//	[hooks]
//		deletebranch = true
//		tagnameregexp = ^v[0-9]+\.[0-9]+$
const SectionHooks = "hooks"

// HookConfig reads the repository config and returns the hooks section
// as a hook.ConfigSource. The config is read fresh on every call.
func (s *store) HookConfig() (hook.ConfigSource, error) {

	cfg, err := s.store.Config()
	if err != nil {
		return nil, errors.Annotate(err, "read repository config")
	}

	return configSection{section: cfg.Raw.Section(SectionHooks)}, nil
}

type configSection struct {
	section *format.Section
}

var _ hook.ConfigSource = configSection{}

func (c configSection) HookOption(name string) (string, bool) {
	if !c.section.HasOption(name) {
		return "", false
	}
	return c.section.Option(name), true
}
