package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/niukuo/refguard/gitstore"
	"github.com/niukuo/refguard/hook"
	"github.com/niukuo/refguard/logging"
)

// refguard is installed as a git update hook:
//
//	ln -s /path/to/refguard $GIT_DIR/hooks/update
//
// git invokes it once per ref with <ref> <oldrev> <newrev> and aborts
// the update when it exits non-zero. Everything written to stderr is
// relayed to the pusher.
func main() {

	repo := flag.String("repo", "", "path to the repository (defaults to $GIT_DIR, then the working directory)")

	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s [-repo dir] <ref> <oldrev> <newrev>\n", os.Args[0])
		os.Exit(1)
	}

	dir := *repo
	if dir == "" {
		dir = os.Getenv("GIT_DIR")
	}
	if dir == "" {
		dir = "."
	}

	logger := logging.GetLogger("refguard")

	store, err := gitstore.NewStore(dir, logging.GetLogger("gitstore"))
	if err != nil {
		logger.Errorf("open repository failed, dir: %s, err: %v", dir, err)
		deny("cannot open repository", "")
	}

	src, err := store.HookConfig()
	if err != nil {
		logger.Errorf("read hook config failed, err: %v", err)
		deny("cannot read hook configuration", "")
	}

	policy, err := hook.LoadPolicy(src)
	if err != nil {
		logger.Errorf("load policy failed, err: %v", err)
		deny(fmt.Sprintf("invalid hook configuration: %s", err), "")
	}

	req := hook.RefUpdate{
		Name: plumbing.ReferenceName(flag.Arg(0)),
		Old:  plumbing.NewHash(flag.Arg(1)),
		New:  plumbing.NewHash(flag.Arg(2)),
	}

	if d := hook.Evaluate(req, policy, store); !d.Accepted {
		deny(fmt.Sprintf("%s: %s", req.Name, d.Message), d.Hint)
	}
}

func deny(message, hint string) {
	fmt.Fprintln(os.Stderr, "refguard: "+message)
	if hint != "" {
		fmt.Fprintln(os.Stderr, "hint: "+hint)
	}
	os.Exit(1)
}
