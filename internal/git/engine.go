// Package git names the commands the simulator understands and turns a
// typed command line into one of them.
package git

import (
	"fmt"

	"github.com/mattn/go-shellwords"
)

// Op is a command verb. The set is closed: adding a verb means adding a
// constant here and a case in the dispatcher.
type Op int

const (
	OpUnknown Op = iota
	OpCommit
	OpBranch
	OpTag
	OpCheckout
	OpReset
	OpRevert
	OpMerge
	OpRebase
	OpFetch
	OpPush
	OpPull
	OpClone
	OpLog
	OpReflog
	OpHelp
)

var opNames = [...]string{
	OpUnknown:  "unknown",
	OpCommit:   "commit",
	OpBranch:   "branch",
	OpTag:      "tag",
	OpCheckout: "checkout",
	OpReset:    "reset",
	OpRevert:   "revert",
	OpMerge:    "merge",
	OpRebase:   "rebase",
	OpFetch:    "fetch",
	OpPush:     "push",
	OpPull:     "pull",
	OpClone:    "clone",
	OpLog:      "log",
	OpReflog:   "reflog",
	OpHelp:     "help",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return opNames[OpUnknown]
	}
	return opNames[o]
}

// Ops returns every known verb in declaration order.
func Ops() []Op {
	ops := make([]Op, 0, len(opNames)-1)
	for op := OpCommit; int(op) < len(opNames); op++ {
		ops = append(ops, op)
	}
	return ops
}

// LookupOp maps a verb to its Op.
func LookupOp(name string) (Op, bool) {
	switch name {
	case "commit":
		return OpCommit, true
	case "branch":
		return OpBranch, true
	case "tag":
		return OpTag, true
	case "checkout", "switch":
		return OpCheckout, true
	case "reset":
		return OpReset, true
	case "revert":
		return OpRevert, true
	case "merge":
		return OpMerge, true
	case "rebase":
		return OpRebase, true
	case "fetch":
		return OpFetch, true
	case "push":
		return OpPush, true
	case "pull":
		return OpPull, true
	case "clone":
		return OpClone, true
	case "log":
		return OpLog, true
	case "reflog":
		return OpReflog, true
	case "help", "-h", "--help":
		return OpHelp, true
	}
	return OpUnknown, false
}

// Command is a parsed command line. Args excludes the verb.
type Command struct {
	Op   Op
	Args []string
	Line string
}

// ParseCommand parses the raw input. The leading "git" is optional, and a
// bare "git" asks for help. Arguments follow shell quoting rules, so
// `commit -m "two words"` carries a single message argument.
func ParseCommand(input string) (Command, error) {
	parts, err := shellwords.Parse(input)
	if err != nil {
		return Command{}, fmt.Errorf("parse %q: %w", input, err)
	}
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	if parts[0] == "git" {
		parts = parts[1:]
		if len(parts) == 0 {
			return Command{Op: OpHelp, Line: input}, nil
		}
	}

	op, ok := LookupOp(parts[0])
	if !ok {
		return Command{}, fmt.Errorf("git: '%s' is not a git command. See 'git help'.", parts[0])
	}
	return Command{Op: op, Args: parts[1:], Line: input}, nil
}
