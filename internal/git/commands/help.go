package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/explaingit/internal/git"
	"github.com/kurobon/explaingit/internal/state"
)

type HelpCommand struct{}

// Command metadata for help display
type cmdMeta struct {
	Category string
	Desc     string
}

// Categories
const (
	CatStart   = "Start a working area"
	CatHistory = "Examine the history and state"
	CatGrow    = "Grow, mark and tweak your common history"
	CatCollab  = "Collaborate"
)

var commandMetadata = map[git.Op]cmdMeta{
	git.OpClone: {CatStart, "Clone origin into a fresh local repository"},

	git.OpLog:    {CatHistory, "Show commit logs"},
	git.OpReflog: {CatHistory, "Show the commands run so far"},

	git.OpBranch:   {CatGrow, "List, create, or delete branches"},
	git.OpCheckout: {CatGrow, "Switch branches or detach HEAD"},
	git.OpCommit:   {CatGrow, "Record a new commit"},
	git.OpMerge:    {CatGrow, "Join two development histories together"},
	git.OpRebase:   {CatGrow, "Reapply commits on top of another base tip"},
	git.OpReset:    {CatGrow, "Reset current HEAD to the specified state"},
	git.OpRevert:   {CatGrow, "Revert an existing commit"},
	git.OpTag:      {CatGrow, "Create, list or delete tags"},

	git.OpFetch: {CatCollab, "Download commits and refs from origin"},
	git.OpPull:  {CatCollab, "Fetch from origin and integrate"},
	git.OpPush:  {CatCollab, "Update a remote branch along with its commits"},
}

// Order of categories for display
var categoryOrder = []string{
	CatStart,
	CatHistory,
	CatGrow,
	CatCollab,
}

func (c *HelpCommand) Execute(_ context.Context, _ *state.Session, args []string) (string, error) {
	if len(args) > 0 {
		op, ok := git.LookupOp(args[0])
		if !ok {
			return fmt.Sprintf("git help: unknown command '%s'", args[0]), nil
		}
		cmd, _ := commandFor(op)
		return cmd.Help(), nil
	}

	grouped := make(map[string][]git.Op)
	maxLen := 0
	for _, op := range git.Ops() {
		meta, ok := commandMetadata[op]
		if !ok {
			continue
		}
		grouped[meta.Category] = append(grouped[meta.Category], op)
		maxLen = max(maxLen, len(op.String()))
	}

	var sb strings.Builder
	sb.WriteString("usage: git <command> [<args>]\n\n")
	sb.WriteString("These are the commands this simulator understands:\n")
	for _, cat := range categoryOrder {
		fmt.Fprintf(&sb, "\n%s:\n", cat)
		for _, op := range grouped[cat] {
			name := op.String()
			fmt.Fprintf(&sb, "   %s%s%s\n", name, strings.Repeat(" ", maxLen-len(name)+3), commandMetadata[op].Desc)
		}
	}
	sb.WriteString("\nType 'git help <command>' for more information about a specific command.")
	return sb.String(), nil
}

func (c *HelpCommand) Help() string {
	return "usage: git help [<command>]\n\nList the available commands, or describe one of them."
}
