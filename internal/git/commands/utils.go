package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
	"github.com/kurobon/explaingit/internal/state"
)

// Shared utilities for commands

func short(id string) string {
	if len(id) > model.ShortIDLength {
		return id[:model.ShortIDLength]
	}
	return id
}

func subject(c model.Commit) string {
	if c.Message == "" {
		return "(no message)"
	}
	line, _, _ := strings.Cut(c.Message, "\n")
	return line
}

func headIsAt(r *repo.Repository) string {
	c, _ := r.Get(r.HeadCommit())
	return fmt.Sprintf("HEAD is now at %s %s", short(c.ID), subject(c))
}

// splitFlags separates flags from positional arguments. Flags listed in
// valued consume the following argument; single-dash ones also accept the
// joined form (-mfix, -n3).
func splitFlags(args []string, valued ...string) (map[string]string, []string, error) {
	flags := make(map[string]string)
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case !strings.HasPrefix(arg, "-") || arg == "-":
			positional = append(positional, arg)
		case strings.HasPrefix(arg, "--") && strings.Contains(arg, "="):
			name, value, _ := strings.Cut(arg, "=")
			flags[name] = value
		case slices.Contains(valued, arg):
			if i+1 >= len(args) {
				return nil, nil, fail("error: switch `%s' requires a value", strings.TrimLeft(arg, "-"))
			}
			flags[arg] = args[i+1]
			i++
		default:
			flags[arg] = ""
			for _, v := range valued {
				if !strings.HasPrefix(v, "--") && strings.HasPrefix(arg, v) {
					delete(flags, arg)
					flags[v] = arg[len(v):]
					break
				}
			}
		}
	}
	return flags, positional, nil
}

func has(flags map[string]string, names ...string) bool {
	for _, n := range names {
		if _, ok := flags[n]; ok {
			return true
		}
	}
	return false
}

func rejectUnknown(flags map[string]string, known ...string) error {
	for f := range flags {
		if !slices.Contains(known, f) {
			return fail("error: unknown option `%s'", strings.TrimLeft(f, "-"))
		}
	}
	return nil
}

// requireRemote checks that the session has a remote and, when name is not
// empty, that it is the session's remote.
func requireRemote(s *state.Session, name string) error {
	if name != "" && name != s.RemoteName() {
		return model.RefError(model.KindNoRemote, name)
	}
	if s.Sync == nil {
		return model.RefError(model.KindNoRemote, s.RemoteName())
	}
	return nil
}

// decorations maps commit ids to the refs pointing at them, in the order
// git log prints them: HEAD first, then branches, then tags.
func decorations(r *repo.Repository) map[string][]string {
	out := make(map[string][]string)
	head := r.Head()
	if head.Detached() {
		out[head.Commit] = []string{model.HeadName}
	} else {
		out[head.Commit] = []string{"HEAD -> " + head.Branch}
	}
	for _, ref := range r.Branches() {
		if ref.Name != head.Branch {
			out[ref.Target] = append(out[ref.Target], ref.Name)
		}
	}
	for _, ref := range r.Tags() {
		out[ref.Target] = append(out[ref.Target], "tag: "+ref.Name)
	}
	return out
}
