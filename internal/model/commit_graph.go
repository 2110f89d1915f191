package model

import "fmt"

// maxIDAttempts bounds how often the generator is asked for a fresh id before
// the graph falls back to suffixing the last candidate.
const maxIDAttempts = 32

// Commit is a node of the history DAG. Values are never modified once they
// are stored in a CommitGraph.
type Commit struct {
	ID      string `json:"id"`
	Parent  string `json:"parent,omitempty"`
	Parent2 string `json:"parent2,omitempty"`
	Message string `json:"message,omitempty"`

	// Provenance markers, they do not change any behaviour.
	Reverted    bool   `json:"reverted,omitempty"`
	Reverts     string `json:"reverts,omitempty"`
	Rebased     bool   `json:"rebased,omitempty"`
	RebasedFrom string `json:"rebasedFrom,omitempty"`
}

func (c Commit) IsRoot() bool  { return c.Parent == "" }
func (c Commit) IsMerge() bool { return c.Parent2 != "" }

// Parents returns the parent ids, first parent first.
func (c Commit) Parents() []string {
	switch {
	case c.Parent == "":
		return nil
	case c.Parent2 == "":
		return []string{c.Parent}
	default:
		return []string{c.Parent, c.Parent2}
	}
}

// CommitGraph is an id-keyed arena of commits. Edges are stored as ids, so
// walks never hold node pointers and rewritten history leaves the old nodes
// resolvable.
type CommitGraph struct {
	commits map[string]Commit
	order   []string
	ids     IDGenerator
}

// NewCommitGraph returns an empty graph. A nil generator selects HashIDs.
func NewCommitGraph(ids IDGenerator) *CommitGraph {
	if ids == nil {
		ids = NewHashIDs()
	}
	return &CommitGraph{
		commits: make(map[string]Commit),
		ids:     ids,
	}
}

// Add stores a new commit built from tmpl and returns it with its freshly
// generated id. Any id set on tmpl is ignored. Only the first commit of a
// graph may be parentless.
func (g *CommitGraph) Add(tmpl Commit) (Commit, error) {
	if tmpl.Parent == "" {
		if tmpl.Parent2 != "" || len(g.order) > 0 {
			return Commit{}, CommitError(KindInvalidParent, tmpl.Parent2)
		}
	} else if err := g.checkParents(tmpl); err != nil {
		return Commit{}, err
	}

	tmpl.ID = g.nextID()
	g.put(tmpl)
	return tmpl, nil
}

// Insert copies c verbatim, keeping its id. Inserting an id that is already
// present is a no-op, which makes repeated copies between graphs idempotent.
func (g *CommitGraph) Insert(c Commit) error {
	if c.ID == "" {
		return CommitError(KindCommitNotFound, "")
	}
	if _, ok := g.commits[c.ID]; ok {
		return nil
	}
	if c.Parent == "" && c.Parent2 != "" {
		return CommitError(KindInvalidParent, "")
	}
	if err := g.checkParents(c); err != nil {
		return err
	}
	g.put(c)
	return nil
}

func (g *CommitGraph) checkParents(c Commit) error {
	for _, p := range c.Parents() {
		if _, ok := g.commits[p]; !ok {
			return CommitError(KindInvalidParent, p)
		}
	}
	return nil
}

func (g *CommitGraph) put(c Commit) {
	g.commits[c.ID] = c
	g.order = append(g.order, c.ID)
}

// nextID asks the generator for an unused id. A collision is never reported:
// after maxIDAttempts the last candidate is extended with a counter.
func (g *CommitGraph) nextID() string {
	var candidate string
	for i := 0; i < maxIDAttempts; i++ {
		candidate = g.ids.Next()
		if candidate == "" {
			continue
		}
		if _, taken := g.commits[candidate]; !taken {
			return candidate
		}
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s%x", candidate, n)
		if _, taken := g.commits[id]; !taken {
			return id
		}
	}
}

func (g *CommitGraph) Get(id string) (Commit, bool) {
	c, ok := g.commits[id]
	return c, ok
}

func (g *CommitGraph) Contains(id string) bool {
	_, ok := g.commits[id]
	return ok
}

func (g *CommitGraph) Len() int { return len(g.order) }

// Root returns the first commit ever stored.
func (g *CommitGraph) Root() (Commit, bool) {
	if len(g.order) == 0 {
		return Commit{}, false
	}
	return g.commits[g.order[0]], true
}

// Commits returns every commit, tombstones included, in insertion order.
// Parents always precede their children.
func (g *CommitGraph) Commits() []Commit {
	out := make([]Commit, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.commits[id])
	}
	return out
}

// IsAncestor reports whether candidate is reachable from descendant through
// parent and parent2 edges. Every existing commit is its own ancestor.
func (g *CommitGraph) IsAncestor(candidate, descendant string) bool {
	if _, ok := g.commits[candidate]; !ok {
		return false
	}
	if _, ok := g.commits[descendant]; !ok {
		return false
	}

	seen := map[string]bool{descendant: true}
	queue := []string{descendant}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == candidate {
			return true
		}
		c, ok := g.commits[id]
		if !ok {
			continue
		}
		for _, p := range c.Parents() {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false
}

// Reachable returns the ids reachable from any of tips, tips included.
// Unknown tips are ignored.
func (g *CommitGraph) Reachable(tips ...string) map[string]bool {
	seen := make(map[string]bool)
	stack := make([]string, 0, len(tips))
	for _, t := range tips {
		if _, ok := g.commits[t]; ok && !seen[t] {
			seen[t] = true
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.commits[id].Parents() {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return seen
}

// Missing collects the commits reachable from tip for which have returns
// false, without walking past commits the caller already has. The result is
// ordered ancestors first so it can be replayed into another graph with
// Insert.
func (g *CommitGraph) Missing(tip string, have func(id string) bool) []Commit {
	if _, ok := g.commits[tip]; !ok || have(tip) {
		return nil
	}

	type frame struct {
		id   string
		next int
	}
	var out []Commit
	visited := map[string]bool{tip: true}
	stack := []frame{{id: tip}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		parents := g.commits[top.id].Parents()
		pushed := false
		for top.next < len(parents) {
			p := parents[top.next]
			top.next++
			if visited[p] || have(p) {
				continue
			}
			if _, ok := g.commits[p]; !ok {
				continue
			}
			visited[p] = true
			stack = append(stack, frame{id: p})
			pushed = true
			break
		}
		if !pushed {
			out = append(out, g.commits[top.id])
			stack = stack[:len(stack)-1]
		}
	}
	return out
}
