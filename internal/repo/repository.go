// Package repo implements the in-memory repository state machine: one commit
// graph, a branch store, a tag store and HEAD.
package repo

import (
	"github.com/kurobon/explaingit/internal/model"
)

// DefaultBranch is the branch every new repository starts on.
const DefaultBranch = "master"

// Head describes where HEAD points. Branch is empty when HEAD is detached;
// Commit is always the effective HEAD commit.
type Head struct {
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit"`
}

func (h Head) Detached() bool { return h.Branch == "" }

type options struct {
	ids model.IDGenerator
}

// Option configures a Repository.
type Option func(*options)

// WithIDs selects the generator used for new commit ids.
func WithIDs(ids model.IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// Repository aggregates a commit graph, branches, tags and HEAD. It is not
// safe for concurrent use; callers serialize access (see state.Session).
type Repository struct {
	commits  *model.CommitGraph
	branches *model.RefStore
	tags     *model.RefStore

	// headBranch is set when HEAD is attached; headCommit only when detached.
	headBranch string
	headCommit string
}

func newEmpty(opts []Option) *Repository {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository{
		commits:  model.NewCommitGraph(o.ids),
		branches: model.NewRefStore(model.BranchRef),
		tags:     model.NewRefStore(model.TagRef),
	}
}

// New creates a repository holding a single root commit with master checked
// out on it.
func New(opts ...Option) *Repository {
	r := newEmpty(opts)
	root, err := r.commits.Add(model.Commit{})
	if err != nil {
		// An empty graph always accepts its root.
		panic(err)
	}
	r.branches.Add(DefaultBranch, root.ID)
	r.headBranch = DefaultBranch
	return r
}

// Head returns the current HEAD state.
func (r *Repository) Head() Head {
	return Head{Branch: r.headBranch, Commit: r.HeadCommit()}
}

// HeadCommit returns the id HEAD resolves to.
func (r *Repository) HeadCommit() string {
	if r.headBranch != "" {
		ref, _ := r.branches.Get(r.headBranch)
		return ref.Target
	}
	return r.headCommit
}

// CurrentBranch returns the attached branch, if any.
func (r *Repository) CurrentBranch() (string, bool) {
	return r.headBranch, r.headBranch != ""
}

// Get returns a commit by id, tombstones included.
func (r *Repository) Get(id string) (model.Commit, bool) {
	return r.commits.Get(id)
}

func (r *Repository) HasCommit(id string) bool {
	return r.commits.Contains(id)
}

// Commits lists every commit including the ones no ref reaches any more.
func (r *Repository) Commits() []model.Commit {
	return r.commits.Commits()
}

func (r *Repository) IsAncestor(candidate, descendant string) bool {
	return r.commits.IsAncestor(candidate, descendant)
}

// Branches returns local and remote-tracking branches in creation order.
func (r *Repository) Branches() []model.Ref {
	return r.branches.Refs()
}

func (r *Repository) Tags() []model.Ref {
	return r.tags.Refs()
}

// Refs returns branches followed by tags.
func (r *Repository) Refs() []model.Ref {
	return append(r.branches.Refs(), r.tags.Refs()...)
}

func (r *Repository) LookupBranch(name string) (model.Ref, bool) {
	return r.branches.Get(name)
}

func (r *Repository) LookupTag(name string) (model.Ref, bool) {
	return r.tags.Get(name)
}

// Reachable returns the ids reachable from any ref or HEAD. Commits outside
// this set are tombstones: left behind by rebase or reset but still
// resolvable by id.
func (r *Repository) Reachable() map[string]bool {
	tips := []string{r.HeadCommit()}
	for _, ref := range r.Refs() {
		tips = append(tips, ref.Target)
	}
	return r.commits.Reachable(tips...)
}

// BranchReachable returns the ids reachable from local branches only.
func (r *Repository) BranchReachable() map[string]bool {
	var tips []string
	for _, ref := range r.branches.Refs() {
		if !ref.Remote {
			tips = append(tips, ref.Target)
		}
	}
	return r.commits.Reachable(tips...)
}

// moveHead advances whatever HEAD designates: the attached branch, or the
// detached commit itself.
func (r *Repository) moveHead(id string) {
	if r.headBranch != "" {
		_ = r.branches.Move(r.headBranch, id)
		return
	}
	r.headCommit = id
}

func (r *Repository) nameTaken(name string) bool {
	return name == model.HeadName || r.branches.Contains(name) || r.tags.Contains(name)
}
