// Package gitbridge converts between simulated repositories and real git
// repositories opened through go-git.
package gitbridge

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// IDTrailer marks the simulated id in exported commit messages so that an
// exported repository imports back with the same ids.
const IDTrailer = "Simulated-Id: "

var ErrEmptyRepository = errors.New("repository has no commits")

// OpenDir opens the git repository rooted at dir (a worktree with a .git
// directory) using on-disk storage.
func OpenDir(dir string) (*gogit.Repository, error) {
	wt := osfs.New(dir)
	dot, err := wt.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, err
	}
	st := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())
	r, err := gogit.Open(st, wt)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Clean(dir), err)
	}
	return r, nil
}

type tip struct {
	ref  model.Ref
	hash plumbing.Hash
}

// Import builds a simulated repository from every commit reachable from the
// branches, remote branches, tags and HEAD of r. Commits keep their first two
// parents; further octopus parents are dropped.
func Import(r *gogit.Repository, opts ...repo.Option) (*repo.Repository, error) {
	tips, err := collectTips(r)
	if err != nil {
		return nil, err
	}
	headRef, err := r.Reference(plumbing.HEAD, false)
	if err != nil {
		return nil, fmt.Errorf("read HEAD: %w", err)
	}
	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrEmptyRepository
		}
		return nil, err
	}

	seeds := []plumbing.Hash{head.Hash()}
	for _, t := range tips {
		seeds = append(seeds, t.hash)
	}
	commits, err := walk(r, seeds)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, ErrEmptyRepository
	}

	ids := assignIDs(commits)
	snap := repo.Snapshot{}
	for _, c := range commits {
		sc := model.Commit{ID: ids[c.Hash], Message: subject(c.Message)}
		if id, ok := trailerID(c.Message); ok && sc.Message == id {
			sc.Message = ""
		}
		if len(c.ParentHashes) > 0 {
			sc.Parent = ids[c.ParentHashes[0]]
		}
		if len(c.ParentHashes) > 1 {
			sc.Parent2 = ids[c.ParentHashes[1]]
		}
		snap.Commits = append(snap.Commits, sc)
	}
	for _, t := range tips {
		ref := t.ref
		ref.Target = ids[t.hash]
		snap.Refs = append(snap.Refs, ref)
	}

	if headRef.Type() == plumbing.SymbolicReference && headRef.Target().IsBranch() {
		snap.Head.Branch = headRef.Target().Short()
	} else {
		snap.Head.Commit = ids[head.Hash()]
	}

	out, err := repo.FromSnapshot(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return out, nil
}

func collectTips(r *gogit.Repository) ([]tip, error) {
	iter, err := r.References()
	if err != nil {
		return nil, err
	}
	var branches, remotes, tags []tip
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			branches = append(branches, tip{
				ref:  model.Ref{Name: name.Short(), Kind: model.BranchRef},
				hash: ref.Hash(),
			})
		case name.IsRemote():
			remotes = append(remotes, tip{
				ref:  model.Ref{Name: name.Short(), Kind: model.BranchRef, Remote: true},
				hash: ref.Hash(),
			})
		case name.IsTag():
			hash := ref.Hash()
			if tagObj, err := r.TagObject(hash); err == nil {
				if tagObj.TargetType != plumbing.CommitObject {
					return nil
				}
				hash = tagObj.Target
			}
			tags = append(tags, tip{
				ref:  model.Ref{Name: name.Short(), Kind: model.TagRef},
				hash: hash,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, group := range [][]tip{branches, remotes, tags} {
		sort.Slice(group, func(i, j int) bool { return group[i].ref.Name < group[j].ref.Name })
	}
	out := append(branches, remotes...)
	return append(out, tags...), nil
}

// walk loads every commit reachable from seeds, breadth first.
func walk(r *gogit.Repository, seeds []plumbing.Hash) ([]*object.Commit, error) {
	var out []*object.Commit
	seen := make(map[plumbing.Hash]bool)
	queue := append([]plumbing.Hash(nil), seeds...)
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if seen[h] {
			continue
		}
		seen[h] = true
		c, err := r.CommitObject(h)
		if err != nil {
			return nil, fmt.Errorf("load commit %s: %w", h, err)
		}
		out = append(out, c)
		queue = append(queue, c.ParentHashes...)
	}
	return out, nil
}

// assignIDs prefers the id recorded by Export and otherwise abbreviates the
// hash to the shortest unique prefix of at least model.ShortIDLength.
func assignIDs(commits []*object.Commit) map[plumbing.Hash]string {
	ids := make(map[plumbing.Hash]string, len(commits))
	taken := make(map[string]bool, len(commits))
	var rest []plumbing.Hash
	for _, c := range commits {
		if id, ok := trailerID(c.Message); ok && !taken[id] {
			ids[c.Hash] = id
			taken[id] = true
			continue
		}
		rest = append(rest, c.Hash)
	}

	for n := model.ShortIDLength; len(rest) > 0 && n <= 2*len(plumbing.ZeroHash); n++ {
		counts := make(map[string]int, len(rest))
		for _, h := range rest {
			counts[h.String()[:n]]++
		}
		var next []plumbing.Hash
		for _, h := range rest {
			id := h.String()[:n]
			if counts[id] == 1 && !taken[id] {
				ids[h] = id
				taken[id] = true
			} else {
				next = append(next, h)
			}
		}
		rest = next
	}
	return ids
}

func trailerID(message string) (string, bool) {
	for _, line := range strings.Split(message, "\n") {
		if id, ok := strings.CutPrefix(strings.TrimSpace(line), IDTrailer); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// subject returns the first line of a commit message, without the id trailer.
func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	if strings.HasPrefix(line, IDTrailer) {
		return ""
	}
	return strings.TrimSpace(line)
}
