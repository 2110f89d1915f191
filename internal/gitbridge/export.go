package gitbridge

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// Epoch is the committer time of the first exported commit; every following
// commit is one second later, which keeps exports reproducible.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var signature = object.Signature{Name: "explaingit", Email: "sim@explaingit.invalid"}

// Export writes every commit of src, tombstones included, as a real commit
// with an empty tree, then mirrors branches, remote-tracking branches, tags
// and HEAD. A nil worktree creates a bare repository. The returned map takes
// simulated ids to object hashes.
func Export(src *repo.Repository, st storage.Storer, worktree billy.Filesystem) (*gogit.Repository, map[string]plumbing.Hash, error) {
	r, err := gogit.Init(st, worktree)
	if err != nil {
		return nil, nil, fmt.Errorf("init: %w", err)
	}

	tree, err := storeObject(st, &object.Tree{})
	if err != nil {
		return nil, nil, fmt.Errorf("write tree: %w", err)
	}

	hashes := make(map[string]plumbing.Hash)
	for i, c := range src.Commits() {
		sig := signature
		sig.When = Epoch.Add(time.Duration(i) * time.Second)

		commit := &object.Commit{
			Author:    sig,
			Committer: sig,
			Message:   exportMessage(c),
			TreeHash:  tree,
		}
		for _, p := range c.Parents() {
			commit.ParentHashes = append(commit.ParentHashes, hashes[p])
		}
		h, err := storeObject(st, commit)
		if err != nil {
			return nil, nil, fmt.Errorf("write commit %s: %w", c.ID, err)
		}
		hashes[c.ID] = h
	}

	for _, ref := range src.Refs() {
		name := referenceName(ref)
		if err := st.SetReference(plumbing.NewHashReference(name, hashes[ref.Target])); err != nil {
			return nil, nil, fmt.Errorf("write ref %s: %w", name, err)
		}
	}

	head := src.Head()
	var headRef *plumbing.Reference
	if head.Detached() {
		headRef = plumbing.NewHashReference(plumbing.HEAD, hashes[head.Commit])
	} else {
		headRef = plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(head.Branch))
	}
	if err := st.SetReference(headRef); err != nil {
		return nil, nil, fmt.Errorf("write HEAD: %w", err)
	}
	return r, hashes, nil
}

// ExportDir exports src into a new non-bare repository at dir.
func ExportDir(src *repo.Repository, dir string) (*gogit.Repository, map[string]plumbing.Hash, error) {
	wt := osfs.New(dir)
	dot, err := wt.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, nil, err
	}
	st := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())
	r, hashes, err := Export(src, st, wt)
	if err != nil {
		return nil, nil, fmt.Errorf("export to %s: %w", filepath.Clean(dir), err)
	}
	return r, hashes, nil
}

type encoder interface {
	Encode(plumbing.EncodedObject) error
}

func storeObject(st storage.Storer, o encoder) (plumbing.Hash, error) {
	obj := st.NewEncodedObject()
	if err := o.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return st.SetEncodedObject(obj)
}

func exportMessage(c model.Commit) string {
	msg := c.Message
	if msg == "" {
		msg = c.ID
	}
	return fmt.Sprintf("%s\n\n%s%s\n", msg, IDTrailer, c.ID)
}

func referenceName(ref model.Ref) plumbing.ReferenceName {
	switch {
	case ref.Kind == model.TagRef:
		return plumbing.NewTagReferenceName(ref.Name)
	case ref.Remote:
		remote, branch, ok := strings.Cut(ref.Name, "/")
		if !ok {
			return plumbing.NewRemoteReferenceName("origin", ref.Name)
		}
		return plumbing.NewRemoteReferenceName(remote, branch)
	}
	return plumbing.NewBranchReferenceName(ref.Name)
}
