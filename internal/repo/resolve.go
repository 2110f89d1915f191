package repo

import (
	"strconv"
	"strings"

	"github.com/kurobon/explaingit/internal/model"
)

// Resolve turns a revision into a commit id. A revision is HEAD, a branch
// (local or remote-tracking), a tag or a commit id, optionally followed by
// any number of ^, ^N and ~N suffixes.
func (r *Repository) Resolve(rev string) (string, error) {
	base, suffix := splitRevision(rev)
	id, ok := r.resolveBase(base)
	if !ok {
		return "", model.RefError(model.KindRefNotFound, rev)
	}
	if suffix == "" {
		return id, nil
	}
	return r.walkSuffix(rev, id, suffix)
}

func splitRevision(rev string) (string, string) {
	if i := strings.IndexAny(rev, "^~"); i >= 0 {
		return rev[:i], rev[i:]
	}
	return rev, ""
}

func (r *Repository) resolveBase(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if name == model.HeadName {
		return r.HeadCommit(), true
	}
	if ref, ok := r.branches.Get(name); ok {
		return ref.Target, true
	}
	if ref, ok := r.tags.Get(name); ok {
		return ref.Target, true
	}
	if r.commits.Contains(name) {
		return name, true
	}
	return "", false
}

func (r *Repository) walkSuffix(rev, id, suffix string) (string, error) {
	notFound := model.RefError(model.KindRefNotFound, rev)
	for len(suffix) > 0 {
		op := suffix[0]
		suffix = suffix[1:]

		digits := 0
		for digits < len(suffix) && suffix[digits] >= '0' && suffix[digits] <= '9' {
			digits++
		}
		n := 1
		if digits > 0 {
			v, err := strconv.Atoi(suffix[:digits])
			if err != nil {
				return "", notFound
			}
			n = v
			suffix = suffix[digits:]
		}

		switch op {
		case '^':
			switch n {
			case 0:
			case 1, 2:
				c, _ := r.commits.Get(id)
				next := c.Parent
				if n == 2 {
					next = c.Parent2
				}
				if next == "" {
					return "", notFound
				}
				id = next
			default:
				return "", notFound
			}
		case '~':
			for ; n > 0; n-- {
				c, _ := r.commits.Get(id)
				if c.Parent == "" {
					return "", notFound
				}
				id = c.Parent
			}
		default:
			return "", notFound
		}
	}
	return id, nil
}
