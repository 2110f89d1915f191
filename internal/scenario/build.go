package scenario

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// fixtureRemote is the remote name fixtures are written against.
const fixtureRemote = "origin"

// ForRemote returns a copy of the scenario whose origin/<name> branches and
// check refs are renamed to remote/<name>.
func (s *Scenario) ForRemote(remote string) *Scenario {
	if remote == "" || remote == fixtureRemote {
		return s
	}
	rename := func(name string) string {
		if rest, ok := strings.CutPrefix(name, fixtureRemote+"/"); ok {
			return remote + "/" + rest
		}
		return name
	}
	renameSpecs := func(specs []CommitSpec) []CommitSpec {
		out := make([]CommitSpec, len(specs))
		for i, c := range specs {
			c.Branches = append([]string(nil), c.Branches...)
			for j, b := range c.Branches {
				c.Branches[j] = rename(b)
			}
			out[i] = c
		}
		return out
	}

	cp := *s
	cp.CurrentBranch = rename(s.CurrentBranch)
	cp.Commits = renameSpecs(s.Commits)
	if s.HasOrigin() {
		cp.Origin = renameSpecs(s.Origin)
	}
	cp.Checks = make([]Check, len(s.Checks))
	for i, c := range s.Checks {
		c.Name = rename(c.Name)
		c.Ancestor = rename(c.Ancestor)
		c.Descendant = rename(c.Descendant)
		cp.Checks[i] = c
	}
	return &cp
}

func (s *Scenario) headBranch() string {
	if s.CurrentBranch != "" {
		return s.CurrentBranch
	}
	return repo.DefaultBranch
}

func (s *Scenario) originHead() string {
	if s.OriginBranch != "" {
		return s.OriginBranch
	}
	return repo.DefaultBranch
}

// Validate reports every problem in the fixture at once.
func (s *Scenario) Validate() error {
	return s.validate(fixtureRemote + "/")
}

func (s *Scenario) validate(remotePrefix string) error {
	var result *multierror.Error
	if s.ID == "" {
		result = multierror.Append(result, fmt.Errorf("scenario has no id"))
	}
	if len(s.Commits) == 0 {
		result = multierror.Append(result, fmt.Errorf("commits: at least one commit is required"))
	}
	for _, err := range validateCommits("commits", s.Commits, s.headBranch(), remotePrefix) {
		result = multierror.Append(result, err)
	}
	if s.HasOrigin() {
		for _, err := range validateCommits("origin", s.Origin, s.originHead(), remotePrefix) {
			result = multierror.Append(result, err)
		}
	}
	for i, c := range s.Checks {
		if !knownChecks[c.Type] {
			result = multierror.Append(result, fmt.Errorf("checks[%d]: unknown type %q", i, c.Type))
		}
	}
	return result.ErrorOrNil()
}

func validateCommits(section string, specs []CommitSpec, head, remotePrefix string) []error {
	if len(specs) == 0 {
		return nil
	}
	var errs []error
	ids := make(map[string]bool, len(specs))
	for i, c := range specs {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: missing id", section, i))
			continue
		}
		if ids[c.ID] {
			errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q", section, i, c.ID))
		}
		ids[c.ID] = true
	}

	roots := 0
	names := make(map[string]bool)
	headFound := false
	for i, c := range specs {
		if c.Parent == "" {
			roots++
			if c.Parent2 != "" {
				errs = append(errs, fmt.Errorf("%s[%d]: parent2 without parent", section, i))
			}
		}
		for _, p := range []string{c.Parent, c.Parent2} {
			if p != "" && !ids[p] {
				errs = append(errs, fmt.Errorf("%s[%d]: unknown parent %q", section, i, p))
			}
		}
		for _, name := range append(append([]string(nil), c.Branches...), c.Tags...) {
			if err := model.ValidateName(name); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", section, i, err))
				continue
			}
			if names[name] {
				errs = append(errs, fmt.Errorf("%s[%d]: ref %q defined twice", section, i, name))
			}
			names[name] = true
		}
		for _, b := range c.Branches {
			if b == head {
				headFound = true
			}
		}
	}
	if roots != 1 {
		errs = append(errs, fmt.Errorf("%s: want exactly one root commit, found %d", section, roots))
	}
	if !headFound {
		errs = append(errs, fmt.Errorf("%s: checked-out branch %q is not defined", section, head))
	}
	if strings.HasPrefix(head, remotePrefix) {
		errs = append(errs, fmt.Errorf("%s: cannot check out remote-tracking branch %q", section, head))
	}
	return errs
}

// Build validates the scenario and creates its repositories, with
// remote-tracking branches named after remote (origin when empty). origin is
// nil when the scenario has none.
func (s *Scenario) Build(remote string, opts ...repo.Option) (local, origin *repo.Repository, err error) {
	if remote == "" {
		remote = fixtureRemote
	}
	s = s.ForRemote(remote)
	prefix := remote + "/"
	if err := s.validate(prefix); err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	local, err = repo.FromSnapshot(snapshot(s.Commits, s.headBranch(), prefix), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	if !s.HasOrigin() {
		return local, nil, nil
	}
	origin, err = repo.FromSnapshot(snapshot(s.Origin, s.originHead(), prefix))
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s origin: %w", s.ID, err)
	}
	return local, origin, nil
}

func snapshot(specs []CommitSpec, head, remotePrefix string) repo.Snapshot {
	snap := repo.Snapshot{Head: repo.Head{Branch: head}}
	var tags []model.Ref
	for _, c := range specs {
		snap.Commits = append(snap.Commits, model.Commit{
			ID:      c.ID,
			Parent:  c.Parent,
			Parent2: c.Parent2,
			Message: c.Message,
		})
		for _, b := range c.Branches {
			snap.Refs = append(snap.Refs, model.Ref{
				Name:   b,
				Target: c.ID,
				Kind:   model.BranchRef,
				Remote: strings.HasPrefix(b, remotePrefix),
			})
		}
		for _, t := range c.Tags {
			tags = append(tags, model.Ref{Name: t, Target: c.ID, Kind: model.TagRef})
		}
	}
	snap.Refs = append(snap.Refs, tags...)
	return snap
}
