package scenario

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/explaingit/internal/remote"
	"github.com/kurobon/explaingit/internal/repo"
)

func TestBuiltinScenariosBuild(t *testing.T) {
	list, err := Builtin().List()
	require.NoError(t, err)
	require.Len(t, list, 16)

	for _, s := range list {
		t.Run(s.ID, func(t *testing.T) {
			local, origin, err := s.Build("")
			require.NoError(t, err)
			require.NotNil(t, local)
			assert.Equal(t, s.HasOrigin(), origin != nil)

			if len(s.Checks) > 0 {
				res := s.Verify(local, origin)
				assert.False(t, res.Success, "a fresh scenario is not solved yet")
			}
		})
	}
}

func TestBuild_Rebase(t *testing.T) {
	s, err := Builtin().Load("rebase")
	require.NoError(t, err)

	local, origin, err := s.Build("")
	require.NoError(t, err)
	assert.Nil(t, origin)
	assert.Equal(t, repo.Head{Branch: "dev", Commit: "e088135"}, local.Head())

	_, err = local.Rebase("master")
	require.NoError(t, err)
	res := s.Verify(local, nil)
	assert.True(t, res.Success)
	assert.Len(t, res.Progress, 2)
}

func TestBuild_FetchMarksRemoteTracking(t *testing.T) {
	s, err := Builtin().Load("fetch")
	require.NoError(t, err)
	local, origin, err := s.Build("")
	require.NoError(t, err)

	ref, ok := local.LookupBranch("origin/dev")
	require.True(t, ok)
	assert.True(t, ref.Remote)
	assert.Equal(t, "0cff760", ref.Target)

	_, err = remote.NewSyncEngine(local, origin).Fetch()
	require.NoError(t, err)
	assert.True(t, s.Verify(local, origin).Success)
}

func TestBuild_OtherRemoteName(t *testing.T) {
	s, err := Builtin().Load("fetch")
	require.NoError(t, err)
	local, _, err := s.Build("upstream")
	require.NoError(t, err)

	ref, ok := local.LookupBranch("upstream/dev")
	require.True(t, ok)
	assert.True(t, ref.Remote)
	_, ok = local.LookupBranch("origin/dev")
	assert.False(t, ok)

	renamed := s.ForRemote("upstream")
	assert.Equal(t, "upstream/master", renamed.Checks[0].Descendant)
	assert.Equal(t, "origin/master", s.Checks[0].Descendant, "the loaded fixture is not modified")
	assert.Equal(t, []string{"origin/dev"}, s.Commits[3].Branches)

	bad := &Scenario{ID: "x", CurrentBranch: "origin/master", Commits: []CommitSpec{{ID: "a", Branches: []string{"origin/master"}}}}
	_, _, err = bad.Build("upstream")
	assert.ErrorContains(t, err, `cannot check out remote-tracking branch "upstream/master"`)
}

func TestVerify_PushScenario(t *testing.T) {
	s, err := Builtin().Load("push")
	require.NoError(t, err)
	local, origin, err := s.Build("")
	require.NoError(t, err)
	e := remote.NewSyncEngine(local, origin)

	_, err = e.Push("", "")
	require.Error(t, err, "origin has diverged")
	assert.False(t, s.Verify(local, origin).Success)

	_, err = e.Pull(context.Background(), remote.PullOptions{})
	require.NoError(t, err)
	_, err = e.Push("", "")
	require.NoError(t, err)
	assert.True(t, s.Verify(local, origin).Success)
}

func TestVerify_Checks(t *testing.T) {
	local := repo.New()
	_, err := local.CreateBranch("dev")
	require.NoError(t, err)
	_, err = local.Commit("hello world")
	require.NoError(t, err)

	tests := []struct {
		check Check
		want  bool
	}{
		{Check{Type: CheckBranchExists, Name: "dev"}, true},
		{Check{Type: CheckBranchExists, Name: "nope"}, false},
		{Check{Type: CheckBranchExists, Name: "dev", Negate: true}, false},
		{Check{Type: CheckCurrentBranch, Name: "master"}, true},
		{Check{Type: CheckHeadDetached}, false},
		{Check{Type: CheckRefAtMessage, Name: "master", Message: "hello world"}, true},
		{Check{Type: CheckRefAtMessage, Name: "dev", Message: "hello world"}, false},
		{Check{Type: CheckCommitExists, Message: "world"}, true},
		{Check{Type: CheckCommitExists, Message: "absent"}, false},
		{Check{Type: CheckIsAncestor, Ancestor: "dev", Descendant: "master"}, true},
		{Check{Type: CheckIsAncestor, Ancestor: "master", Descendant: "dev"}, false},
		{Check{Type: CheckIsAncestor, Ancestor: "ghost", Descendant: "dev"}, false},
		{Check{Type: CheckInSync, Name: "master"}, false},
		{Check{Type: CheckLinear}, true},
		{Check{Type: "bogus"}, false},
	}
	for _, tt := range tests {
		s := &Scenario{ID: "t", Checks: []Check{tt.check}}
		res := s.Verify(local, nil)
		assert.Equal(t, tt.want, res.Success, "%s %+v", tt.check.Type, tt.check)
	}

	require.NoError(t, local.Checkout("dev"))
	_, err = local.Commit("side")
	require.NoError(t, err)
	require.NoError(t, local.Checkout("master"))
	_, err = local.Merge("dev", false)
	require.NoError(t, err)
	linear := &Scenario{Checks: []Check{{Type: CheckLinear}}}
	assert.False(t, linear.Verify(local, nil).Success)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	s := &Scenario{
		CurrentBranch: "main",
		Commits: []CommitSpec{
			{ID: "a", Branches: []string{"master"}},
			{ID: "a", Parent: "zz"},
			{ID: "b", Branches: []string{"bad name"}},
		},
		Checks: []Check{{Type: "nope"}},
	}
	err := s.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	// no scenario id, duplicate id, unknown parent, bad name, two roots,
	// missing checked-out branch, unknown check
	assert.Len(t, merr.Errors, 7)
	assert.Contains(t, err.Error(), `duplicate id "a"`)
	assert.Contains(t, err.Error(), `unknown type "nope"`)
}

func TestLoader_FromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"one.yaml": {Data: []byte("title: One\ncommits:\n  - id: r\n    branches: [master]\n")},
		"bad.yaml": {Data: []byte("commits: [")},
		"notes.txt": {Data: []byte("ignored")},
	}
	l := NewLoader(fsys)

	s, err := l.Load("one")
	require.NoError(t, err)
	assert.Equal(t, "one", s.ID, "id defaults to the file name")
	assert.Equal(t, "One", s.Title)

	_, err = l.Load("bad")
	assert.Error(t, err)
	_, err = l.Load("missing")
	assert.Error(t, err)

	list, err := l.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCatalog_OverridesAndReload(t *testing.T) {
	dir := t.TempDir()
	custom := "id: commit\ntitle: Custom\ncommits:\n  - id: r\n    branches: [master]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commit.yaml"), []byte(custom), 0o644))

	c, err := NewCatalog(Builtin(), NewDirLoader(dir))
	require.NoError(t, err)
	s, ok := c.Get("commit")
	require.True(t, ok)
	assert.Equal(t, "Custom", s.Title)
	assert.Len(t, c.List(), 16)

	extra := "id: extra\ntitle: Extra\ncommits:\n  - id: r\n    branches: [master]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(extra), 0o644))
	require.NoError(t, c.Reload())
	_, ok = c.Get("extra")
	assert.True(t, ok)
	assert.Equal(t, "clean", c.List()[3].ID)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(NewDirLoader(dir))
	require.NoError(t, err)

	reloaded := make(chan struct{}, 4)
	w, err := Watch(dir, c, func(error) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	body := "title: Live\ncommits:\n  - id: r\n    branches: [master]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "live.yaml"), []byte(body), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	_, ok := c.Get("live")
	assert.True(t, ok)
}

func TestDebouncer_IgnoresStaleCallbacks(t *testing.T) {
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })

	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}

	var called atomic.Int32
	d := newDebouncer(time.Second, func() { called.Add(1) })
	d.Trigger()
	d.Trigger()
	require.Len(t, callbacks, 2)
	callbacks[0]()
	callbacks[1]()
	assert.Equal(t, int32(1), called.Load())

	d.Trigger()
	d.Stop()
	callbacks[2]()
	assert.Equal(t, int32(1), called.Load(), "stopped callbacks do not run")
}
