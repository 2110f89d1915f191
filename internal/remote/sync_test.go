package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/kurobon/explaingit/internal/repo"
)

// newPair returns an origin holding R and a clone of it. Ids minted on origin
// start with "o", ids minted locally with "l".
func newPair(t *testing.T) (*SyncEngine, *repo.Repository, *repo.Repository) {
	t.Helper()
	origin := repo.New(repo.WithIDs(model.NewSequenceIDs("R", "o1", "o2", "o3", "o4")))
	local, err := Clone(origin, "", repo.WithIDs(model.NewSequenceIDs("l1", "l2", "l3", "l4")))
	require.NoError(t, err)
	return NewSyncEngine(local, origin), local, origin
}

func TestClone(t *testing.T) {
	origin := repo.New(repo.WithIDs(model.NewSequenceIDs("R", "A")))
	_, err := origin.CreateBranch("dev")
	require.NoError(t, err)
	_, err = origin.Commit("a")
	require.NoError(t, err)
	_, err = origin.CreateTag("v1")
	require.NoError(t, err)

	local, err := Clone(origin, "")
	require.NoError(t, err)

	assert.Equal(t, repo.Head{Branch: "master", Commit: "A"}, local.Head())
	assert.Len(t, local.Commits(), 2)

	om, ok := local.LookupBranch("origin/master")
	require.True(t, ok)
	assert.True(t, om.Remote)
	assert.Equal(t, "A", om.Target)

	od, ok := local.LookupBranch("origin/dev")
	require.True(t, ok)
	assert.Equal(t, "R", od.Target)

	_, ok = local.LookupBranch("dev")
	assert.False(t, ok, "only the checked-out branch gets a local branch")

	tag, ok := local.LookupTag("v1")
	require.True(t, ok)
	assert.Equal(t, "A", tag.Target)

	_, err = Clone(nil, "")
	assert.ErrorIs(t, err, model.ErrNoRemote)
}

func TestFetch(t *testing.T) {
	e, local, origin := newPair(t)

	_, _ = origin.Commit("o1")
	_, _ = origin.Commit("o2")

	results, err := e.Fetch()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, FetchResult{Branch: "origin/master", From: "R", To: "o2", Fetched: 2}, results[0])
	assert.True(t, results[0].Updated())

	c, ok := local.Get("o2")
	require.True(t, ok)
	assert.Equal(t, "o1", c.Parent)

	master, _ := local.LookupBranch("master")
	assert.Equal(t, "R", master.Target, "fetch never moves local branches")

	results, err = e.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].Fetched)
	assert.False(t, results[0].Updated())
}

func TestFetch_MergeHistoryAndSharedCommits(t *testing.T) {
	origin := repo.New(repo.WithIDs(model.NewSequenceIDs("R", "A", "B", "M")))
	_, _ = origin.CreateBranch("dev")
	local, err := Clone(origin, "")
	require.NoError(t, err)
	e := NewSyncEngine(local, origin)

	require.NoError(t, origin.Checkout("dev"))
	_, _ = origin.Commit("a")
	require.NoError(t, origin.Checkout("master"))
	_, _ = origin.Commit("b")
	_, err = origin.Merge("dev", false)
	require.NoError(t, err)

	results, err := e.Fetch()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "origin/dev", results[0].Branch)
	assert.Equal(t, 1, results[0].Fetched)
	assert.Equal(t, "origin/master", results[1].Branch)
	assert.Equal(t, 2, results[1].Fetched, "A is counted once, under origin/dev")

	assert.True(t, local.IsAncestor("A", "M"))
	assert.True(t, local.IsAncestor("B", "M"))
}

func TestFetch_UntrackedRemoteBranchIgnored(t *testing.T) {
	e, local, origin := newPair(t)
	_, err := origin.CheckoutNewBranch("topic")
	require.NoError(t, err)
	_, _ = origin.Commit("t")

	results, err := e.Fetch()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, local.HasCommit("o1"))
}

func TestPush(t *testing.T) {
	e, local, origin := newPair(t)

	_, _ = local.Commit("l1")
	_, _ = local.Commit("l2")

	res, err := e.Push("", "")
	require.NoError(t, err)
	assert.Equal(t, PushResult{Branch: "master", LocalRef: "master", From: "R", To: "l2", Copied: 2}, res)
	assert.False(t, res.UpToDate())

	master, _ := origin.LookupBranch("master")
	assert.Equal(t, "l2", master.Target)
	assert.True(t, origin.HasCommit("l1"))

	tracking, _ := local.LookupBranch("origin/master")
	assert.Equal(t, "R", tracking.Target, "remote-tracking refs move on fetch only")

	res, err = e.Push("master", "master")
	require.NoError(t, err)
	assert.True(t, res.UpToDate())
	assert.Equal(t, 0, res.Copied)
}

func TestPush_NonFastForward(t *testing.T) {
	e, local, origin := newPair(t)

	// Local is strictly behind origin.
	_, _ = origin.Commit("o1")
	_, err := e.Fetch()
	require.NoError(t, err)
	_, err = e.Push("master", "master")
	assert.ErrorIs(t, err, model.ErrNonFastForward)

	// Local has diverged without ever seeing origin's commit.
	_, _ = origin.Commit("o2")
	_, _ = local.Commit("l1")
	before := origin.Snapshot()
	_, err = e.Push("master", "master")
	require.Error(t, err)
	assert.Equal(t, model.KindNonFastForward, model.KindOf(err))
	assert.Equal(t, before, origin.Snapshot(), "rejected push changes nothing")
}

func TestPush_Errors(t *testing.T) {
	e, local, _ := newPair(t)

	_, err := e.Push("master", "nope")
	assert.ErrorIs(t, err, model.ErrLocalRefNotFound)

	_, _ = local.CheckoutNewBranch("feature")
	_, err = e.Push("", "")
	assert.ErrorIs(t, err, model.ErrUnsupportedNewRemoteBranch)

	require.NoError(t, local.Checkout("HEAD"))
	_, err = local.Commit("")
	require.NoError(t, err)
	require.NoError(t, local.Checkout("l1"))
	_, err = e.Push("", "")
	assert.ErrorIs(t, err, model.ErrNoCurrentBranch)

	res, err := e.Push("master", "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", res.To)
}

func TestPush_CopiesMergedSideBranch(t *testing.T) {
	e, local, origin := newPair(t)

	_, _ = local.CheckoutNewBranch("side")
	_, _ = local.Commit("s")
	require.NoError(t, local.Checkout("master"))
	_, _ = local.Commit("m")
	res, err := local.Merge("side", false)
	require.NoError(t, err)

	pushed, err := e.Push("master", "master")
	require.NoError(t, err)
	assert.Equal(t, 3, pushed.Copied)
	assert.True(t, origin.HasCommit("l1"))
	assert.True(t, origin.IsAncestor("l1", res.To))
}

func TestPull_Merge(t *testing.T) {
	e, local, origin := newPair(t)
	_, _ = origin.Commit("remote work")
	_, _ = local.Commit("local work")

	var hookSawFetch bool
	res, err := e.Pull(context.Background(), PullOptions{
		BeforeIntegrate: func(_ context.Context, fetched []FetchResult) error {
			hookSawFetch = local.HasCommit("o1") && len(fetched) == 1
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, hookSawFetch, "fetch completes before the integrate step")
	require.NotNil(t, res.Merge)
	assert.Equal(t, repo.Merged, res.Merge.Outcome)
	assert.Equal(t, "l1", res.Merge.Commit.Parent)
	assert.Equal(t, "o1", res.Merge.Commit.Parent2)
	assert.Equal(t, "Merge remote-tracking branch 'origin/master'", res.Merge.Commit.Message)
}

func TestPull_FastForwardAndUpToDate(t *testing.T) {
	e, local, origin := newPair(t)
	_, _ = origin.Commit("o1")

	res, err := e.Pull(context.Background(), PullOptions{})
	require.NoError(t, err)
	require.NotNil(t, res.Merge)
	assert.Equal(t, repo.FastForward, res.Merge.Outcome)
	assert.Equal(t, "o1", local.HeadCommit())

	res, err = e.Pull(context.Background(), PullOptions{})
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Nil(t, res.Merge)
}

func TestPull_Rebase(t *testing.T) {
	e, local, origin := newPair(t)
	_, _ = origin.Commit("o1")
	_, _ = local.Commit("mine")

	res, err := e.Pull(context.Background(), PullOptions{Rebase: true})
	require.NoError(t, err)
	require.NotNil(t, res.Rebase)
	require.Len(t, res.Rebase.Replayed, 1)
	tip := res.Rebase.Replayed[0]
	assert.Equal(t, "o1", tip.Parent)
	assert.Equal(t, "mine", tip.Message)
	assert.Equal(t, tip.ID, local.HeadCommit())

	pushed, err := e.Push("", "")
	require.NoError(t, err)
	assert.Equal(t, 1, pushed.Copied)
}

func TestPull_Preconditions(t *testing.T) {
	e, local, _ := newPair(t)

	_, _ = local.CheckoutNewBranch("feature")
	_, err := e.Pull(context.Background(), PullOptions{})
	assert.ErrorIs(t, err, model.ErrBranchNotTrackingRemote)

	require.NoError(t, local.Checkout("R"))
	_, err = e.Pull(context.Background(), PullOptions{})
	assert.ErrorIs(t, err, model.ErrNoCurrentBranch)
}

func TestPull_HookErrorStopsBeforeIntegrate(t *testing.T) {
	e, local, origin := newPair(t)
	_, _ = origin.Commit("o1")

	stop := errors.New("stop")
	_, err := e.Pull(context.Background(), PullOptions{
		BeforeIntegrate: func(context.Context, []FetchResult) error { return stop },
	})
	assert.ErrorIs(t, err, stop)
	assert.True(t, local.HasCommit("o1"), "fetch stays applied")
	assert.Equal(t, "R", local.HeadCommit())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Pull(ctx, PullOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncEngine_NoRemote(t *testing.T) {
	e := NewSyncEngine(repo.New(), nil)
	_, err := e.Fetch()
	assert.ErrorIs(t, err, model.ErrNoRemote)
	_, err = e.Push("master", "master")
	assert.ErrorIs(t, err, model.ErrNoRemote)
	_, err = e.Pull(context.Background(), PullOptions{})
	assert.ErrorIs(t, err, model.ErrNoRemote)
	assert.Equal(t, "origin/master", e.TrackingName("master"))
}

func TestPublish(t *testing.T) {
	local := repo.New(repo.WithIDs(model.NewSequenceIDs("R", "A")))
	_, _ = local.CreateBranch("dev")
	_, _ = local.Commit("a")
	_, _ = local.CreateTag("v1")

	origin, err := Publish(local, "")
	require.NoError(t, err)

	assert.Equal(t, repo.Head{Branch: "master", Commit: "A"}, origin.Head())
	assert.Len(t, origin.Branches(), 2)
	_, ok := origin.LookupTag("v1")
	assert.True(t, ok)

	tracking, ok := local.LookupBranch("origin/dev")
	require.True(t, ok)
	assert.Equal(t, "R", tracking.Target)

	// A published pair is immediately in sync.
	e := NewSyncEngine(local, origin)
	res, err := e.Pull(context.Background(), PullOptions{})
	require.NoError(t, err)
	assert.True(t, res.UpToDate)

	// Publishing again does not copy remote-tracking refs to the new remote.
	again, err := Publish(local, "")
	require.NoError(t, err)
	_, ok = again.LookupBranch("origin/master")
	assert.False(t, ok)
}
