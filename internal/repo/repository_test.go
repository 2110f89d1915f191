package repo

import (
	"testing"

	"github.com/kurobon/explaingit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, ids ...string) *Repository {
	t.Helper()
	return New(WithIDs(model.NewSequenceIDs(append([]string{"R"}, ids...)...)))
}

func TestNew(t *testing.T) {
	r := newTestRepo(t)

	head := r.Head()
	assert.Equal(t, Head{Branch: "master", Commit: "R"}, head)
	assert.False(t, head.Detached())

	root, ok := r.Get("R")
	require.True(t, ok)
	assert.True(t, root.IsRoot())
	assert.Len(t, r.Commits(), 1)
	assert.Len(t, r.Branches(), 1)
	assert.Empty(t, r.Tags())
}

func TestCommit_AdvancesAttachedBranch(t *testing.T) {
	r := newTestRepo(t, "C1", "C2")

	c1, err := r.Commit("first")
	require.NoError(t, err)
	assert.Equal(t, "C1", c1.ID)
	assert.Equal(t, "R", c1.Parent)
	assert.Equal(t, "first", c1.Message)

	master, _ := r.LookupBranch("master")
	assert.Equal(t, "C1", master.Target)
	assert.Equal(t, "C1", r.HeadCommit())
}

func TestCommit_Detached(t *testing.T) {
	r := newTestRepo(t, "C1", "C2")
	_, err := r.Commit("")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("R"))
	assert.True(t, r.Head().Detached())

	c2, err := r.Commit("")
	require.NoError(t, err)
	assert.Equal(t, "R", c2.Parent)
	assert.Equal(t, Head{Commit: "C2"}, r.Head())

	master, _ := r.LookupBranch("master")
	assert.Equal(t, "C1", master.Target, "no branch moves on a detached commit")
}

func TestCreateBranchAndTag(t *testing.T) {
	r := newTestRepo(t)

	ref, err := r.CreateBranch("dev")
	require.NoError(t, err)
	assert.Equal(t, "R", ref.Target)
	branch, _ := r.CurrentBranch()
	assert.Equal(t, "master", branch, "branch does not switch HEAD")

	_, err = r.CreateBranch("dev")
	assert.ErrorIs(t, err, model.ErrNameAlreadyExists)

	_, err = r.CreateTag("dev")
	assert.ErrorIs(t, err, model.ErrNameAlreadyExists, "tags share the branch namespace")

	tag, err := r.CreateTag("v1")
	require.NoError(t, err)
	assert.Equal(t, model.TagRef, tag.Kind)

	_, err = r.CreateBranch("v1")
	assert.ErrorIs(t, err, model.ErrNameAlreadyExists)

	for _, bad := range []string{"", "HEAD", "has space"} {
		_, err = r.CreateBranch(bad)
		assert.ErrorIs(t, err, model.ErrInvalidName, bad)
		_, err = r.CreateTag(bad)
		assert.ErrorIs(t, err, model.ErrInvalidName, bad)
	}
}

func TestDeleteBranch(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.CreateBranch("dev")
	require.NoError(t, err)

	assert.ErrorIs(t, r.DeleteBranch("master"), model.ErrCannotDeleteCurrentBranch)
	assert.ErrorIs(t, r.DeleteBranch("ghost"), model.ErrBranchNotFound)
	assert.ErrorIs(t, r.DeleteBranch(""), model.ErrInvalidName)

	require.NoError(t, r.DeleteBranch("dev"))
	_, ok := r.LookupBranch("dev")
	assert.False(t, ok)

	require.NoError(t, r.SetRemoteTracking("origin/master", "R"))
	assert.ErrorIs(t, r.DeleteBranch("origin/master"), model.ErrBranchNotFound)
}

func TestDeleteTag(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.CreateTag("v1")
	require.NoError(t, err)

	require.NoError(t, r.DeleteTag("v1"))
	assert.ErrorIs(t, r.DeleteTag("v1"), model.ErrRefNotFound)
}

func TestDeleteBranch_AllOrNothing(t *testing.T) {
	r := newTestRepo(t)
	_, _ = r.CreateBranch("a")
	_, _ = r.CreateBranch("b")

	for _, names := range [][]string{{"a", "ghost"}, {"a", "master"}, {"a", "a"}, {"b", "bad name"}} {
		snap := r.Snapshot()
		assert.Error(t, r.DeleteBranch(names...), names)
		assert.Equal(t, snap, r.Snapshot(), "no branch removed for %v", names)
	}

	require.NoError(t, r.DeleteBranch("a", "b"))
	assert.Len(t, r.LocalBranches(), 1)
}

func TestDeleteTag_AllOrNothing(t *testing.T) {
	r := newTestRepo(t)
	_, _ = r.CreateTag("v1")
	_, _ = r.CreateTag("v2")

	assert.ErrorIs(t, r.DeleteTag("v1", "ghost"), model.ErrRefNotFound)
	_, ok := r.LookupTag("v1")
	assert.True(t, ok)

	require.NoError(t, r.DeleteTag("v1", "v2"))
	assert.Empty(t, r.Tags())
}

func TestCheckout(t *testing.T) {
	r := newTestRepo(t, "C1")
	_, err := r.CreateBranch("dev")
	require.NoError(t, err)
	_, err = r.CreateTag("v0")
	require.NoError(t, err)
	_, err = r.Commit("")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("dev"))
	assert.Equal(t, Head{Branch: "dev", Commit: "R"}, r.Head())

	require.NoError(t, r.Checkout("v0"))
	assert.Equal(t, Head{Commit: "R"}, r.Head(), "tags detach")

	require.NoError(t, r.Checkout("C1"))
	assert.Equal(t, Head{Commit: "C1"}, r.Head())

	require.NoError(t, r.Checkout("HEAD^"))
	assert.Equal(t, Head{Commit: "R"}, r.Head())

	require.NoError(t, r.SetRemoteTracking("origin/master", "C1"))
	require.NoError(t, r.Checkout("origin/master"))
	assert.Equal(t, Head{Commit: "C1"}, r.Head(), "remote-tracking branches detach")

	err = r.Checkout("nope")
	assert.ErrorIs(t, err, model.ErrRefNotFound)
	assert.Equal(t, Head{Commit: "C1"}, r.Head(), "failed checkout leaves HEAD alone")
}

func TestCheckoutNewBranch(t *testing.T) {
	r := newTestRepo(t)
	ref, err := r.CheckoutNewBranch("feature")
	require.NoError(t, err)
	assert.Equal(t, "R", ref.Target)
	assert.Equal(t, Head{Branch: "feature", Commit: "R"}, r.Head())

	_, err = r.CheckoutNewBranch("feature")
	assert.ErrorIs(t, err, model.ErrNameAlreadyExists)
}

func TestReset(t *testing.T) {
	r := newTestRepo(t, "C1", "C2")
	_, _ = r.Commit("")
	_, _ = r.Commit("")

	id, err := r.Reset("HEAD~2")
	require.NoError(t, err)
	assert.Equal(t, "R", id)
	assert.Equal(t, Head{Branch: "master", Commit: "R"}, r.Head())

	// The reset-away commits stay resolvable but are unreachable.
	assert.True(t, r.HasCommit("C2"))
	assert.False(t, r.Reachable()["C2"])

	id, err = r.Reset("C2")
	require.NoError(t, err)
	assert.Equal(t, "C2", id)

	require.NoError(t, r.Checkout("C1"))
	_, err = r.Reset("R")
	require.NoError(t, err)
	assert.Equal(t, Head{Commit: "R"}, r.Head())

	_, err = r.Reset("missing")
	assert.ErrorIs(t, err, model.ErrRefNotFound)
}

func TestRevert(t *testing.T) {
	r := newTestRepo(t, "C1", "C2", "C3")
	_, _ = r.Commit("add login")

	rev, err := r.Revert("C1")
	require.NoError(t, err)
	assert.Equal(t, "C2", rev.ID)
	assert.Equal(t, "C1", rev.Parent)
	assert.True(t, rev.Reverted)
	assert.Equal(t, "C1", rev.Reverts)
	assert.Equal(t, `Revert "add login"`, rev.Message)
	assert.Equal(t, "C2", r.HeadCommit())

	orig, _ := r.Get("C1")
	assert.False(t, orig.Reverted, "the reverted commit itself is untouched")

	// A commit off HEAD's history cannot be reverted.
	require.NoError(t, r.Checkout("R"))
	_, err = r.Revert("C1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotAncestor)
	var kerr *model.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "C1", kerr.Commit)
	assert.Len(t, r.Commits(), 3)
}

func TestRevert_MessageKeepsQuotesVerbatim(t *testing.T) {
	r := newTestRepo(t, "C1", "C2", "C3", "C4")
	_, _ = r.Commit(`say "hi"`)
	_, _ = r.Commit("")

	rev, err := r.Revert("C1")
	require.NoError(t, err)
	assert.Equal(t, `Revert "say "hi""`, rev.Message)

	rev, err = r.Revert("C2")
	require.NoError(t, err)
	assert.Equal(t, "Revert C2", rev.Message)
}

func TestLog(t *testing.T) {
	r := newTestRepo(t, "C1", "C2")
	_, _ = r.Commit("one")
	_, _ = r.Commit("two")

	all, err := r.Log("HEAD", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C1", "R"}, ids(all))

	two, err := r.Log("master", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C1"}, ids(two))

	_, err = r.Log("nope", 0)
	assert.ErrorIs(t, err, model.ErrRefNotFound)
}

func TestResolve(t *testing.T) {
	// R - A - B - M
	//      \     /
	//       C --+
	r := newTestRepo(t, "A", "B", "C", "M")
	_, _ = r.Commit("")
	_, _ = r.Commit("")
	_, _ = r.CreateTag("v1")
	require.NoError(t, r.Checkout("A"))
	_, _ = r.CheckoutNewBranch("side")
	_, _ = r.Commit("")
	require.NoError(t, r.Checkout("master"))
	res, err := r.Merge("side", false)
	require.NoError(t, err)
	require.Equal(t, "M", res.To)

	tests := []struct {
		rev  string
		want string
	}{
		{"HEAD", "M"},
		{"master", "M"},
		{"side", "C"},
		{"v1", "B"},
		{"B", "B"},
		{"HEAD^", "B"},
		{"HEAD^1", "B"},
		{"HEAD^2", "C"},
		{"HEAD^0", "M"},
		{"HEAD~2", "A"},
		{"HEAD^2^", "A"},
		{"master~3", "R"},
		{"v1~1^", "R"},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.rev)
		require.NoError(t, err, tt.rev)
		assert.Equal(t, tt.want, got, tt.rev)
	}

	for _, bad := range []string{"", "zzz", "HEAD~4", "B^2", "HEAD^3", "R^", "HEAD^x"} {
		_, err := r.Resolve(bad)
		assert.ErrorIs(t, err, model.ErrRefNotFound, bad)
	}
}

func ids(commits []model.Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.ID)
	}
	return out
}
