package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/explaingit/internal/scenario"
)

func TestReplay_SolvesScenario(t *testing.T) {
	sm, err := newSessionManager("")
	require.NoError(t, err)
	_, err = sm.CreateSession(sessionID)
	require.NoError(t, err)
	_, err = sm.StartScenario(sessionID, "branch")
	require.NoError(t, err)

	script := "# make the branch\n\ngit branch feature\ngit branch\n"
	var out bytes.Buffer
	failed, err := replay(context.Background(), sm, strings.NewReader(script), &out, false)
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Contains(t, out.String(), "$ git branch feature\n")
	assert.Contains(t, out.String(), "  feature\n* master\n")
	assert.NotContains(t, out.String(), "make the branch")

	result, err := sm.VerifyScenario(sessionID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var report bytes.Buffer
	printResult(&report, result)
	assert.Contains(t, report.String(), "[x] branch feature exists")
	assert.Contains(t, report.String(), "solved")
}

func TestReplay_StopsAtFirstFailure(t *testing.T) {
	sm, err := newSessionManager("")
	require.NoError(t, err)
	_, err = sm.CreateSession(sessionID)
	require.NoError(t, err)

	script := "merge nope\nbranch dev\n"
	var out bytes.Buffer
	failed, err := replay(context.Background(), sm, strings.NewReader(script), &out, false)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.NotContains(t, out.String(), "$ branch dev")

	out.Reset()
	failed, err = replay(context.Background(), sm, strings.NewReader(script), &out, true)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "merge: nope - not something we can merge\n$ branch dev\n")
}

func TestPrintResult_Unsolved(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &scenario.VerificationResult{
		Progress: []scenario.CheckResult{{Description: "in sync", Passed: false}},
	})
	assert.Equal(t, "\n[ ] in sync\n", out.String())
}
