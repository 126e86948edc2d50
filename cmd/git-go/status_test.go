package main

import (
	"bytes"
	"testing"

	git "github.com/gitgo-dev/gogit"
	"github.com/gitgo-dev/gogit/env"
	"github.com/gitgo-dev/gogit/internal/testhelper"
	"github.com/stretchr/testify/require"
)

func TestStatusCmdUnbornBranch(t *testing.T) {
	t.Parallel()

	repoPath, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	repo, err := git.InitRepository(repoPath)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	outBuf := bytes.NewBufferString("")
	cmd := newRootCmd(repoPath, env.NewFromOs())
	cmd.SetOut(outBuf)
	cmd.SetArgs([]string{"status"})

	require.NoError(t, cmd.Execute())
	require.Contains(t, outBuf.String(), "On branch master")
	require.Contains(t, outBuf.String(), "nothing to commit")
}
