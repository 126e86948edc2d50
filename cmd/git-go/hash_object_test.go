package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/testhelper"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, content []byte) string {
	t.Helper()
	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)
	path := filepath.Join(dir, "object")
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), path, content, 0o644))
	return path
}

func TestHashObjectCmd(t *testing.T) {
	t.Parallel()

	t.Run("blob", func(t *testing.T) {
		t.Parallel()

		t.Run("default should be blob", func(t *testing.T) {
			t.Parallel()

			content := []byte("hello\n")
			path := writeTestFile(t, content)

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{path})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				require.NoError(t, cmd.Execute())
			})
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			expected := object.New(object.TypeBlob, content).ID().String() + "\n"
			assert.Equal(t, expected, string(out))
		})

		t.Run("blob opt should work", func(t *testing.T) {
			t.Parallel()

			content := []byte("some binary-ish content\x00\x01\x02")
			path := writeTestFile(t, content)

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{"-t", "blob", path})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				require.NoError(t, cmd.Execute())
			})
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			expected := object.New(object.TypeBlob, content).ID().String() + "\n"
			assert.Equal(t, expected, string(out))
		})
	})

	t.Run("tree", func(t *testing.T) {
		t.Parallel()

		t.Run("valid tree should work", func(t *testing.T) {
			t.Parallel()

			blobID := object.New(object.TypeBlob, []byte("hello\n")).ID()
			tree := object.NewTree([]object.TreeEntry{
				{Path: "hello.txt", ID: blobID, Mode: object.ModeFile},
			})
			path := writeTestFile(t, tree.ToObject().Bytes())

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{"-t", "tree", path})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				require.NoError(t, cmd.Execute())
			})
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, tree.ID().String()+"\n", string(out))
		})

		t.Run("invalid tree should fail", func(t *testing.T) {
			t.Parallel()

			path := writeTestFile(t, []byte("hello\n"))

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{"-t", "tree", path})
			cmd.SetOut(outBuf)

			var err error
			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			require.Error(t, err)

			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)
			assert.Empty(t, string(out))
		})
	})

	t.Run("commit", func(t *testing.T) {
		t.Parallel()

		t.Run("valid commit should work", func(t *testing.T) {
			t.Parallel()

			blobID := object.New(object.TypeBlob, []byte("hello\n")).ID()
			tree := object.NewTree([]object.TreeEntry{
				{Path: "hello.txt", ID: blobID, Mode: object.ModeFile},
			})
			sig := object.Signature{Name: "Ada Lovelace", Email: "ada@example.com"}
			commit := object.NewCommit(tree.ID(), sig, &object.CommitOptions{Message: "initial commit\n"})
			path := writeTestFile(t, commit.ToObject().Bytes())

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{"-t", "commit", path})
			cmd.SetOut(outBuf)

			require.NotPanics(t, func() {
				require.NoError(t, cmd.Execute())
			})
			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)

			assert.Equal(t, commit.ID().String()+"\n", string(out))
		})

		t.Run("invalid commit should fail", func(t *testing.T) {
			t.Parallel()

			blobID := object.New(object.TypeBlob, []byte("hello\n")).ID()
			tree := object.NewTree([]object.TreeEntry{
				{Path: "hello.txt", ID: blobID, Mode: object.ModeFile},
			})
			path := writeTestFile(t, tree.ToObject().Bytes())

			outBuf := bytes.NewBufferString("")
			cmd := newHashObjectCmd(nil)
			cmd.SetArgs([]string{"-t", "commit", path})
			cmd.SetOut(outBuf)

			var err error
			require.NotPanics(t, func() {
				err = cmd.Execute()
			})
			assert.Error(t, err)

			out, err := io.ReadAll(outBuf)
			require.NoError(t, err)
			assert.Empty(t, string(out))
		})
	})
}
