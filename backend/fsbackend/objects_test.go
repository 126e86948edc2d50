package fsbackend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/config"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newInitedBackend(t *testing.T) *Backend {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       filepath.Join("/repo", gitpath.DotGitPath),
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)

	b := New(fs, cfg)
	require.NoError(t, b.Init("main"))
	return b
}

func TestObject(t *testing.T) {
	t.Parallel()

	t.Run("existing loose object should be returned", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("hello\n"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		obj, err := b.Object(oid)
		require.NoError(t, err)
		require.NotNil(t, obj)

		assert.Equal(t, oid, obj.ID())
		assert.Equal(t, object.TypeBlob, obj.Type())
		assert.Equal(t, "hello\n", string(obj.Bytes()))
	})

	t.Run("un-existing object should fail", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)

		oid, err := ginternals.NewOidFromStr("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		obj, err := b.Object(oid)
		require.Error(t, err)
		require.Nil(t, obj)
		require.True(t, xerrors.Is(err, ginternals.ErrObjectNotFound), "unexpected error received")
	})
}

func TestHasObject(t *testing.T) {
	t.Parallel()

	t.Run("existing object should exist", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("non-existing object should not exist", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)

		fakeOid, err := ginternals.NewOidFromStr("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		exists, err := b.HasObject(fakeOid)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("cache should be updated", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		// WriteObject already seeds the cache, drop it to exercise the miss path
		b.cache.Remove(oid)
		_, found := b.cache.Get(oid)
		require.False(t, found, "the oid should have not been in the cache")

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists, "the oid should exist")

		_, found = b.cache.Get(oid)
		require.True(t, found, "the oid should have been added to the cache")
	})

	t.Run("invalid cache entry should be replaced", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		b.cache.Add(oid, "not a valid value")

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists, "the oid should exist")

		o2, found := b.cache.Get(oid)
		require.True(t, found, "the oid should have been added to the cache")
		require.IsType(t, &object.Object{}, o2)
	})
}

func TestWriteObject(t *testing.T) {
	t.Parallel()

	t.Run("add a new blob", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.NotEqual(t, ginternals.NullOid, oid, "invalid oid returned")

		storedO, err := b.Object(oid)
		require.NoError(t, err)
		assert.Equal(t, o.Type(), storedO.Type(), "invalid type")
		assert.Equal(t, o.Size(), storedO.Size(), "invalid size")
		assert.Equal(t, o.Bytes(), storedO.Bytes(), "invalid content")

		p := b.looseObjectPath(storedO.ID().String())
		info, err := b.fs.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o444), info.Mode(), "objects should be read only")
	})

	t.Run("writing the same object twice should not error", func(t *testing.T) {
		t.Parallel()

		b := newInitedBackend(t)
		o := object.New(object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		oid2, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, oid, oid2)
	})
}
