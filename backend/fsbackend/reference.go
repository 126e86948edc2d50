package fsbackend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitgo-dev/gogit/backend"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name
// ErrRefNotFound is returned if the reference doesn't exists
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
			}
			return nil, xerrors.Errorf("could not read reference content: %w", err)
		}
		return data, nil
	}
	return ginternals.ResolveReference(name, finder)
}

// systemPath returns a path from a ref name
// Ex.: On windows refs/heads/master would return refs\heads\master
func (b *Backend) systemPath(name string) string {
	if os.PathSeparator != '/' {
		name = filepath.FromSlash(name)
	}
	return filepath.Join(ginternals.DotGitPath(b.cfg), name)
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	var target string
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrUnknownRefType)
	}

	p := b.systemPath(ref.Name())
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return xerrors.Errorf("could not create directory for reference %s: %w", ref.Name(), err)
	}
	if err := afero.WriteFile(b.fs, p, []byte(target), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	return nil
}

// WriteReferenceSafe writes the given reference in the db
// ErrRefExists is returned if the reference already exists
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	p := b.systemPath(ref.Name())
	if _, err := b.fs.Stat(p); !os.IsNotExist(err) {
		if err != nil {
			return xerrors.Errorf("could not check if reference exists on disk: %w", err)
		}
		return ginternals.ErrRefExists
	}

	return b.WriteReference(ref)
}

// WalkReferences walks every reference stored under refs/, plus HEAD
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	if err := b.walkOneRef(ginternals.Head, f); err != nil {
		if xerrors.Is(err, backend.WalkStop) {
			return nil
		}
		return err
	}

	root := ginternals.RefsPath(b.cfg)
	err := afero.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// A freshly-init'd bare repo may have no refs/heads entries yet.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(ginternals.DotGitPath(b.cfg), path)
		if err != nil {
			return xerrors.Errorf("could not compute reference name for %s: %w", path, err)
		}
		return b.walkOneRef(filepath.ToSlash(rel), f)
	})
	if xerrors.Is(err, backend.WalkStop) {
		return nil
	}
	return err
}

func (b *Backend) walkOneRef(name string, f backend.RefWalkFunc) error {
	ref, err := b.Reference(name)
	if err != nil {
		if xerrors.Is(err, ginternals.ErrRefNotFound) {
			return nil
		}
		return xerrors.Errorf("could not load reference %s: %w", name, err)
	}
	return f(ref)
}
