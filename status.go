package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitgo-dev/gogit/env"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/ignore"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Change describes how a path differs between two of the three trees
// status compares (HEAD, the index, and the worktree).
type Change string

// Valid Change values. The empty Change means "no difference".
const (
	ChangeAdded    Change = "added"
	ChangeModified Change = "modified"
	ChangeDeleted  Change = "deleted"
)

// FileStatus is the combined status of a single path.
type FileStatus struct {
	Path string
	// Staged is the change between HEAD and the index, empty if none.
	Staged Change
	// Worktree is the change between the index and the worktree, empty
	// if none.
	Worktree Change
	// Untracked is true when the path exists in the worktree but has
	// never been staged.
	Untracked bool
}

// Status is the result of comparing HEAD, the index, and the worktree.
type Status struct {
	// Branch is the short name of the branch HEAD points to, empty if
	// HEAD is detached. On a repository with no commits yet it is the
	// name of the unborn branch HEAD points to.
	Branch string
	// Detached is true when HEAD points directly at a commit rather
	// than at a branch.
	Detached bool
	// HeadID is the commit HEAD resolves to, or ginternals.NullOid on a
	// repository with no commits yet.
	HeadID ginternals.Oid

	Files []FileStatus
}

// Status computes the repository's status the way `git status` does:
// branch identity, then the HEAD-vs-index diff, then the
// index-vs-worktree diff, including untracked files that the ignore
// engine doesn't match.
func (r *Repository) Status() (*Status, error) {
	st := &Status{}

	headRef, err := r.Reference(ginternals.Head)
	switch {
	case err == nil:
		st.HeadID = headRef.Target()
		if headRef.Type() == ginternals.SymbolicReference {
			st.Branch = strings.TrimPrefix(headRef.SymbolicTarget(), "refs/heads/")
		} else {
			st.Detached = true
		}
	case errors.Is(err, ginternals.ErrRefNotFound):
		// HEAD points to a branch that hasn't been committed to yet: the
		// branch name is still known even though the commit isn't.
		st.Branch = r.unbornBranchName()
	default:
		return nil, xerrors.Errorf("could not resolve HEAD: %w", err)
	}

	headTree := map[string]ginternals.Oid{}
	if !st.HeadID.IsZero() {
		commit, err := r.Commit(st.HeadID)
		if err != nil {
			return nil, xerrors.Errorf("could not load HEAD commit: %w", err)
		}
		headTree, err = r.flattenTree(commit.TreeID(), "")
		if err != nil {
			return nil, xerrors.Errorf("could not flatten HEAD tree: %w", err)
		}
	}

	idx, err := r.Index()
	if err != nil {
		return nil, xerrors.Errorf("could not read index: %w", err)
	}

	files := map[string]*FileStatus{}
	get := func(p string) *FileStatus {
		if fs, ok := files[p]; ok {
			return fs
		}
		fs := &FileStatus{Path: p}
		files[p] = fs
		return fs
	}

	indexPaths := make(map[string]struct{}, len(idx.Entries))
	for _, e := range idx.Entries {
		indexPaths[e.Path] = struct{}{}

		headID, inHead := headTree[e.Path]
		switch {
		case !inHead:
			get(e.Path).Staged = ChangeAdded
		case headID != e.ID:
			get(e.Path).Staged = ChangeModified
		}
	}
	for p := range headTree {
		if _, inIndex := indexPaths[p]; !inIndex {
			get(p).Staged = ChangeDeleted
		}
	}

	if !r.IsBare() {
		if err := r.diffIndexAgainstWorktree(idx, get); err != nil {
			return nil, err
		}
		if err := r.findUntracked(idx, indexPaths, get); err != nil {
			return nil, err
		}
	}

	st.Files = make([]FileStatus, 0, len(files))
	for _, fs := range files {
		st.Files = append(st.Files, *fs)
	}
	return st, nil
}

// unbornBranchName reads HEAD's raw content directly, bypassing
// reference resolution, so the branch name is available even when the
// branch itself has no commit yet (resolution would otherwise fail
// with ErrRefNotFound).
func (r *Repository) unbornBranchName() string {
	p := filepath.Join(r.Config.GitDirPath, "HEAD")
	data, err := afero.ReadFile(r.Config.FS, p)
	if err != nil {
		return ""
	}
	content := strings.TrimSpace(string(data))
	const symPrefix = "ref: "
	if !strings.HasPrefix(content, symPrefix) {
		return ""
	}
	return strings.TrimPrefix(strings.TrimPrefix(content, symPrefix), "refs/heads/")
}

// flattenTree recursively walks the tree rooted at treeID and returns
// a map of every blob path (slash-separated, relative to the
// repository root) to its blob id.
func (r *Repository) flattenTree(treeID ginternals.Oid, prefix string) (map[string]ginternals.Oid, error) {
	out := map[string]ginternals.Oid{}

	tree, err := r.Tree(treeID)
	if err != nil {
		return nil, xerrors.Errorf("could not load tree %s: %w", treeID.String(), err)
	}

	for _, e := range tree.Entries() {
		fullPath := e.Path
		if prefix != "" {
			fullPath = prefix + "/" + e.Path
		}

		if e.Mode == object.ModeDirectory {
			sub, err := r.flattenTree(e.ID, fullPath)
			if err != nil {
				return nil, err
			}
			for p, id := range sub {
				out[p] = id
			}
			continue
		}
		out[fullPath] = e.ID
	}

	return out, nil
}

// diffIndexAgainstWorktree compares the on-disk mtime (and, on a
// mismatch, the blob hash) of every indexed path against what the
// index recorded.
func (r *Repository) diffIndexAgainstWorktree(idx *ginternals.Index, get func(string) *FileStatus) error {
	for _, e := range idx.Entries {
		diskPath := r.worktreePath(e.Path)
		info, err := r.WorkTree().Stat(diskPath)
		if err != nil {
			if os.IsNotExist(err) {
				get(e.Path).Worktree = ChangeDeleted
				continue
			}
			return xerrors.Errorf("could not stat %s: %w", e.Path, err)
		}

		mtime := info.ModTime()
		if uint32(mtime.Unix()) == e.MTimeSec && uint32(mtime.Nanosecond()) == e.MTimeNsec {
			continue
		}

		content, err := afero.ReadFile(r.WorkTree(), diskPath)
		if err != nil {
			return xerrors.Errorf("could not read %s: %w", e.Path, err)
		}
		if object.New(object.TypeBlob, content).ID() != e.ID {
			get(e.Path).Worktree = ChangeModified
		}
	}
	return nil
}

// worktreePath joins a repository-root-relative, slash-separated path
// with the worktree's root on disk.
func (r *Repository) worktreePath(p string) string {
	return filepath.Join(r.Config.WorkTreePath, filepath.FromSlash(p))
}

// findUntracked walks the worktree looking for files that are neither
// recorded in the index nor matched by the ignore engine.
func (r *Repository) findUntracked(idx *ginternals.Index, indexPaths map[string]struct{}, get func(string) *FileStatus) error {
	engine, err := r.IgnoreEngine(idx)
	if err != nil {
		return err
	}

	return afero.Walk(r.WorkTree(), r.Config.WorkTreePath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		rel, relErr := filepath.Rel(r.Config.WorkTreePath, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		p = rel

		if _, tracked := indexPaths[p]; tracked {
			return nil
		}
		if engine.IsIgnored(p) {
			return nil
		}

		get(p).Untracked = true
		return nil
	})
}

// IgnoreEngine builds the ignore engine used while walking the
// worktree for untracked files: scoped rules come from every
// .gitignore blob recorded in the index, absolute rules from the
// process-global and repo-local ignore files.
func (r *Repository) IgnoreEngine(idx *ginternals.Index) (*ignore.Engine, error) {
	scopes, _ := ignore.BuildScopes(idx.Entries, func(id ginternals.Oid) ([]byte, error) {
		o, err := r.GetObject(id)
		if err != nil {
			return nil, err
		}
		return o.Bytes(), nil
	})

	return &ignore.Engine{
		Scopes:   scopes,
		Absolute: ignore.LoadAbsoluteRules(r.Config.FS, r.Config.GitDirPath, env.NewFromOs()),
	}, nil
}
