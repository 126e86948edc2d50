// Package git is a from-scratch, on-disk-compatible implementation of
// git's plumbing layer: the content-addressed object store, refs, and
// the loose-object storage format.
package git

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gitgo-dev/gogit/backend"
	"github.com/gitgo-dev/gogit/backend/fsbackend"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/config"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by the Repository struct
var (
	ErrRepositoryNotExist = errors.New("repository does not exist")
	ErrRepositoryExists   = errors.New("repository already exists")
)

// defaultInitialBranchName is used when no branch name is provided to
// InitRepositoryWithParams
const defaultInitialBranchName = "master"

// Repository represents a git repository
// A Git repository is the .git/ folder inside a project. This
// repository tracks all changes made to files in your project,
// building a history over time.
// https://blog.axosoft.com/learning-git-repository/
type Repository struct {
	// Config holds the resolved paths and settings this repository
	// was loaded with
	Config *config.Config

	dotGit backend.Backend
	wt     afero.Fs
}

// InitOptions contains all the optional data used to initialize a
// repository
type InitOptions struct {
	// IsBare represents whether a bare repository will be created or not
	IsBare bool
	// InitialBranchName is the name of the branch HEAD will point at.
	// Defaults to "master"
	InitialBranchName string
	// Symlink tells InitRepositoryWithParams to leave a pointer file at
	// cfg.WorkTreePath/.git containing "gitdir: <cfg.GitDirPath>"
	// instead of creating the repository directly at that location.
	// Used to implement --separate-git-dir.
	Symlink bool
	// GitBackend represents the underlying backend to use to init the
	// repository and interact with the odb
	// By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used.
	// Setting this is useless if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// InitRepository initializes a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoPath,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not build config: %w", err)
	}
	return InitRepositoryWithParams(cfg, InitOptions{})
}

// InitRepositoryWithParams initializes a new git repository using the
// provided config, which is where almost everything that Git stores
// and manipulates is located.
func InitRepositoryWithParams(cfg *config.Config, opts InitOptions) (*Repository, error) {
	r := &Repository{Config: cfg}

	r.dotGit = opts.GitBackend
	if r.dotGit == nil {
		r.dotGit = fsbackend.New(cfg.FS, cfg)
	}

	if !opts.IsBare {
		r.wt = opts.WorkingTreeBackend
		if r.wt == nil {
			r.wt = cfg.FS
		}
	}

	branchName := opts.InitialBranchName
	if branchName == "" {
		branchName = defaultInitialBranchName
	}

	if err := r.dotGit.Init(branchName); err != nil {
		return nil, xerrors.Errorf("could not initialize repository: %w", err)
	}

	if opts.Symlink && !opts.IsBare {
		pointer := "gitdir: " + cfg.GitDirPath + "\n"
		if err := afero.WriteFile(cfg.FS, filepath.Join(cfg.WorkTreePath, gitpath.DotGitPath), []byte(pointer), 0o644); err != nil {
			return nil, xerrors.Errorf("could not write separate git dir pointer: %w", err)
		}
	}

	return r, nil
}

// OpenOptions contains all the optional data used to open a
// repository
type OpenOptions struct {
	// IsBare represents whether the repository is bare or not
	IsBare bool
	// GitBackend represents the underlying backend to use to interact
	// with the odb. By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used.
	// Setting this is useless if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// OpenRepository loads an existing git repository by reading its
// config file, and returns a Repository instance
func OpenRepository(repoPath string) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: repoPath,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not build config: %w", err)
	}
	return OpenRepositoryWithParams(cfg, OpenOptions{})
}

// OpenRepositoryWithParams loads an existing git repository using the
// provided config, and returns a Repository instance
func OpenRepositoryWithParams(cfg *config.Config, opts OpenOptions) (*Repository, error) {
	r := &Repository{Config: cfg}

	r.dotGit = opts.GitBackend
	if r.dotGit == nil {
		r.dotGit = fsbackend.New(cfg.FS, cfg)
	}

	if !opts.IsBare {
		r.wt = opts.WorkingTreeBackend
		if r.wt == nil {
			r.wt = cfg.FS
		}
	}

	// since we can't reliably check if the directory exists on disk to
	// validate if the repo exists, we instead check that HEAD exists
	// (since it should always be there)
	if _, err := r.dotGit.Reference(ginternals.Head); err != nil {
		return nil, ErrRepositoryNotExist
	}

	return r, nil
}

// IsBare returns whether the repository has no working tree
func (r *Repository) IsBare() bool {
	return r.wt == nil
}

// WorkTree returns the filesystem used to access the working tree, or
// nil if the repository is bare
func (r *Repository) WorkTree() afero.Fs {
	return r.wt
}

// Close releases the resources held by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// GetObject returns the object matching the given Oid
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, xerrors.Errorf("could not get object %s: %w", oid.String(), err)
	}
	return o, nil
}

// WriteObject writes an object to the odb and returns its Oid
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	oid, err := r.dotGit.WriteObject(o)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write object: %w", err)
	}
	return oid, nil
}

// HasObject returns whether an object exists in the odb
func (r *Repository) HasObject(oid ginternals.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WalkLooseObjectIDs runs f on every loose object id in the odb
func (r *Repository) WalkLooseObjectIDs(f backend.OidWalkFunc) error {
	return r.dotGit.WalkLooseObjectIDs(f)
}

// NewBlob creates, stores, and returns a new Blob object
func (r *Repository) NewBlob(data []byte) (*object.Blob, error) {
	o := object.New(object.TypeBlob, data)
	if _, err := r.dotGit.WriteObject(o); err != nil {
		return nil, xerrors.Errorf("could not persist blob: %w", err)
	}
	return object.NewBlob(o), nil
}

// Commit returns the commit matching the given Oid
func (r *Repository) Commit(oid ginternals.Oid) (*object.Commit, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	return o.AsCommit()
}

// Tree returns the tree matching the given Oid
func (r *Repository) Tree(oid ginternals.Oid) (*object.Tree, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTree()
}

// Tag returns the tag matching the given Oid
func (r *Repository) Tag(oid ginternals.Oid) (*object.Tag, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	return o.AsTag()
}

// Reference returns a stored reference from its name
func (r *Repository) Reference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// GetReference is an alias of Reference, kept for callers that resolve
// arbitrary object names (sha, ref, branch, tag) against the repository
func (r *Repository) GetReference(name string) (*ginternals.Reference, error) {
	return r.Reference(name)
}

// NewReference creates and persists a new Oid reference, overwriting
// any reference that previously existed under the same name
func (r *Repository) NewReference(name string, target ginternals.Oid) (*ginternals.Reference, error) {
	ref := ginternals.NewReference(name, target)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, xerrors.Errorf("could not write reference %s: %w", name, err)
	}
	return ref, nil
}

// NewSymbolicReference creates and persists a new symbolic reference,
// overwriting any reference that previously existed under the same name
func (r *Repository) NewSymbolicReference(name, target string) (*ginternals.Reference, error) {
	ref := ginternals.NewSymbolicReference(name, target)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, xerrors.Errorf("could not write reference %s: %w", name, err)
	}
	return ref, nil
}

// WalkReferences runs f on every reference stored in the repository
func (r *Repository) WalkReferences(f backend.RefWalkFunc) error {
	return r.dotGit.WalkReferences(f)
}

// Index loads and parses the repository's staging area from
// GitDirPath/index. A repository that has never staged anything has
// no index file yet; in that case an empty Index is returned.
func (r *Repository) Index() (*ginternals.Index, error) {
	p := filepath.Join(r.Config.GitDirPath, gitpath.IndexPath)
	data, err := afero.ReadFile(r.Config.FS, p)
	if err != nil {
		if os.IsNotExist(err) {
			return ginternals.NewIndex(), nil
		}
		return nil, xerrors.Errorf("could not read index: %w", err)
	}
	idx, err := ginternals.ParseIndex(data)
	if err != nil {
		return nil, xerrors.Errorf("could not parse index: %w", err)
	}
	return idx, nil
}

// WriteIndex persists idx to GitDirPath/index.
func (r *Repository) WriteIndex(idx *ginternals.Index) error {
	p := filepath.Join(r.Config.GitDirPath, gitpath.IndexPath)
	if err := afero.WriteFile(r.Config.FS, p, idx.Serialize(), 0o644); err != nil {
		return xerrors.Errorf("could not write index: %w", err)
	}
	return nil
}
