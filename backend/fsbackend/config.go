package fsbackend

import (
	"errors"
	"os"

	"github.com/gitgo-dev/gogit/backend"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/go-ini/ini"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Init initializes a repository: creates the directory skeleton, the
// description file, the default config, and HEAD pointing at
// refs/heads/<branchName>.
// Calling Init on an existing repository is safe: it won't overwrite
// anything that's already there, only add what's missing.
func (b *Backend) Init(branchName string) error {
	dirs := []string{
		ginternals.DotGitPath(b.cfg),
		ginternals.TagsPath(b.cfg),
		ginternals.LocalBranchesPath(b.cfg),
		ginternals.ObjectsPath(b.cfg),
		ginternals.ObjectsInfoPath(b.cfg),
		ginternals.ObjectsPacksPath(b.cfg),
	}
	for _, d := range dirs {
		if err := b.fs.MkdirAll(d, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	descPath := ginternals.DescriptionFilePath(b.cfg)
	if _, err := b.fs.Stat(descPath); errors.Is(err, os.ErrNotExist) {
		content := []byte("Unnamed repository; edit this file 'description' to name the repository.\n")
		if err := afero.WriteFile(b.fs, descPath, content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", descPath, err)
		}
	}

	if _, err := b.fs.Stat(b.cfg.LocalConfig); errors.Is(err, os.ErrNotExist) {
		if err := b.setDefaultCfg(); err != nil {
			return xerrors.Errorf("could not set the default config: %w", err)
		}
	}

	ref := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(branchName))
	if err := b.WriteReferenceSafe(ref); err != nil && !errors.Is(err, ginternals.ErrRefExists) {
		return xerrors.Errorf("could not write HEAD: %w", err)
	}

	return nil
}

// setDefaultCfg sets and persists the default git configuration for the
// repository
func (b *Backend) setDefaultCfg() error {
	cfg := ini.Empty()

	core, err := cfg.NewSection(backend.CfgCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}
	coreCfg := map[string]string{
		backend.CfgCoreFormatVersion:     "0",
		backend.CfgCoreFileMode:          "false",
		backend.CfgCoreBare:              "false",
		backend.CfgCoreLogAllRefUpdate:   "true",
		backend.CfgCoreIgnoreCase:        "true",
		backend.CfgCorePrecomposeUnicode: "true",
	}
	for k, v := range coreCfg {
		if _, err := core.NewKey(k, v); err != nil {
			return xerrors.Errorf("could not set %s: %w", k, err)
		}
	}

	f, err := b.fs.OpenFile(b.cfg.LocalConfig, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return xerrors.Errorf("could not open config file: %w", err)
	}
	defer f.Close() //nolint:errcheck // best-effort close on the write path

	if _, err := cfg.WriteTo(f); err != nil {
		return xerrors.Errorf("could not write config file: %w", err)
	}
	return nil
}
