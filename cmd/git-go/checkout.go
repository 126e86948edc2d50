package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	git "github.com/gitgo-dev/gogit"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCheckoutCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout COMMIT PATH",
		Short: "Materialize a commit's tree into an empty directory",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutCmd(cmd.OutOrStdout(), cfg, args[0], args[1])
	}

	return cmd
}

func checkoutCmd(out io.Writer, cfg *globalFlags, commitish, destPath string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	treeID, err := r.ResolveType(commitish, object.TypeTree)
	if err != nil {
		return err
	}

	info, statErr := os.Stat(destPath)
	switch {
	case statErr == nil:
		if !info.IsDir() {
			return xerrors.Errorf("%s is not a directory", destPath)
		}
		entries, err := os.ReadDir(destPath)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return xerrors.Errorf("%s is not empty", destPath)
		}
	case os.IsNotExist(statErr):
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return err
		}
	default:
		return statErr
	}

	if err := checkoutTree(r, treeID, destPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "checked out %s to %s\n", commitish, destPath)
	return nil
}

// checkoutTree writes every blob in the tree rooted at treeID to
// destPath on the real filesystem, recreating the tree's directory
// structure. Gitlinks (submodules) are skipped: there's no submodule
// support to populate them with.
func checkoutTree(r *git.Repository, treeID ginternals.Oid, destPath string) error {
	tree, err := r.Tree(treeID)
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", treeID.String(), err)
	}

	for _, e := range tree.Entries() {
		target := filepath.Join(destPath, e.Path)

		switch e.Mode.ObjectType() {
		case object.TypeTree:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			if err := checkoutTree(r, e.ID, target); err != nil {
				return err
			}
		case object.TypeCommit:
			// gitlink: no submodule support to populate it with
			continue
		default:
			blob, err := r.GetObject(e.ID)
			if err != nil {
				return xerrors.Errorf("could not load blob %s: %w", e.ID.String(), err)
			}
			mode := os.FileMode(0o644)
			if e.Mode == object.ModeExecutable {
				mode = 0o755
			}
			if err := os.WriteFile(target, blob.Bytes(), mode); err != nil {
				return err
			}
		}
	}
	return nil
}
