package main

import (
	"fmt"
	"io"

	git "github.com/gitgo-dev/gogit"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree TREE-ISH",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	recurse := cmd.Flags().BoolP("recurse", "r", false, "Recurse into sub-trees, printing only leaf entries.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), cfg, args[0], *recurse)
	}

	return cmd
}

func lsTreeCmd(out io.Writer, cfg *globalFlags, treeish string, recurse bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := r.ResolveType(treeish, object.TypeTree)
	if err != nil {
		return err
	}

	return printTree(out, r, oid, "", recurse)
}

func printTree(out io.Writer, r *git.Repository, treeID ginternals.Oid, prefix string, recurse bool) error {
	tree, err := r.Tree(treeID)
	if err != nil {
		return err
	}

	for _, e := range tree.Entries() {
		path := e.Path
		if prefix != "" {
			path = prefix + "/" + e.Path
		}

		if e.Mode == object.ModeDirectory && recurse {
			if err := printTree(out, r, e.ID, path, recurse); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), path)
	}
	return nil
}
