package main

import (
	"fmt"
	"io"

	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "Show information about files in the index",
		Args:  cobra.NoArgs,
	}

	verbose := cmd.Flags().BoolP("verbose", "v", false, "Show staged mode, object id, and size alongside each path.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesCmd(cmd.OutOrStdout(), cfg, *verbose)
	}

	return cmd
}

func lsFilesCmd(out io.Writer, cfg *globalFlags, verbose bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	for _, e := range idx.Entries {
		if verbose {
			fmt.Fprintf(out, "%06o %s %d\t%s\n", e.Mode(), e.ID.String(), e.Size, e.Path)
			continue
		}
		fmt.Fprintln(out, e.Path)
	}
	return nil
}
