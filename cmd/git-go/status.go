package main

import (
	"fmt"
	"io"

	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the working tree",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func statusCmd(out io.Writer, cfg *globalFlags) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	st, err := r.Status()
	if err != nil {
		return err
	}

	switch {
	case st.Detached:
		fmt.Fprintf(out, "HEAD detached at %s\n", st.HeadID.String())
	case st.Branch != "":
		fmt.Fprintf(out, "On branch %s\n", st.Branch)
	default:
		fmt.Fprintln(out, "Not currently on any branch")
	}

	if len(st.Files) == 0 {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
		return nil
	}

	for _, f := range st.Files {
		switch {
		case f.Untracked:
			fmt.Fprintf(out, "untracked: %s\n", f.Path)
		case f.Staged != "" && f.Worktree != "":
			fmt.Fprintf(out, "staged (%s), modified (%s): %s\n", f.Staged, f.Worktree, f.Path)
		case f.Staged != "":
			fmt.Fprintf(out, "staged (%s): %s\n", f.Staged, f.Path)
		case f.Worktree != "":
			fmt.Fprintf(out, "modified (%s): %s\n", f.Worktree, f.Path)
		}
	}
	return nil
}
