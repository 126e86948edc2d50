package main

import (
	"fmt"
	"io"

	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newCheckIgnoreCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-ignore PATH...",
		Short: "Check whether paths are excluded by gitignore rules",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkIgnoreCmd(cmd.OutOrStdout(), cfg, args)
	}

	return cmd
}

func checkIgnoreCmd(out io.Writer, cfg *globalFlags, paths []string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	engine, err := r.IgnoreEngine(idx)
	if err != nil {
		return err
	}

	for _, p := range paths {
		if engine.IsIgnored(p) {
			fmt.Fprintln(out, p)
		}
	}
	return nil
}
