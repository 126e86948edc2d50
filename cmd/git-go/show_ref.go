package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newShowRefCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-ref",
		Short: "List every reference stored in the repository",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return showRefCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func showRefCmd(out io.Writer, cfg *globalFlags) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	type line struct {
		name string
		id   ginternals.Oid
	}
	var lines []line

	err = r.WalkReferences(func(ref *ginternals.Reference) error {
		if ref.Name() == ginternals.Head {
			return nil
		}
		lines = append(lines, line{name: ref.Name(), id: ref.Target()})
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].name < lines[j].name })
	for _, l := range lines {
		fmt.Fprintf(out, "%s %s\n", l.id.String(), l.name)
	}
	return nil
}
