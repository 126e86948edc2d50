package main

import (
	"fmt"
	"io"

	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newRevParseCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rev-parse NAME",
		Short: "Resolve a name to an object id",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().String("wyag-type", "", "Follow the resolved object until it matches this type (blob, tree, commit, tag).")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return revParseCmd(cmd.OutOrStdout(), cfg, args[0], *typ)
	}

	return cmd
}

func revParseCmd(out io.Writer, cfg *globalFlags, name, typ string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	if typ == "" {
		oid, err := r.Resolve(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, oid.String())
		return nil
	}

	wantType, err := object.NewTypeFromString(typ)
	if err != nil {
		return xerrors.Errorf("%s: %w", typ, err)
	}

	oid, err := r.ResolveType(name, wantType)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, oid.String())
	return nil
}
