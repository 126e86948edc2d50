package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	git "github.com/gitgo-dev/gogit"
	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

const tagRefPrefix = "refs/tags/"

func newTagCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [NAME [OBJECT]]",
		Short: "List, or create, a tag",
		Args:  cobra.RangeArgs(0, 2),
	}

	annotate := cmd.Flags().BoolP("annotate", "a", false, "Create an annotated tag.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		name := ""
		objectName := ginternals.Head
		if len(args) > 0 {
			name = args[0]
		}
		if len(args) > 1 {
			objectName = args[1]
		}
		return tagCmd(cmd.OutOrStdout(), cfg, name, objectName, *annotate)
	}

	return cmd
}

func tagCmd(out io.Writer, cfg *globalFlags, name, objectName string, annotate bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	if name == "" {
		return listTags(out, r)
	}

	targetID, err := r.Resolve(objectName)
	if err != nil {
		return err
	}

	refTarget := targetID
	if annotate {
		targetObj, err := r.GetObject(targetID)
		if err != nil {
			return err
		}
		tag := object.NewTag(&object.TagParams{
			Target:  targetObj,
			Name:    name,
			Tagger:  object.NewSignature("git-go", "git-go@localhost"),
			Message: fmt.Sprintf("tag: %s", name),
		})
		refTarget, err = r.WriteObject(tag.ToObject())
		if err != nil {
			return err
		}
	}

	_, err = r.NewReference(ginternals.LocalTagFullName(name), refTarget)
	return err
}

func listTags(out io.Writer, r *git.Repository) error {
	var names []string
	err := r.WalkReferences(func(ref *ginternals.Reference) error {
		if strings.HasPrefix(ref.Name(), tagRefPrefix) {
			names = append(names, strings.TrimPrefix(ref.Name(), tagRefPrefix))
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}
