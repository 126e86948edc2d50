package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"github.com/gitgo-dev/gogit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [COMMIT]",
		Short: "Show the commit history as a Graphviz DOT graph",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		commitish := ginternals.Head
		if len(args) > 0 {
			commitish = args[0]
		}
		return logCmd(cmd.OutOrStdout(), cfg, commitish)
	}

	return cmd
}

func logCmd(out io.Writer, cfg *globalFlags, commitish string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := r.ResolveType(commitish, object.TypeCommit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "digraph wyaglog{")
	fmt.Fprintln(out, "  node[shape=rect]")

	visited := map[ginternals.Oid]struct{}{}
	queue := []ginternals.Oid{oid}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}

		c, err := r.Commit(id)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "  c_%s [label=\"%s: %s\"]\n", id.String(), abbreviate(id), dotEscape(firstLine(c.Message())))

		for _, parentID := range c.ParentIDs() {
			fmt.Fprintf(out, "  c_%s -> c_%s;\n", id.String(), parentID.String())
			queue = append(queue, parentID)
		}
	}

	fmt.Fprintln(out, "}")
	return nil
}

// abbreviate returns the first 7 characters of an Oid's hex form, the
// same length `git log --oneline` uses by default.
func abbreviate(id ginternals.Oid) string {
	return id.String()[:7]
}

// firstLine returns the first line of a commit message, trimmed of
// its trailing newline.
func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

// dotEscape escapes the two characters that would otherwise break a
// DOT label: the backslash and the double quote.
func dotEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
