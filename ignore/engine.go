package ignore

import (
	"path"
	"strings"

	"github.com/gitgo-dev/gogit/ginternals"
)

// Scope is the rule set parsed from a single .gitignore blob, keyed by
// the directory that contains it ("" for the repository root).
type Scope struct {
	Dir   string
	Rules []Rule
}

// Engine evaluates ignore rules with the precedence spec.md §4.9
// requires: scoped rule sets (one per .gitignore found in the index)
// win over absolute ones, and the deepest matching scope wins among
// the scoped ones.
type Engine struct {
	// Scopes should be every .gitignore found in the index; order
	// doesn't matter, IsIgnored sorts by depth itself.
	Scopes []Scope
	// Absolute holds the process-global ignore file plus the
	// repo-local info/exclude, concatenated in that order.
	Absolute []Rule
}

// BlobFetcher retrieves the raw content of a blob object, used to read
// .gitignore files staged in the index.
type BlobFetcher func(id ginternals.Oid) ([]byte, error)

// BuildScopes parses one Scope per index entry named ".gitignore",
// reading its blob content through fetch. Per design note (c), a blob
// that cannot be fetched is skipped rather than failing the whole
// operation; its error is returned alongside so the caller can log a
// diagnostic.
func BuildScopes(entries []ginternals.IndexEntry, fetch BlobFetcher) ([]Scope, []error) {
	var scopes []Scope
	var warnings []error

	for _, e := range entries {
		if path.Base(e.Path) != ".gitignore" {
			continue
		}

		data, err := fetch(e.ID)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}

		dir := path.Dir(e.Path)
		if dir == "." {
			dir = ""
		}
		scopes = append(scopes, Scope{Dir: dir, Rules: ParseRules(data)})
	}

	return scopes, warnings
}

// IsIgnored returns whether path (slash-separated, relative to the
// repository root) is ignored.
func (e *Engine) IsIgnored(p string) bool {
	for _, dir := range parentDirsDeepestFirst(p) {
		for _, s := range e.Scopes {
			if s.Dir != dir {
				continue
			}
			rel := strings.TrimPrefix(p, dir)
			rel = strings.TrimPrefix(rel, "/")
			if ignored, ok := Match(rel, s.Rules); ok {
				return ignored
			}
		}
	}

	if ignored, ok := Match(p, e.Absolute); ok {
		return ignored
	}
	return false
}

// parentDirsDeepestFirst returns every parent directory of p (p itself
// excluded), from the deepest up to and including the root (""). The
// iterative climb from path.Dir(p) upward naturally yields them in
// deepest-first order.
func parentDirsDeepestFirst(p string) []string {
	var dirs []string
	dir := path.Dir(p)
	for {
		if dir == "." {
			dir = ""
		}
		dirs = append(dirs, dir)
		if dir == "" {
			break
		}
		dir = path.Dir(dir)
	}
	return dirs
}
