package ignore

import (
	"path/filepath"

	"github.com/gitgo-dev/gogit/env"
	"github.com/gitgo-dev/gogit/internal/gitpath"
	"github.com/spf13/afero"
)

// LoadAbsoluteRules reads the two absolute-scope ignore sources, in
// order: the process-global ignore file at
// $XDG_CONFIG_HOME/git/ignore (falling back to $HOME/.config), then
// the repository-local gitDir/info/exclude. Either file being absent
// is not an error: an empty rule set is returned for it.
func LoadAbsoluteRules(fs afero.Fs, gitDir string, e *env.Env) []Rule {
	var rules []Rule

	configHome := e.Get("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(e.Get("HOME"), ".config")
	}
	rules = append(rules, readRulesFile(fs, filepath.Join(configHome, "git", "ignore"))...)
	rules = append(rules, readRulesFile(fs, filepath.Join(gitDir, gitpath.InfoExcludePath))...)

	return rules
}

func readRulesFile(fs afero.Fs, path string) []Rule {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil
	}
	return ParseRules(data)
}
