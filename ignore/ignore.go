// Package ignore implements gitignore-style rule parsing and matching:
// ordered (pattern, include-flag) rules, last-match-wins evaluation,
// and the scoped-vs-absolute precedence used by the status engine.
package ignore

import (
	"path/filepath"
	"strings"
)

// Rule is a single parsed ignore pattern.
type Rule struct {
	Pattern string
	// Include is true when a match means "ignore this path", false
	// when the rule negates a previous match ("un-ignore").
	Include bool
}

// ParseLine parses a single line of a gitignore-format file.
// It returns ok=false for blank lines and comments, which carry no rule.
func ParseLine(line string) (Rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	if strings.HasPrefix(line, "!") {
		return Rule{Pattern: line[1:], Include: false}, true
	}

	if strings.HasPrefix(line, `\`) && len(line) > 1 && (line[1] == '!' || line[1] == '#') {
		return Rule{Pattern: line[1:], Include: true}, true
	}

	return Rule{Pattern: line, Include: true}, true
}

// ParseRules parses every line of a gitignore-format file's content
// into an ordered rule list.
func ParseRules(data []byte) []Rule {
	var rules []Rule
	for _, line := range strings.Split(string(data), "\n") {
		if rule, ok := ParseLine(line); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Match evaluates path against rules in order and returns the
// include-flag of the last rule that matched. ok is false if no rule
// matched at all.
func Match(path string, rules []Rule) (ignored bool, ok bool) {
	for _, r := range rules {
		if matchPattern(r.Pattern, path) {
			ignored = r.Include
			ok = true
		}
	}
	return ignored, ok
}

// matchPattern matches a single gitignore-style pattern against path.
// Patterns without a slash match against the path's basename or any
// path segment; patterns with a slash match the full path.
func matchPattern(pattern, path string) bool {
	// A trailing slash marks a directory pattern; paths carry no
	// directory flag here, so it is dropped before matching.
	pattern = strings.TrimSuffix(pattern, "/")
	if strings.Contains(pattern, "/") {
		return matchGlob(strings.TrimPrefix(pattern, "/"), path)
	}

	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	if matchGlob(pattern, base) {
		return true
	}
	return matchGlob(pattern, path)
}

// matchGlob matches a shell-style glob against name, with "**"
// matching zero or more path segments.
func matchGlob(pattern, name string) bool {
	if !strings.Contains(pattern, "**") {
		matched, _ := filepath.Match(pattern, name)
		return matched
	}

	patParts := strings.Split(pattern, "/")
	nameParts := strings.Split(name, "/")
	return matchSegments(patParts, nameParts)
}

func matchSegments(patParts, nameParts []string) bool {
	pi, ni := 0, 0
	for pi < len(patParts) && ni < len(nameParts) {
		if patParts[pi] == "**" {
			pi++
			if pi >= len(patParts) {
				return true
			}
			for tryNi := ni; tryNi <= len(nameParts); tryNi++ {
				if matchSegments(patParts[pi:], nameParts[tryNi:]) {
					return true
				}
			}
			return false
		}
		matched, _ := filepath.Match(patParts[pi], nameParts[ni])
		if !matched {
			return false
		}
		pi++
		ni++
	}
	for pi < len(patParts) {
		if patParts[pi] != "**" {
			return false
		}
		pi++
	}
	return ni >= len(nameParts)
}
