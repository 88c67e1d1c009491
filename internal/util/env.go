package util

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// envRefPattern matches compose ${VAR} references, including the
// ${VAR:-default} and ${VAR:?message} forms.
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)((?::?[-?])[^}]*)?\}`)

// dollarEscape stands in for "$$" while references are substituted.
const dollarEscape = "\x00"

// ScanEnvRefs returns the sorted names of variables the content references
// without a default value: bare ${VAR} and the ${VAR:?} forms. References
// with a default (${VAR:-x}, ${VAR-x}) do not require a value.
func ScanEnvRefs(content string) []string {
	content = strings.ReplaceAll(content, "$$", "")
	seen := map[string]bool{}
	for _, m := range envRefPattern.FindAllStringSubmatch(content, -1) {
		name, op := m[1], m[2]
		if strings.HasPrefix(op, ":-") || strings.HasPrefix(op, "-") {
			continue
		}
		seen[name] = true
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ExpandEnvRefs substitutes ${VAR} references from env. ${VAR:-default}
// falls back when VAR is unset or empty, ${VAR-default} only when unset,
// and ${VAR:?message} makes the expansion fail. "$$" escapes a dollar sign.
func ExpandEnvRefs(content string, env map[string]string) (string, error) {
	content = strings.ReplaceAll(content, "$$", dollarEscape)

	var expandErr error
	out := envRefPattern.ReplaceAllStringFunc(content, func(ref string) string {
		m := envRefPattern.FindStringSubmatch(ref)
		name, op := m[1], m[2]
		if v, ok := env[name]; ok && (v != "" || !strings.HasPrefix(op, ":")) {
			return v
		}
		switch {
		case strings.HasPrefix(op, ":-"):
			return op[2:]
		case strings.HasPrefix(op, "-"):
			return op[1:]
		case strings.HasPrefix(op, ":?"), strings.HasPrefix(op, "?"):
			msg := strings.TrimLeft(op, ":?")
			if msg == "" {
				msg = "variable is required"
			}
			if expandErr == nil {
				expandErr = fmt.Errorf("%s: %s", name, msg)
			}
			return ""
		}
		return ""
	})

	return strings.ReplaceAll(out, dollarEscape, "$"), expandErr
}
