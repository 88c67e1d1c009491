package stack

import (
	"os"

	"github.com/mamisoa/lego/internal/util"
)

// Requirements scans the raw descriptor for ${VAR} references and returns
// the variable names that must have a value at deploy time. References
// carrying a default are not required.
func Requirements(path string) ([]string, error) {
	data, err := os.ReadFile(util.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	return util.ScanEnvRefs(string(data)), nil
}

// MissingEnv returns the required variable names that have no value in env.
// An empty value counts as missing: deploying with a blank domain or
// secrets path produces a broken stack.
func MissingEnv(required []string, env map[string]string) []string {
	var missing []string
	for _, name := range required {
		if env[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
