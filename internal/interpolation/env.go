// Package interpolation expands ${VAR} and ${VAR:default} references in configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrUndefinedVariable is returned when a reference has no environment value and no default.
var ErrUndefinedVariable = errors.New("environment variable not defined")

// the optional colon is captured so ${VAR:} can be told apart from ${VAR}
var envVarPattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces every ${VAR_NAME} or ${VAR_NAME:default_value} reference in input.
// Names are upper case; ${lower} is left as written.
//
// A variable that is set in the environment always wins, even when empty. A missing variable
// falls back to its default when one is given; otherwise the reference is left in place and
// an error naming the variable is collected.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := sub[1], sub[2] == ":", sub[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return fallback
		}

		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedVariable, name))
		return match
	})

	return result, errors.Join(missing...)
}
