// Package template realizes bundle files by substituting @@token@@
// references with deployment-specific values.
package template

import (
	"os"
	"regexp"
	"sort"

	"github.com/arthur-debert/stowaway/pkg/logging"
)

// Engine substitutes replacement tokens in file content
type Engine interface {
	Replace(content string) string
}

var tokenPattern = regexp.MustCompile(`@@([A-Za-z0-9_.\-]+)@@`)

// TokenEngine replaces @@name@@ with the value registered for name.
// Unknown tokens are left untouched.
type TokenEngine struct {
	variables map[string]string
}

// New creates an engine seeded with the host defaults and then vars,
// which take precedence.
func New(vars map[string]string) *TokenEngine {
	variables := DefaultVariables()
	for k, v := range vars {
		variables[k] = v
	}
	return &TokenEngine{variables: variables}
}

// DefaultVariables returns the values every deployment can reference
func DefaultVariables() map[string]string {
	vars := make(map[string]string)
	vars["HOME"] = os.Getenv("HOME")
	vars["USER"] = os.Getenv("USER")
	vars["SHELL"] = os.Getenv("SHELL")

	hostname, _ := os.Hostname()
	vars["HOSTNAME"] = hostname

	return vars
}

// Set registers or overrides one variable
func (e *TokenEngine) Set(name, value string) {
	e.variables[name] = value
}

// Variables lists the registered names in sorted order
func (e *TokenEngine) Variables() []string {
	names := make([]string, 0, len(e.variables))
	for name := range e.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Replace returns content with every known token substituted
func (e *TokenEngine) Replace(content string) string {
	replaced, missing := 0, 0
	out := tokenPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := token[2 : len(token)-2]
		if value, ok := e.variables[name]; ok {
			replaced++
			return value
		}
		missing++
		return token
	})

	if replaced > 0 || missing > 0 {
		logger := logging.GetLogger("template")
		logger.Trace().
			Int("replaced", replaced).
			Int("unknown", missing).
			Msg("Realized content")
	}
	return out
}
