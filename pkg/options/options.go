// Package options defines the generic options interface shared by all
// per-concern configuration packages.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates prefixes with "." and appends a trailing "." when
// the result is non-empty. It is used to namespace flag names, e.g.
// "embedding.llm.provider".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is implemented by every per-concern options struct.
type IOptions interface {
	// Validate validates all the required options.
	Validate() []error

	// AddFlags adds the options' flags to the given flagset, optionally
	// namespaced by prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
