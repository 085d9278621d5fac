// Package options defines the contract every component option group in this
// repository implements, so the server options can aggregate them into one
// flag surface.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates flag name prefixes with "." and appends a trailing "."
// when non-empty, yielding names like "milvus.address" or "rag.top-k".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is one component's option group: Redis, Milvus, LLM, cache and
// the rest each implement it.
type IOptions interface {
	// Validate checks the option values and may fill in derived ones.
	Validate() []error

	// AddFlags registers the group's flags on fs under the given prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
