package app

import (
	"github.com/kart-io/version"
)

// GetVersion returns the build's git version, as stamped by the linker.
// The server attaches it to every log line as service.version.
func GetVersion() string {
	return version.Get().GitVersion
}
