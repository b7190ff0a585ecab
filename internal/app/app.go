// Package app holds build metadata for the conformance-wizard binary.
package app

const (
	Name = "conformance-wizard"

	// DefaultServerURL is the address the conformance suite backend listens on
	// when started with its stock configuration.
	DefaultServerURL = "https://0.0.0.0:8443"
)

// Version and Commit are overridden at build time with -ldflags "-X ...".
var (
	Version = "0.1.0"
	Commit  = ""
)

// FullVersion is the text printed by --version.
func FullVersion() string {
	version := Name + " version " + Version
	if Commit != "" {
		version += " (" + Commit + ")"
	}

	return version
}

// UserAgent returns the User-Agent header value sent to the suite backend.
func UserAgent() string {
	return Name + "/" + Version
}
