// Package version reports the build version of grf2txt.
package version

// Version is set at build time with
// -ldflags "-X grf2txt/internal/version.Version=v1.2.3".
var Version = "dev"

// String returns the version, never empty.
func String() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
