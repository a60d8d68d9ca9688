package version

// version is set at build time with -ldflags "-X github.com/cbodonnell/bearpong/pkg/version.version=..."
var version = "dev"

// Get returns the version of the server.
func Get() string {
	return version
}
