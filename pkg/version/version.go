// Package version exposes build metadata injected with -ldflags.
package version

// Build metadata, set via -ldflags "-X github.com/Sumatoshi-tech/utcban/pkg/version.Version=...".
var (
	Version = "dev"     //nolint:gochecknoglobals // set by the linker
	Commit  = "none"    //nolint:gochecknoglobals // set by the linker
	Date    = "unknown" //nolint:gochecknoglobals // set by the linker
)
