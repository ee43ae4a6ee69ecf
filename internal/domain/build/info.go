// Package build carries version metadata injected at link time.
package build

// Info holds build-time version information.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}
