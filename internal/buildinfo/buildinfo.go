// Package buildinfo holds build metadata for the repodeck binary. The linker
// injects values into cmd/repodeck/main.go and main() forwards them here.
package buildinfo

import "runtime/debug"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func Set(v, c, d string) {
	version = v
	commit = c
	date = d
}

func Version() string { return version }

func Commit() string { return commit }

func Date() string { return date }

// Enrich fills a missing commit from the VCS revision recorded by the Go toolchain.
func Enrich() {
	if commit != "none" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			commit = setting.Value
		}
	}
}

// String formats the metadata for --version output.
func String() string {
	return version + " (commit " + commit + ", built " + date + ")"
}
