// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"strings"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Print writes "<binary> <Info()>" to stdout.
func Print(binary string) {
	fmt.Printf("%s %s\n", binary, Info())
}

// RuntimeTag returns the major.minor Go version of the running binary,
// e.g. "1.25" for "go1.25.6". Strings without a dotted version are
// returned unchanged.
func RuntimeTag() string {
	return runtimeTag(runtime.Version())
}

func runtimeTag(goVersion string) string {
	trimmed := strings.TrimPrefix(goVersion, "go")
	parts := strings.SplitN(trimmed, ".", 3)
	if len(parts) < 2 {
		return trimmed
	}
	// Prerelease suffixes ("1.26rc1") stay attached to the minor part.
	return parts[0] + "." + parts[1]
}
