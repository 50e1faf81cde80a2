package core

import (
	"fmt"
	"os"
	"path"
	"runtime"
)

// Populated at build time with -ldflags "-X".
var (
	BuildID   string
	BuildHost string
	BuildTime string
)

// GetBuildID identifies what build is running.
func GetBuildID() (retID string) {
	retID = BuildID
	if retID == "" {
		retID = "Unspecified"
	}
	return
}

// GetBuildTime identifies when this build was made
func GetBuildTime() (retID string) {
	retID = BuildTime
	if retID == "" {
		retID = "Unspecified"
	}
	return
}

// GetBuildHost identifies the building host
func GetBuildHost() (retID string) {
	retID = BuildHost
	if retID == "" {
		retID = "Unspecified"
	}
	return
}

// Command returns the name the binary was invoked as.
func Command() string {
	return path.Base(os.Args[0])
}

// VersionString produces a friendly version string for the running binary.
func VersionString() string {
	return fmt.Sprintf("Versions: %s=(%s %s) Golang=(%s) BuildHost=(%s)",
		Command(), GetBuildID(), GetBuildTime(), runtime.Version(), GetBuildHost())
}
