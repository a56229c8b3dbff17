package utils

import (
	"fmt"
	"runtime"
	"strings"
)

// These should be set at build time using -ldflags
var (
	VersionMajor = "0"
	VersionMinor = "1"
	VersionPatch = "0"
	Branch       = "main"
	Commit       = "dev"
	BuildDate    = "unknown"
	BuildHash    = "unknown"
)

// SetVersion overrides the build-time values; empty arguments keep the
// default. version must look like "major.minor.patch" to be applied.
func SetVersion(version, branch, commit, buildDate, buildHash string) {
	if parts := strings.Split(version, "."); len(parts) == 3 {
		VersionMajor, VersionMinor, VersionPatch = parts[0], parts[1], parts[2]
	}
	if branch != "" {
		Branch = branch
	}
	if commit != "" {
		Commit = commit
	}
	if buildDate != "" {
		BuildDate = buildDate
	}
	if buildHash != "" {
		BuildHash = buildHash
	}
}

// GetVersion constructs and returns the version information for the service.
func GetVersion() Version {
	commitShort := Commit
	if len(Commit) > 7 {
		commitShort = Commit[:7]
	}

	vObj := VersionObject{
		Major:     VersionMajor,
		Minor:     VersionMinor,
		Patch:     VersionPatch,
		Branch:    Branch,
		Commit:    commitShort,
		BuildDate: BuildDate,
		Arch:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		BuildHash: BuildHash,
	}

	tag := fmt.Sprintf("%s.%s.%s", vObj.Major, vObj.Minor, vObj.Patch)
	str := fmt.Sprintf("%s-%s+%s.%s.%s.%s",
		tag,
		vObj.Branch,
		vObj.Commit,
		vObj.BuildDate,
		vObj.Arch,
		vObj.BuildHash,
	)

	return Version{
		Tag: tag,
		Str: str,
		Obj: vObj,
	}
}
