package version

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Set through -ldflags at release time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

type gitRunner func(args ...string) (string, error)

// Resolve returns the version string. Builds run from a git checkout that is
// not sitting on a release tag get the describe output appended.
func Resolve() string {
	return resolveVersion(Version, runGit)
}

// Describe renders the multi-line build summary printed by `voxscribe version`.
func Describe(program string) string {
	return describe(program, Resolve(), Commit, Date, runtime.Version())
}

func describe(program, resolved, commit, date, goVersion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", program, resolved)
	if commit != "" && commit != "unknown" {
		fmt.Fprintf(&b, "commit: %s\n", commit)
	}
	if date != "" && date != "unknown" {
		fmt.Fprintf(&b, "built:  %s\n", date)
	}
	fmt.Fprintf(&b, "go:     %s\n", goVersion)
	return b.String()
}

func resolveVersion(base string, git gitRunner) string {
	if base == "" {
		base = "0.0.0"
	}

	suffix := gitSuffix(base, git)
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func gitSuffix(base string, git gitRunner) string {
	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return ""
	}

	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return ""
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil || desc == "" {
		return ""
	}

	return strings.TrimPrefix(desc, "v"+base+"-")
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
