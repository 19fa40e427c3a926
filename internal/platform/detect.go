package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "voxscribe"

type Runtime struct {
	OS   string
	Arch string
}

func CurrentRuntime() Runtime {
	return Runtime{
		OS:   runtime.GOOS,
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// Target is the os_arch directory name used for packaged engine binaries.
func (r Runtime) Target() string {
	return r.OS + "_" + r.Arch
}

func NormalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}

// DataEnv carries the environment values that influence the data directory.
type DataEnv struct {
	Home         string
	XDGDataHome  string
	LocalAppData string
}

func DefaultModelDirFor(goos string, env DataEnv) (string, error) {
	dataDir, err := defaultDataDirFor(goos, env)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultModelDirFor(runtime.GOOS, DataEnv{
		Home:         homeDir,
		XDGDataHome:  os.Getenv("XDG_DATA_HOME"),
		LocalAppData: os.Getenv("LOCALAPPDATA"),
	})
}

func defaultDataDirFor(goos string, env DataEnv) (string, error) {
	if env.Home == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		if env.XDGDataHome != "" {
			return filepath.Join(env.XDGDataHome, appDirName), nil
		}
		return filepath.Join(env.Home, ".local", "share", appDirName), nil
	case "darwin":
		return filepath.Join(env.Home, "Library", "Application Support", appDirName), nil
	case "windows":
		if env.LocalAppData != "" {
			return filepath.Join(env.LocalAppData, appDirName), nil
		}
		return filepath.Join(env.Home, "AppData", "Local", appDirName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
