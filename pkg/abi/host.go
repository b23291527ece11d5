// pkg/abi/host.go
package abi

import (
	"fmt"
	"runtime"
)

// HostTag returns the build machine's directory tag inside the NDK's
// prebuilt toolchain tree. This is the second, independent triple lookup:
// it identifies the host, not the target.
//
// NDK prebuilts ship only for 64-bit x86 hosts; Apple Silicon runs the
// x86_64 prebuilts through Rosetta, so darwin-arm64 maps to darwin-x86_64.
func HostTag() (string, error) {
	switch runtime.GOOS {
	case "linux", "darwin":
		switch runtime.GOARCH {
		case "amd64", "arm64":
			return runtime.GOOS + "-x86_64", nil
		}
	case "windows":
		switch runtime.GOARCH {
		case "amd64":
			return "windows-x86_64", nil
		case "386":
			return "windows", nil
		}
	}
	return "", fmt.Errorf("unsupported host platform: %s/%s", runtime.GOOS, runtime.GOARCH)
}
