// pkg/abi/abi.go
package abi

import (
	"errors"
	"fmt"
)

// ErrUnsupportedAbi indicates an ABI identifier outside the supported set
var ErrUnsupportedAbi = errors.New("unsupported abi")

// Abi represents an Android application binary interface identifier
type Abi string

const (
	// Armeabi is 32-bit ARMv7 with NEON
	Armeabi Abi = "armeabi-v7a"
	// Arm64 is 64-bit ARMv8-A
	Arm64 Abi = "arm64-v8a"
	// X86 is 32-bit Intel
	X86 Abi = "x86"
	// X86_64 is 64-bit Intel/AMD
	X86_64 Abi = "x86_64"
)

// AllAbis contains every ABI the catalog supports, in a fixed order
var AllAbis = []Abi{
	Armeabi,
	Arm64,
	X86,
	X86_64,
}

// String returns the string representation of the ABI
func (a Abi) String() string {
	return string(a)
}

// IsValid checks if the ABI is in the supported set
func (a Abi) IsValid() bool {
	for _, valid := range AllAbis {
		if a == valid {
			return true
		}
	}
	return false
}

// Parse converts an ABI identifier string into an Abi.
// Unknown identifiers are rejected, never guessed.
func Parse(s string) (Abi, error) {
	a := Abi(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAbi, s)
	}
	return a, nil
}

// Triple returns the canonical target triple for the ABI.
// The mapping is total over AllAbis and fixed by the platform.
func (a Abi) Triple() (string, error) {
	switch a {
	case Armeabi:
		return "arm-linux-androideabi", nil
	case Arm64:
		return "aarch64-linux-android", nil
	case X86:
		return "i686-linux-android", nil
	case X86_64:
		return "x86_64-linux-android", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAbi, a)
	}
}

// ClangTarget returns the triple spelling the NDK's clang wrappers use.
// For 32-bit ARM this differs from the sysroot triple.
func (a Abi) ClangTarget() (string, error) {
	if a == Armeabi {
		return "armv7a-linux-androideabi", nil
	}
	return a.Triple()
}

// LibDir returns the directory name for this ABI inside the package's
// native-library tree (lib/<dir>/libfoo.so)
func (a Abi) LibDir() (string, error) {
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAbi, a)
	}
	return string(a), nil
}

// GoArch returns the GOARCH value a cgo build for this ABI uses
func (a Abi) GoArch() (string, error) {
	switch a {
	case Armeabi:
		return "arm", nil
	case Arm64:
		return "arm64", nil
	case X86:
		return "386", nil
	case X86_64:
		return "amd64", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAbi, a)
	}
}

// GoArm returns the GOARM value for the ABI, or "" when it does not apply
func (a Abi) GoArm() string {
	if a == Armeabi {
		return "7"
	}
	return ""
}
