// pkg/apk/types.go
package apk

import (
	"fmt"

	"github.com/arc-language/droidkit/pkg/abi"
	"github.com/arc-language/droidkit/pkg/manifest"
	"github.com/arc-language/droidkit/pkg/ndk"
)

// StripConfig selects how debug symbols in added shared libraries are
// treated before placement
type StripConfig int

const (
	// StripNone copies libraries into the package untouched
	StripNone StripConfig = iota
	// Strip removes debug symbols from the placed copy
	Strip
	// StripSplit strips the placed copy and keeps the debug info in an
	// xz-compressed .dwarf sidecar next to the staging tree
	StripSplit
)

// Config configures one package build. NDK is consulted for API-level
// validation, and for the objcopy tool when stripping is enabled.
type Config struct {
	NDK      *ndk.NDK
	Manifest *manifest.Manifest

	// Out is the final package path. On failure nothing exists at Out.
	Out string
	// BuildDir is the scratch root; each build stages under a fresh
	// subdirectory of it and never reuses an old one
	BuildDir string

	// Res is the resource tree handed to the external resource compiler;
	// when empty the resource stage is skipped
	Res string
	// Assets is an optional assets tree copied into the package
	Assets string

	// Aapt2 is the external resource compiler binary; default "aapt2"
	Aapt2 string
	// AndroidJar is the platform jar aapt2 links against, optional
	AndroidJar string

	Strip StripConfig

	// Runner executes external tools; default is ExecRunner. Tests
	// substitute a fake.
	Runner Runner
	// Signer produces the signature block; default is ApksignerSigner
	// driven through Runner
	Signer Signer
}

// LibraryArtifact is one compiled shared library destined for the
// package's native-library tree
type LibraryArtifact struct {
	Abi  abi.Abi
	Path string
}

// Key is the signing credential reference. Key generation is out of
// scope; the store must already exist.
type Key struct {
	Store    string
	Password string
}

// DuplicateLibraryError indicates two artifacts for one ABI resolving to
// the same file name
type DuplicateLibraryError struct {
	Abi  abi.Abi
	Name string
}

func (e *DuplicateLibraryError) Error() string {
	return fmt.Sprintf("duplicate library %q for abi %s", e.Name, e.Abi)
}

// ToolError preserves a failed external tool invocation verbatim: the
// command that ran and its combined diagnostic output
type ToolError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Cmd, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// SigningError indicates credential mismatch or missing key material
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

func (e *SigningError) Unwrap() error { return e.Err }
