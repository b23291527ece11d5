// pkg/ndk/types.go
package ndk

import (
	"fmt"

	"github.com/arc-language/droidkit/pkg/abi"
)

// ClampPolicy controls what happens when a requested API level falls
// outside the catalog's supported range.
type ClampPolicy int

const (
	// ClampToSupported adjusts the level into range and reports the
	// adjustment on the resolution result. This is the default.
	ClampToSupported ClampPolicy = iota
	// ClampStrict rejects out-of-range levels with an APIRangeError.
	ClampStrict
)

// Config configures installation lookup and resolution policy
type Config struct {
	// Path is the installation root. When empty the root is located
	// through the conventional environment variables.
	Path string
	// ClampPolicy selects clamping versus strict API range handling
	ClampPolicy ClampPolicy
}

// Version is a parsed NDK release version
type Version struct {
	Major int
	Minor int
	Patch int
	// Beta is the pre-release marker ("beta1", "rc2"), empty for stable
	Beta string
}

// String returns the version in source.properties form
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Beta != "" {
		s += "-" + v.Beta
	}
	return s
}

// NDK is a validated installation. It is immutable after construction and
// holds for the duration of one build; resolution against it is safe to
// call concurrently.
type NDK struct {
	root    string
	version Version
	hostTag string
	policy  ClampPolicy
}

// Root returns the validated installation root path
func (n *NDK) Root() string { return n.root }

// Version returns the parsed installation version
func (n *NDK) Version() Version { return n.version }

// Toolchain is the derived per-(ABI, API) toolchain view. It is a value
// computed on demand, never cached across API levels: the clang wrapper
// file name embeds the level.
type Toolchain struct {
	Abi    abi.Abi
	Triple string
	// API is the resolved level; Requested is what the caller asked for
	API       abi.API
	Requested abi.API
	// Clamped reports whether API differs from Requested
	Clamped bool

	Clang   string
	ClangXX string
	Ar      string
	Linker  string
	Objcopy string
	Sysroot string
}

// InvalidInstallationError indicates a path that is not a usable NDK
type InvalidInstallationError struct {
	Path   string
	Reason string
}

func (e *InvalidInstallationError) Error() string {
	return fmt.Sprintf("invalid NDK installation at %s: %s", e.Path, e.Reason)
}

// ToolMissingError indicates a resolved toolchain file absent on disk
type ToolMissingError struct {
	Path string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("toolchain file missing: %s", e.Path)
}

// APIRangeError is returned under ClampStrict for out-of-range levels
type APIRangeError struct {
	Requested abi.API
}

func (e *APIRangeError) Error() string {
	return fmt.Sprintf("API level %d outside supported range [%d, %d]",
		int(e.Requested), int(abi.DefaultMinAPI), int(abi.MaxKnownAPI))
}
