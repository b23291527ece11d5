// droidkit.go
package droidkit

import (
	"context"

	"github.com/arc-language/droidkit/pkg/abi"
	"github.com/arc-language/droidkit/pkg/apk"
	"github.com/arc-language/droidkit/pkg/manifest"
	"github.com/arc-language/droidkit/pkg/ndk"
)

// Re-export the domain types for convenience, so build front ends can
// depend on the root package alone.
type (
	Abi             = abi.Abi
	API             = abi.API
	Manifest        = manifest.Manifest
	NDK             = ndk.NDK
	Toolchain       = ndk.Toolchain
	BuildConfig     = apk.Config
	LibraryArtifact = apk.LibraryArtifact
	Key             = apk.Key
	Runner          = apk.Runner
	Signer          = apk.Signer
)

// Re-export the ABI catalog constants
const (
	Armeabi = abi.Armeabi
	Arm64   = abi.Arm64
	X86     = abi.X86
	X86_64  = abi.X86_64

	DefaultMinAPI = abi.DefaultMinAPI
	MaxKnownAPI   = abi.MaxKnownAPI
)

// ValidateNDK validates an installation path; an empty path locates one
// through the conventional environment variables
func ValidateNDK(ctx context.Context, path string) (*NDK, error) {
	n, err := ndk.New(ctx, &ndk.Config{Path: path})
	if err != nil {
		return nil, &Error{Op: "validate ndk", Err: err}
	}
	return n, nil
}

// Builder is the one-stop build facade: it merges manifest overrides over
// the package defaults, registers libraries, and drives the assembly
// pipeline through signing.
type Builder struct {
	inner *apk.Builder
}

// NewBuilder prepares a build for the given package identifier. The
// overrides manifest may be nil; cfg.Manifest is ignored and derived here.
func NewBuilder(pkg string, overrides *Manifest, cfg BuildConfig) (*Builder, error) {
	base, err := manifest.DefaultFor(pkg)
	if err != nil {
		return nil, &Error{Op: "new builder", Err: err}
	}
	merged, err := manifest.Merge(base, overrides)
	if err != nil {
		return nil, &Error{Op: "new builder", Err: err}
	}
	cfg.Manifest = merged

	inner, err := apk.New(cfg)
	if err != nil {
		return nil, &Error{Op: "new builder", Err: err}
	}
	return &Builder{inner: inner}, nil
}

// AddLib registers one compiled shared library for the given ABI
func (b *Builder) AddLib(target Abi, path string) error {
	if err := b.inner.AddLib(target, path); err != nil {
		return &Error{Op: "add lib", Abi: string(target), Err: err}
	}
	return nil
}

// Build assembles and signs the package, returning the final path
func (b *Builder) Build(ctx context.Context, key Key) (string, error) {
	out, err := b.inner.Build(ctx, key)
	if err != nil {
		return "", &Error{Op: "build", Err: err}
	}
	return out, nil
}
