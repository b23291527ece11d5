// pkg/ndk/toolchain.go
package ndk

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/quay/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/arc-language/droidkit/pkg/abi"
)

// Suffixes for the prebuilt toolchain binaries on Windows hosts. The clang
// drivers are batch wrappers, the llvm binaries are plain executables.
var (
	cmdSuffix string
	exeSuffix string
)

func init() {
	if runtime.GOOS == "windows" {
		cmdSuffix = ".cmd"
		exeSuffix = ".exe"
	}
}

// Resolve derives the toolchain view for one (ABI, API level) pair.
//
// The requested level is clamped into the catalog's supported range (or
// rejected, under ClampStrict); the clang wrapper embeds the resolved level
// in its file name, which is why the result is never reused across levels.
// Only the files this ABI actually needs are verified on disk, so a partial
// installation can still build the subset it supports.
//
// Resolution is a pure function of its inputs; concurrent calls against the
// same NDK are safe.
func (n *NDK) Resolve(ctx context.Context, target abi.Abi, requested abi.API) (*Toolchain, error) {
	api, clamped, err := n.clamp(requested)
	if err != nil {
		return nil, err
	}

	triple, err := target.Triple()
	if err != nil {
		return nil, err
	}
	clangTarget, err := target.ClangTarget()
	if err != nil {
		return nil, err
	}

	prebuilt := filepath.Join(n.root, "toolchains", "llvm", "prebuilt", n.hostTag)
	bin := filepath.Join(prebuilt, "bin")

	tc := &Toolchain{
		Abi:       target,
		Triple:    triple,
		API:       api,
		Requested: requested,
		Clamped:   clamped,
		Clang:     filepath.Join(bin, clangTarget+api.String()+"-clang"+cmdSuffix),
		ClangXX:   filepath.Join(bin, clangTarget+api.String()+"-clang++"+cmdSuffix),
		Ar:        filepath.Join(bin, "llvm-ar"+exeSuffix),
		Linker:    filepath.Join(bin, "ld.lld"+exeSuffix),
		Objcopy:   filepath.Join(bin, "llvm-objcopy"+exeSuffix),
		Sysroot:   filepath.Join(prebuilt, "sysroot"),
	}

	for _, path := range []string{tc.Clang, tc.ClangXX, tc.Ar, tc.Linker, tc.Objcopy, tc.Sysroot} {
		if _, err := os.Stat(path); err != nil {
			return nil, &ToolMissingError{Path: path}
		}
	}

	if clamped {
		zlog.Info(ctx).
			Str("abi", target.String()).
			Int("requested", int(requested)).
			Int("resolved", int(api)).
			Msg("API level clamped to supported range")
	}

	return tc, nil
}

// ResolveAll resolves the toolchain for every listed ABI concurrently.
// Results keep the input order. Any single failure fails the whole call.
func (n *NDK) ResolveAll(ctx context.Context, targets []abi.Abi, requested abi.API) ([]*Toolchain, error) {
	out := make([]*Toolchain, len(targets))
	eg, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		eg.Go(func() error {
			tc, err := n.Resolve(ctx, target, requested)
			if err != nil {
				return err
			}
			out[i] = tc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *NDK) clamp(requested abi.API) (abi.API, bool, error) {
	api := requested
	if api < abi.DefaultMinAPI {
		api = abi.DefaultMinAPI
	}
	if api > abi.MaxKnownAPI {
		api = abi.MaxKnownAPI
	}
	if api != requested && n.policy == ClampStrict {
		return 0, false, &APIRangeError{Requested: requested}
	}
	return api, api != requested, nil
}

// Environ returns the environment a downstream compiler driver expects:
// compiler, archiver and linker selection, sysroot, and the Go cross
// settings for a cgo build targeting this ABI.
func (tc *Toolchain) Environ() []string {
	env := []string{
		"CGO_ENABLED=1",
		"GOOS=android",
		"CC=" + tc.Clang,
		"CXX=" + tc.ClangXX,
		"AR=" + tc.Ar,
		"LD=" + tc.Linker,
		"SYSROOT=" + tc.Sysroot,
	}
	if goarch, err := tc.Abi.GoArch(); err == nil {
		env = append(env, "GOARCH="+goarch)
	}
	if goarm := tc.Abi.GoArm(); goarm != "" {
		env = append(env, "GOARM="+goarm)
	}
	return env
}
