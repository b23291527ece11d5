// pkg/ndk/ndk.go
package ndk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quay/zlog"

	"github.com/arc-language/droidkit/pkg/abi"
)

// Marker files that distinguish a genuine installation from an arbitrary
// directory. Both must be present before any version parsing happens.
const (
	sourcePropertiesFile = "source.properties"
	prebuiltToolchainDir = "toolchains/llvm/prebuilt"
)

// New validates an installation and returns the immutable handle every
// later resolution goes through. A path that fails the marker checks or
// carries a malformed version file yields an InvalidInstallationError;
// no unverified path ever becomes an NDK value.
func New(ctx context.Context, cfg *Config) (*NDK, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	root := cfg.Path
	if root == "" {
		located, err := locate()
		if err != nil {
			return nil, err
		}
		root = located
	}

	ctx = zlog.ContextWithValues(ctx, "component", "ndk/New", "root", root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, &InvalidInstallationError{Path: root, Reason: err.Error()}
	}
	if !info.IsDir() {
		return nil, &InvalidInstallationError{Path: root, Reason: "not a directory"}
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(prebuiltToolchainDir))); err != nil {
		return nil, &InvalidInstallationError{Path: root, Reason: "missing toolchains/llvm/prebuilt"}
	}

	props := filepath.Join(root, sourcePropertiesFile)
	data, err := os.ReadFile(props)
	if err != nil {
		return nil, &InvalidInstallationError{Path: root, Reason: "missing source.properties"}
	}
	version, err := parseSourceProperties(data)
	if err != nil {
		return nil, &InvalidInstallationError{Path: root, Reason: err.Error()}
	}

	hostTag, err := abi.HostTag()
	if err != nil {
		return nil, err
	}

	zlog.Debug(ctx).
		Str("version", version.String()).
		Str("host", hostTag).
		Msg("validated NDK installation")

	return &NDK{
		root:    root,
		version: version,
		hostTag: hostTag,
		policy:  cfg.ClampPolicy,
	}, nil
}

// Validate is shorthand for New with only a path and default policy
func Validate(ctx context.Context, path string) (*NDK, error) {
	return New(ctx, &Config{Path: path})
}

// locate finds an installation root through the conventional environment:
// the explicit NDK variables first, then the newest versioned install under
// the SDK's ndk/ directory, then the legacy ndk-bundle location.
func locate() (string, error) {
	for _, key := range []string{"ANDROID_NDK_ROOT", "ANDROID_NDK_HOME", "NDK_HOME"} {
		if path := os.Getenv(key); path != "" {
			return path, nil
		}
	}

	for _, key := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		sdk := os.Getenv(key)
		if sdk == "" {
			continue
		}
		if path := newestUnder(filepath.Join(sdk, "ndk")); path != "" {
			return path, nil
		}
		bundle := filepath.Join(sdk, "ndk-bundle")
		if _, err := os.Stat(bundle); err == nil {
			return bundle, nil
		}
	}

	return "", fmt.Errorf("no NDK found; set ANDROID_NDK_ROOT or install one under $ANDROID_HOME/ndk")
}

// newestUnder picks the highest-versioned directory entry, comparing the
// names as release versions rather than lexically so 25.2.x beats 9.0.x.
func newestUnder(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestVersion Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := parseRevision(entry.Name())
		if err != nil {
			continue
		}
		if best == "" || less(bestVersion, v) {
			best = entry.Name()
			bestVersion = v
		}
	}
	if best == "" {
		return ""
	}
	return filepath.Join(dir, best)
}

func less(a, b Version) bool {
	if a.Major != b.Major {
		return a.Major < b.Major
	}
	if a.Minor != b.Minor {
		return a.Minor < b.Minor
	}
	return a.Patch < b.Patch
}
