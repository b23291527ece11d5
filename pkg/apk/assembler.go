// pkg/apk/assembler.go
package apk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quay/zlog"

	"github.com/arc-language/droidkit/pkg/abi"
)

// Builder owns one package build from configured to assembled to signed.
// It is not reused: the staging area is namespaced per build and the
// Builder is discarded once the final package file is emitted.
type Builder struct {
	cfg    Config
	runner Runner
	libs   []LibraryArtifact
	seen   map[abi.Abi]map[string]bool
}

// New checks the configuration and returns a builder. Configuration
// errors are detected here or in AddLib, always before any external
// process runs.
func New(cfg Config) (*Builder, error) {
	if cfg.Manifest == nil {
		return nil, fmt.Errorf("assembler: manifest is required")
	}
	if err := cfg.Manifest.Validate(); err != nil {
		return nil, err
	}
	if cfg.Out == "" {
		return nil, fmt.Errorf("assembler: output path is required")
	}
	if cfg.BuildDir == "" {
		return nil, fmt.Errorf("assembler: build directory is required")
	}
	if cfg.Strip != StripNone && cfg.NDK == nil {
		return nil, fmt.Errorf("assembler: stripping requires a validated NDK")
	}
	// API-level validation is the assembler's only NDK consultation on
	// the happy path: the manifest may not target past what the catalog
	// knows about.
	if target := abi.API(cfg.Manifest.Sdk.Target); target > abi.MaxKnownAPI {
		return nil, fmt.Errorf("assembler: targetSdkVersion %d exceeds max known API %d", target, abi.MaxKnownAPI)
	}

	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Builder{
		cfg:    cfg,
		runner: runner,
		seen:   make(map[abi.Abi]map[string]bool),
	}, nil
}

// AddLib registers one compiled shared library for placement. At most one
// artifact per (ABI, file name): a second artifact resolving to the same
// name is a build error, not a silent overwrite.
func (b *Builder) AddLib(target abi.Abi, path string) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %q", abi.ErrUnsupportedAbi, target)
	}
	name := filepath.Base(path)
	if b.seen[target] == nil {
		b.seen[target] = make(map[string]bool)
	}
	if b.seen[target][name] {
		return &DuplicateLibraryError{Abi: target, Name: name}
	}
	b.seen[target][name] = true
	b.libs = append(b.libs, LibraryArtifact{Abi: target, Path: path})
	return nil
}

// Unsigned is an assembled but unsigned package. No stage after Sign is
// permitted to touch the archive bytes.
type Unsigned struct {
	// Path is the unsigned archive inside the staging area
	Path string

	b  *Builder
	st *staging
}

// Assemble runs the strictly ordered pipeline through archive
// construction: manifest emission, resource compilation, library
// placement, aligned archive. A failure at any stage aborts the build and
// leaves the staging tree in place for diagnosis; nothing appears at the
// configured output path.
func (b *Builder) Assemble(ctx context.Context) (*Unsigned, error) {
	ctx = zlog.ContextWithValues(ctx,
		"component", "apk/Assemble",
		"package", b.cfg.Manifest.Package,
	)

	st, err := newStaging(b.cfg.BuildDir)
	if err != nil {
		return nil, err
	}
	zlog.Debug(ctx).Str("staging", st.root).Msg("staging area created")

	// Stage 1: manifest emission.
	manifestPath := filepath.Join(st.tree, "AndroidManifest.xml")
	if err := b.cfg.Manifest.WriteFile(manifestPath); err != nil {
		return nil, err
	}

	// Stage 2: resource compilation, skipped without a resource tree.
	if b.cfg.Res != "" {
		if err := b.compileResources(ctx, st, manifestPath); err != nil {
			return nil, err
		}
	}
	if b.cfg.Assets != "" {
		if err := copyTree(b.cfg.Assets, filepath.Join(st.tree, "assets")); err != nil {
			return nil, fmt.Errorf("copying assets: %w", err)
		}
	}

	// Stage 3: library placement.
	if err := b.placeLibraries(ctx, st); err != nil {
		return nil, err
	}

	// Stage 4: archive construction.
	unsigned := filepath.Join(st.root, "unsigned.apk")
	if err := writeArchive(st.tree, unsigned); err != nil {
		return nil, err
	}

	zlog.Info(ctx).Str("archive", unsigned).Msg("package assembled")
	return &Unsigned{Path: unsigned, b: b, st: st}, nil
}

// Sign runs the final stage and moves the signed package into place. The
// output path gains the file only on full success; the temporary file is
// removed on failure and the staging area is discarded on success.
func (u *Unsigned) Sign(ctx context.Context, key Key) (string, error) {
	signer := u.b.cfg.Signer
	if signer == nil {
		signer = ApksignerSigner{Runner: u.b.runner}
	}

	out := u.b.cfg.Out
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(out), "."+filepath.Base(out)+".tmp")
	if err := signer.Sign(ctx, u.Path, tmp, key); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("moving package into place: %w", err)
	}

	u.st.discard()
	zlog.Info(ctx).Str("package", out).Msg("package signed")
	return out, nil
}

// Build is the whole pipeline in one call: assemble then sign
func (b *Builder) Build(ctx context.Context, key Key) (string, error) {
	unsigned, err := b.Assemble(ctx)
	if err != nil {
		return "", err
	}
	return unsigned.Sign(ctx, key)
}
