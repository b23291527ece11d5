// pkg/apk/libs.go
package apk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quay/zlog"
	"github.com/ulikunitz/xz"
	"golang.org/x/sync/errgroup"

	"github.com/arc-language/droidkit/pkg/abi"
)

// placeLibraries copies every artifact into lib/<abi>/<name> inside the
// staging tree. ABIs write to disjoint subdirectories, so placement runs
// on parallel workers; directory creation is create-if-absent, the only
// shared step.
func (b *Builder) placeLibraries(ctx context.Context, st *staging) error {
	byAbi := make(map[abi.Abi][]LibraryArtifact)
	for _, a := range b.libs {
		byAbi[a.Abi] = append(byAbi[a.Abi], a)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for target, artifacts := range byAbi {
		target, artifacts := target, artifacts
		eg.Go(func() error {
			return b.placeAbi(ctx, st, target, artifacts)
		})
	}
	return eg.Wait()
}

func (b *Builder) placeAbi(ctx context.Context, st *staging, target abi.Abi, artifacts []LibraryArtifact) error {
	libDir, err := target.LibDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(st.tree, "lib", libDir)
	ctx = zlog.ContextWithValues(ctx, "component", "apk/placeAbi", "abi", target.String())

	for _, artifact := range artifacts {
		if _, err := os.Stat(artifact.Path); err != nil {
			return fmt.Errorf("library %s: %w", artifact.Path, err)
		}
		dst := filepath.Join(dir, filepath.Base(artifact.Path))

		switch b.cfg.Strip {
		case StripNone:
			if err := copyFile(artifact.Path, dst); err != nil {
				return fmt.Errorf("placing %s: %w", artifact.Path, err)
			}
		case Strip, StripSplit:
			if err := b.stripLib(ctx, st, target, artifact.Path, dst); err != nil {
				return err
			}
		}
		zlog.Debug(ctx).Str("lib", filepath.Base(artifact.Path)).Msg("library placed")
	}
	return nil
}

// stripLib places a stripped copy of the library, and under StripSplit
// keeps the debug info in an xz-compressed sidecar under the staging root
// (outside the archive tree).
func (b *Builder) stripLib(ctx context.Context, st *staging, target abi.Abi, src, dst string) error {
	tc, err := b.cfg.NDK.Resolve(ctx, target, abi.API(b.cfg.Manifest.Sdk.Target))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := run(ctx, b.runner, tc.Objcopy, "--strip-debug", src, dst); err != nil {
		return err
	}
	if b.cfg.Strip != StripSplit {
		return nil
	}

	dwarf := filepath.Join(st.root, "debug", target.String(), filepath.Base(src)+".dwarf")
	if err := os.MkdirAll(filepath.Dir(dwarf), 0o755); err != nil {
		return err
	}
	if err := run(ctx, b.runner, tc.Objcopy, "--only-keep-debug", src, dwarf); err != nil {
		return err
	}
	if err := run(ctx, b.runner, tc.Objcopy, "--add-gnu-debuglink="+dwarf, dst); err != nil {
		return err
	}
	return compressSidecar(dwarf)
}

// compressSidecar replaces the split debug file with an xz-compressed copy
func compressSidecar(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading debug sidecar: %w", err)
	}
	f, err := os.Create(path + ".xz")
	if err != nil {
		return fmt.Errorf("creating debug sidecar: %w", err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("compressing debug sidecar: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("compressing debug sidecar: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("compressing debug sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
