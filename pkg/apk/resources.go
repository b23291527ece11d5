// pkg/apk/resources.go
package apk

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quay/zlog"
)

// compileResources drives the external resource compiler. The contract is
// inputs/outputs only: aapt2 compile turns the resource tree into a flat
// archive, aapt2 link combines it with the manifest into a proto package,
// and the link output is unpacked over the staging tree (binary manifest,
// resources.arsc, res/). The compiler's internals are opaque here.
func (b *Builder) compileResources(ctx context.Context, st *staging, manifestPath string) error {
	aapt2 := b.cfg.Aapt2
	if aapt2 == "" {
		aapt2 = "aapt2"
	}
	ctx = zlog.ContextWithValues(ctx, "component", "apk/compileResources")

	compiled := filepath.Join(st.root, "res.zip")
	if err := run(ctx, b.runner, aapt2, "compile", "--dir", b.cfg.Res, "-o", compiled); err != nil {
		return err
	}

	linked := filepath.Join(st.root, "linked.apk")
	args := []string{"link", "--manifest", manifestPath, "-o", linked}
	if b.cfg.AndroidJar != "" {
		args = append(args, "-I", b.cfg.AndroidJar)
	}
	args = append(args, compiled)
	if err := run(ctx, b.runner, aapt2, args...); err != nil {
		return err
	}

	zlog.Debug(ctx).Str("linked", linked).Msg("resource compiler finished")
	return unzip(st.tree, linked)
}

// unzip unpacks the resource compiler's output archive into dir
func unzip(dir, zipfile string) error {
	zr, err := zip.OpenReader(zipfile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", zipfile, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		in, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(path)
		if err != nil {
			in.Close()
			return err
		}
		_, err = io.Copy(out, in)
		in.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}
