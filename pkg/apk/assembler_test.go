// pkg/apk/assembler_test.go
package apk

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/arc-language/droidkit/pkg/abi"
	"github.com/arc-language/droidkit/pkg/manifest"
	"github.com/arc-language/droidkit/pkg/ndk"
)

// fakeRunner records invocations and delegates behavior to handle. The
// library placement stage runs on parallel workers, so access is locked.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	handle func(name string, args []string) ([]byte, error)
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	if r.handle == nil {
		return nil, nil
	}
	return r.handle(name, args)
}

// fakeSigner copies the unsigned archive to the output path
type fakeSigner struct{}

func (fakeSigner) Sign(_ context.Context, in, out string, _ Key) error {
	return copyFile(in, out)
}

// failSigner always fails without producing output
type failSigner struct{}

func (failSigner) Sign(_ context.Context, _, _ string, _ Key) error {
	return &SigningError{Reason: "signer rejected the archive"}
}

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.DefaultFor("com.example.app")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testLib(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x7F, 0x45, 0x4C, 0x46}, 64), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Manifest: testManifest(t),
		Out:      filepath.Join(dir, "out", "app.apk"),
		BuildDir: filepath.Join(dir, "build"),
		Runner:   &fakeRunner{},
		Signer:   fakeSigner{},
	}
}

func entryNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestNewValidation(t *testing.T) {
	valid := testConfig(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NilManifest", func(c *Config) { c.Manifest = nil }},
		{"MinOverTarget", func(c *Config) {
			c.Manifest = &manifest.Manifest{Package: "com.example.app", Sdk: manifest.Sdk{Min: 30, Target: 21}}
		}},
		{"NoOut", func(c *Config) { c.Out = "" }},
		{"NoBuildDir", func(c *Config) { c.BuildDir = "" }},
		{"StripWithoutNDK", func(c *Config) { c.Strip = Strip }},
		{"TargetPastCatalog", func(c *Config) {
			c.Manifest.Sdk.Target = int(abi.MaxKnownAPI) + 1
			c.Manifest.Sdk.Min = int(abi.MaxKnownAPI) + 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Manifest = testManifest(t)
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New() accepted an invalid configuration")
			}
		})
	}

	if _, err := New(valid); err != nil {
		t.Fatalf("New() rejected a valid configuration: %v", err)
	}
}

func TestAddLibDuplicate(t *testing.T) {
	b, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Arm64, "/build/arm64/libapp.so"); err != nil {
		t.Fatal(err)
	}
	// same name from a different directory still collides
	err = b.AddLib(abi.Arm64, "/other/libapp.so")
	var dup *DuplicateLibraryError
	if !errors.As(err, &dup) {
		t.Fatalf("AddLib() error = %v, want DuplicateLibraryError", err)
	}
	if dup.Abi != abi.Arm64 || dup.Name != "libapp.so" {
		t.Errorf("DuplicateLibraryError = %+v", dup)
	}
	// same name under another ABI is fine
	if err := b.AddLib(abi.X86_64, "/build/x86_64/libapp.so"); err != nil {
		t.Errorf("AddLib() on a second ABI: %v", err)
	}
}

func TestAddLibUnsupportedAbi(t *testing.T) {
	b, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Abi("mips"), "/build/libapp.so"); !errors.Is(err, abi.ErrUnsupportedAbi) {
		t.Errorf("AddLib() error = %v, want ErrUnsupportedAbi", err)
	}
}

func TestBuildPipeline(t *testing.T) {
	cfg := testConfig(t)
	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, "strings.json"), []byte(`{"hello":"world"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Assets = assets

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Arm64, testLib(t, "libapp.so")); err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.X86_64, testLib(t, "libapp.so")); err != nil {
		t.Fatal(err)
	}

	out, err := b.Build(context.Background(), Key{Store: "debug.keystore", Password: "android"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out != cfg.Out {
		t.Errorf("Build() = %q, want %q", out, cfg.Out)
	}

	names := entryNames(t, out)
	want := []string{
		"AndroidManifest.xml",
		"assets/strings.json",
		"lib/arm64-v8a/libapp.so",
		"lib/x86_64/libapp.so",
	}
	if len(names) != len(want) {
		t.Fatalf("archive entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}

	// success discards the staging area
	entries, err := os.ReadDir(cfg.BuildDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging left behind after a successful build: %v", entries)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	cfg := testConfig(t)
	lib := testLib(t, "libapp.so")

	assemble := func() []byte {
		b, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AddLib(abi.Arm64, lib); err != nil {
			t.Fatal(err)
		}
		u, err := b.Assemble(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(u.Path)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if !bytes.Equal(assemble(), assemble()) {
		t.Error("identical inputs produced differing unsigned archives")
	}
}

// makeZip fabricates the resource compiler's link output
func makeZip(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestResourcePipeline(t *testing.T) {
	cfg := testConfig(t)
	res := t.TempDir()
	if err := os.MkdirAll(filepath.Join(res, "values"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(res, "values", "strings.xml"), []byte("<resources/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Res = res

	runner := &fakeRunner{}
	runner.handle = func(name string, args []string) ([]byte, error) {
		if name != "aapt2" {
			return nil, fmt.Errorf("unexpected tool %s", name)
		}
		var out string
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				out = args[i+1]
			}
		}
		switch args[0] {
		case "compile":
			return nil, os.WriteFile(out, nil, 0o644)
		case "link":
			makeZip(t, out, map[string][]byte{
				"resources.arsc":          bytes.Repeat([]byte{0xCA, 0xFE}, 50),
				"res/values/strings.arsc": []byte("compiled"),
			})
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected subcommand %v", args)
	}
	cfg.Runner = runner

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Arm64, testLib(t, "libapp.so")); err != nil {
		t.Fatal(err)
	}
	out, err := b.Build(context.Background(), Key{Store: "debug.keystore", Password: "android"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var haveArsc bool
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "resources.arsc" {
			haveArsc = true
			if f.Method != zip.Store {
				t.Errorf("resources.arsc: method = %d, want Store", f.Method)
			}
			off, err := f.DataOffset()
			if err != nil {
				t.Fatal(err)
			}
			if off%soAlignment != 0 {
				t.Errorf("resources.arsc: data offset %d not aligned", off)
			}
		}
	}
	if !haveArsc {
		t.Error("resources.arsc missing from the final archive")
	}
	if len(runner.calls) != 2 {
		t.Errorf("runner calls = %d, want compile + link", len(runner.calls))
	}
}

func TestResourceCompilerFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Res = t.TempDir()
	cfg.Runner = &fakeRunner{
		handle: func(string, []string) ([]byte, error) {
			return []byte("error: resource file invalid\n"), fmt.Errorf("exit status 1")
		},
	}

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.Assemble(context.Background())
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("Assemble() error = %v, want ToolError", err)
	}
	if te.Output != "error: resource file invalid" {
		t.Errorf("ToolError.Output = %q, tool diagnostics not preserved", te.Output)
	}
	if !strings.HasPrefix(te.Cmd, "aapt2 compile") {
		t.Errorf("ToolError.Cmd = %q", te.Cmd)
	}

	if _, err := os.Stat(cfg.Out); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed build produced output")
	}
	// the staging area survives the failure for diagnosis
	entries, err := os.ReadDir(cfg.BuildDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("staging entries after failure = %d, want 1", len(entries))
	}
}

func TestSignFailureLeavesNoOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Signer = failSigner{}

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Arm64, testLib(t, "libapp.so")); err != nil {
		t.Fatal(err)
	}
	_, err = b.Build(context.Background(), Key{Store: "debug.keystore", Password: "android"})
	var se *SigningError
	if !errors.As(err, &se) {
		t.Fatalf("Build() error = %v, want SigningError", err)
	}
	if _, err := os.Stat(cfg.Out); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed signing left a file at the output path")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg.Out), "."+filepath.Base(cfg.Out)+".tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed signing left the temporary file behind")
	}
}

// fakeNDK fabricates an installation complete enough for Resolve
func fakeNDK(t *testing.T) *ndk.NDK {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fabricated installation uses unix tool names")
	}
	root := t.TempDir()
	props := "Pkg.Desc = Android NDK\nPkg.Revision = 26.1.10909125\n"
	if err := os.WriteFile(filepath.Join(root, "source.properties"), []byte(props), 0o644); err != nil {
		t.Fatal(err)
	}
	tag, err := abi.HostTag()
	if err != nil {
		t.Skip(err)
	}
	prebuilt := filepath.Join(root, "toolchains", "llvm", "prebuilt", tag)
	bin := filepath.Join(prebuilt, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(prebuilt, "sysroot"), 0o755); err != nil {
		t.Fatal(err)
	}
	names := []string{"llvm-ar", "ld.lld", "llvm-objcopy"}
	for _, target := range abi.AllAbis {
		ct, err := target.ClangTarget()
		if err != nil {
			t.Fatal(err)
		}
		api := abi.DefaultMinAPI.String()
		names = append(names, ct+api+"-clang", ct+api+"-clang++")
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	n, err := ndk.New(context.Background(), &ndk.Config{Path: root})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestStripSplit(t *testing.T) {
	cfg := testConfig(t)
	cfg.NDK = fakeNDK(t)
	cfg.Strip = StripSplit

	runner := &fakeRunner{}
	runner.handle = func(name string, args []string) ([]byte, error) {
		if filepath.Base(name) != "llvm-objcopy" {
			return nil, fmt.Errorf("unexpected tool %s", name)
		}
		switch {
		case args[0] == "--strip-debug":
			return nil, copyFile(args[1], args[2])
		case args[0] == "--only-keep-debug":
			return nil, os.WriteFile(args[2], []byte("debug info"), 0o644)
		case strings.HasPrefix(args[0], "--add-gnu-debuglink="):
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected objcopy args %v", args)
	}
	cfg.Runner = runner

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddLib(abi.Arm64, testLib(t, "libapp.so")); err != nil {
		t.Fatal(err)
	}
	u, err := b.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	stagingRoot := filepath.Dir(u.Path)
	sidecar := filepath.Join(stagingRoot, "debug", "arm64-v8a", "libapp.so.dwarf.xz")
	if _, err := os.Stat(sidecar); err != nil {
		t.Errorf("compressed debug sidecar missing: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(sidecar, ".xz")); !errors.Is(err, os.ErrNotExist) {
		t.Error("uncompressed debug sidecar not removed")
	}

	names := entryNames(t, u.Path)
	var haveLib bool
	for _, name := range names {
		if name == "lib/arm64-v8a/libapp.so" {
			haveLib = true
		}
		if strings.Contains(name, "debug/") {
			t.Errorf("debug sidecar leaked into the archive: %s", name)
		}
	}
	if !haveLib {
		t.Errorf("stripped library missing from archive: %v", names)
	}
}
