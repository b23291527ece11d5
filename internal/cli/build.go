// internal/cli/build.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/droidkit/pkg/abi"
	"github.com/arc-language/droidkit/pkg/apk"
	"github.com/arc-language/droidkit/pkg/manifest"
	"github.com/arc-language/droidkit/pkg/ndk"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble and sign a package from a build file",
	Long: `Assemble a signed APK from the build description file.

Examples:
  droidkit build
  droidkit build -f app/droidkit.yaml
  droidkit build --ndk ~/Android/Sdk/ndk/25.1.8937393`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	bf, err := LoadBuildFile(buildFilePath)
	if err != nil {
		return err
	}

	root := bf.NDK
	if ndkPath != "" {
		root = ndkPath
	}
	installation, err := ndk.New(ctx, &ndk.Config{Path: root})
	if err != nil {
		return err
	}
	if debug {
		fmt.Printf("NDK %s at %s\n", installation.Version(), installation.Root())
	}

	overrides := &manifest.Manifest{
		Package:     bf.Package,
		VersionCode: bf.VersionCode,
		VersionName: bf.VersionName,
		Sdk:         manifest.Sdk{Min: bf.MinSdk, Target: bf.TargetSdk},
		Application: manifest.Application{Label: bf.Label},
	}
	for _, p := range bf.Permissions {
		overrides.Permissions = append(overrides.Permissions, manifest.UsesPermission{Name: p})
	}

	base, err := manifest.DefaultFor(bf.Package)
	if err != nil {
		return err
	}
	merged, err := manifest.Merge(base, overrides)
	if err != nil {
		return err
	}

	strip, err := parseStrip(bf.Strip)
	if err != nil {
		return err
	}

	builder, err := apk.New(apk.Config{
		NDK:        installation,
		Manifest:   merged,
		Out:        bf.Out,
		BuildDir:   bf.BuildDir,
		Res:        bf.Res,
		Assets:     bf.Assets,
		Aapt2:      bf.Aapt2,
		AndroidJar: bf.AndroidJar,
		Strip:      strip,
	})
	if err != nil {
		return err
	}

	for abiName, paths := range bf.Libs {
		target, err := abi.Parse(abiName)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if err := builder.AddLib(target, path); err != nil {
				return err
			}
		}
	}

	key := apk.Key{Store: bf.Keystore, Password: bf.KeystorePass}
	if key.Store == "" {
		key, err = apk.DebugKey()
		if err != nil {
			return err
		}
	}

	out, err := builder.Build(ctx, key)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Built %s\n", out)
	return nil
}

func parseStrip(s string) (apk.StripConfig, error) {
	switch s {
	case "", "none":
		return apk.StripNone, nil
	case "strip":
		return apk.Strip, nil
	case "split":
		return apk.StripSplit, nil
	default:
		return 0, fmt.Errorf("unknown strip mode %q (none, strip, split)", s)
	}
}
