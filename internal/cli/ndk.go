// internal/cli/ndk.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/droidkit/pkg/abi"
	"github.com/arc-language/droidkit/pkg/ndk"
)

var (
	ndkAbi string
	ndkAPI int
)

var ndkCmd = &cobra.Command{
	Use:   "ndk",
	Short: "Validate an NDK installation and print its toolchain environment",
	Long: `Locate and validate an NDK installation, then print the resolved
toolchain paths and environment per ABI.

Examples:
  droidkit ndk
  droidkit ndk --abi arm64-v8a --api 26
  droidkit ndk --ndk /opt/android-ndk`,
	Args: cobra.NoArgs,
	RunE: runNdk,
}

func init() {
	ndkCmd.Flags().StringVar(&ndkAbi, "abi", "", "print only this ABI")
	ndkCmd.Flags().IntVar(&ndkAPI, "api", int(abi.DefaultMinAPI), "requested API level")
}

func runNdk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	installation, err := ndk.New(ctx, &ndk.Config{Path: ndkPath})
	if err != nil {
		return err
	}
	fmt.Printf("NDK %s\n", installation.Version())
	fmt.Printf("Root: %s\n", installation.Root())

	targets := abi.AllAbis
	if ndkAbi != "" {
		target, err := abi.Parse(ndkAbi)
		if err != nil {
			return err
		}
		targets = []abi.Abi{target}
	}

	toolchains, err := installation.ResolveAll(ctx, targets, abi.API(ndkAPI))
	if err != nil {
		return err
	}
	for _, tc := range toolchains {
		fmt.Printf("\n%s (%s), API %d", tc.Abi, tc.Triple, tc.API)
		if tc.Clamped {
			fmt.Printf(" (clamped from %d)", tc.Requested)
		}
		fmt.Println()
		fmt.Printf("  %s\n", strings.Join(tc.Environ(), "\n  "))
	}
	return nil
}
