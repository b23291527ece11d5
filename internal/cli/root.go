// internal/cli/root.go
package cli

import (
	"github.com/spf13/cobra"
)

var (
	buildFilePath string
	ndkPath       string
	debug         bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "droidkit",
	Short: "Android package toolkit",
	Long: `droidkit - Android NDK toolchain resolution and APK assembly

Cross-compile native libraries against an installed NDK and assemble the
results into a signed, installable package.`,
	Version: "0.1.0",
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&buildFilePath, "file", "f", "droidkit.yaml", "build description file")
	rootCmd.PersistentFlags().StringVar(&ndkPath, "ndk", "", "NDK installation path (default: located from the environment)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(ndkCmd)
	rootCmd.AddCommand(versionCmd)
}
