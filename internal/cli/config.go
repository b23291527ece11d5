// internal/cli/config.go
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BuildFile is the yaml build description the CLI front end reads. It is
// the thin outer surface over the library: everything here maps directly
// onto manifest overrides and assembler configuration.
type BuildFile struct {
	Package     string   `yaml:"package"`
	VersionCode int      `yaml:"version_code"`
	VersionName string   `yaml:"version_name"`
	Label       string   `yaml:"label"`
	MinSdk      int      `yaml:"min_sdk"`
	TargetSdk   int      `yaml:"target_sdk"`
	Permissions []string `yaml:"permissions"`

	// Libs maps an ABI identifier to the compiled shared libraries to
	// embed for it
	Libs map[string][]string `yaml:"libs"`

	Res    string `yaml:"res"`
	Assets string `yaml:"assets"`

	NDK      string `yaml:"ndk"`
	BuildDir string `yaml:"build_dir"`
	Out      string `yaml:"out"`

	Keystore     string `yaml:"keystore"`
	KeystorePass string `yaml:"keystore_pass"`

	Strip      string `yaml:"strip"`
	Aapt2      string `yaml:"aapt2"`
	AndroidJar string `yaml:"android_jar"`
}

// LoadBuildFile loads a build description from path
func LoadBuildFile(path string) (*BuildFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build file: %w", err)
	}
	var bf BuildFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing build file: %w", err)
	}
	if bf.Package == "" {
		return nil, fmt.Errorf("build file: package is required")
	}
	if bf.BuildDir == "" {
		bf.BuildDir = "build"
	}
	if bf.Out == "" {
		bf.Out = bf.Package + ".apk"
	}
	return &bf, nil
}
