// pkg/manifest/manifest.go
package manifest

import (
	"regexp"
	"sort"

	"github.com/arc-language/droidkit/pkg/abi"
)

// packageRe is the platform's package identifier syntax: two or more
// java-identifier segments separated by dots.
var packageRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// DefaultFor produces a minimal valid manifest for the given package
// identifier at the catalog's lowest supported API level. The identifier is
// required; it is never synthesized from other input.
func DefaultFor(pkg string) (*Manifest, error) {
	m := &Manifest{
		NS:          AndroidNS,
		Package:     pkg,
		VersionCode: 1,
		VersionName: "1.0",
		Sdk: Sdk{
			Min:    int(abi.DefaultMinAPI),
			Target: int(abi.DefaultMinAPI),
		},
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate enforces the manifest invariants. It is called by DefaultFor and
// Merge so an invalid Manifest cannot leave either constructor; callers that
// build a Manifest literal should call it themselves before use.
func (m *Manifest) Validate() error {
	if m.Package == "" {
		return &ValidationError{Field: "package", Reason: "identifier is empty"}
	}
	if !packageRe.MatchString(m.Package) {
		return &ValidationError{Field: "package", Reason: "identifier " + m.Package + " is not a valid package name"}
	}
	if m.Sdk.Min <= 0 {
		return &ValidationError{Field: "uses-sdk", Reason: "minSdkVersion must be positive"}
	}
	if m.Sdk.Target != 0 && m.Sdk.Min > m.Sdk.Target {
		return &ValidationError{Field: "uses-sdk", Reason: "minSdkVersion exceeds targetSdkVersion"}
	}
	if m.Sdk.Max != 0 && m.Sdk.Target > m.Sdk.Max {
		return &ValidationError{Field: "uses-sdk", Reason: "targetSdkVersion exceeds maxSdkVersion"}
	}
	for _, p := range m.Permissions {
		if p.Name == "" {
			return &ValidationError{Field: "uses-permission", Reason: "name is empty"}
		}
	}
	if err := validateComponents(&m.Application); err != nil {
		return err
	}
	m.normalize()
	return nil
}

func validateComponents(app *Application) error {
	seen := make(map[[2]string]bool)
	check := func(tag, name string) error {
		if name == "" {
			return &ValidationError{Field: tag, Reason: "android:name is empty"}
		}
		key := [2]string{tag, name}
		if seen[key] {
			return &DuplicateComponentError{Tag: tag, Name: name}
		}
		seen[key] = true
		return nil
	}
	for _, a := range app.Activities {
		if err := check("activity", a.Name); err != nil {
			return err
		}
	}
	for _, s := range app.Services {
		if err := check("service", s.Name); err != nil {
			return err
		}
	}
	for _, r := range app.Receivers {
		if err := check("receiver", r.Name); err != nil {
			return err
		}
	}
	return nil
}

// normalize puts the set-valued fields into their canonical order so that
// field-wise equal manifests serialize byte-identical
func (m *Manifest) normalize() {
	m.NS = AndroidNS
	sort.Slice(m.Permissions, func(i, j int) bool {
		return m.Permissions[i].Name < m.Permissions[j].Name
	})
	sort.Slice(m.Features, func(i, j int) bool {
		if m.Features[i].Name != m.Features[j].Name {
			return m.Features[i].Name < m.Features[j].Name
		}
		return m.Features[i].GlES < m.Features[j].GlES
	})
}
