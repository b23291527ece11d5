// pkg/manifest/merge.go
package manifest

import "reflect"

// Merge combines a base manifest with explicit overrides into a new
// manifest. Scalar fields in overrides replace base values; permission and
// feature sets are unioned (order-independent); component lists are
// concatenated in order. Two components claiming the same (tag, name) pair
// are allowed only when they are identical declarations, which keeps Merge
// idempotent; differing declarations fail with DuplicateComponentError.
//
// The result is validated before it is returned; Merge never yields an
// invalid Manifest.
func Merge(base, overrides *Manifest) (*Manifest, error) {
	if base == nil {
		base = &Manifest{}
	}
	if overrides == nil {
		overrides = &Manifest{}
	}

	out := &Manifest{
		NS:          AndroidNS,
		Package:     scalar(base.Package, overrides.Package),
		VersionCode: scalarInt(base.VersionCode, overrides.VersionCode),
		VersionName: scalar(base.VersionName, overrides.VersionName),
		Sdk: Sdk{
			Min:    scalarInt(base.Sdk.Min, overrides.Sdk.Min),
			Target: scalarInt(base.Sdk.Target, overrides.Sdk.Target),
			Max:    scalarInt(base.Sdk.Max, overrides.Sdk.Max),
		},
		Raw: scalar(base.Raw, overrides.Raw),
	}

	out.Permissions = unionPermissions(base.Permissions, overrides.Permissions)
	out.Features = unionFeatures(base.Features, overrides.Features)

	app, err := mergeApplication(&base.Application, &overrides.Application)
	if err != nil {
		return nil, err
	}
	out.Application = *app

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeApplication(base, overrides *Application) (*Application, error) {
	app := &Application{
		Label:       scalar(base.Label, overrides.Label),
		Theme:       scalar(base.Theme, overrides.Theme),
		Debuggable:  scalarBool(base.Debuggable, overrides.Debuggable),
		HasCode:     scalarBool(base.HasCode, overrides.HasCode),
		ExtractLibs: scalarBool(base.ExtractLibs, overrides.ExtractLibs),
	}

	var err error
	if app.Activities, err = concatComponents(base.Activities, overrides.Activities, "activity",
		func(a Activity) string { return a.Name }); err != nil {
		return nil, err
	}
	if app.Services, err = concatComponents(base.Services, overrides.Services, "service",
		func(s Service) string { return s.Name }); err != nil {
		return nil, err
	}
	if app.Receivers, err = concatComponents(base.Receivers, overrides.Receivers, "receiver",
		func(r Receiver) string { return r.Name }); err != nil {
		return nil, err
	}
	return app, nil
}

// concatComponents appends in order, dropping exact repeats and rejecting
// same-name declarations that differ
func concatComponents[T any](base, overrides []T, tag string, name func(T) string) ([]T, error) {
	var out []T
	byName := make(map[string]T)
	for _, c := range append(append([]T(nil), base...), overrides...) {
		prev, ok := byName[name(c)]
		if ok {
			if reflect.DeepEqual(prev, c) {
				continue
			}
			return nil, &DuplicateComponentError{Tag: tag, Name: name(c)}
		}
		byName[name(c)] = c
		out = append(out, c)
	}
	return out, nil
}

func unionPermissions(base, overrides []UsesPermission) []UsesPermission {
	seen := make(map[string]bool)
	var out []UsesPermission
	for _, p := range append(append([]UsesPermission(nil), base...), overrides...) {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}

func unionFeatures(base, overrides []UsesFeature) []UsesFeature {
	type key struct{ name, gles string }
	seen := make(map[key]bool)
	var out []UsesFeature
	for _, f := range append(append([]UsesFeature(nil), base...), overrides...) {
		k := key{f.Name, f.GlES}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

func scalar(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func scalarInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

func scalarBool(base, override *bool) *bool {
	if override != nil {
		return override
	}
	return base
}
